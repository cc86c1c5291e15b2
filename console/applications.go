package console

import (
	"context"
	"fmt"

	"github.com/cocofhu/mcp-adapter-console/inflight"
	"github.com/cocofhu/mcp-adapter-console/schema"
)

// Applications fetches and caches every application.
func (s *Session) Applications(ctx context.Context) ([]schema.Application, error) {
	apps, err := s.backend.ListApplications(ctx)
	if err != nil {
		return nil, s.fail(fmt.Errorf("list applications: %w", err))
	}
	s.mu.Lock()
	s.apps = apps
	s.mu.Unlock()
	return append([]schema.Application(nil), apps...), nil
}

// CreateApplication checks d and creates it.
func (s *Session) CreateApplication(ctx context.Context, d schema.ApplicationDraft) (schema.Application, error) {
	if err := s.checker.Struct(d); err != nil {
		return schema.Application{}, s.fail(err)
	}

	var created schema.Application
	key := inflight.KeyFor(inflight.ActionCreate, KindApplication, 0)
	err := s.guard(ctx, key, func(ctx context.Context) error {
		var err error
		created, err = s.backend.CreateApplication(ctx, d)
		return err
	})
	if err != nil {
		return schema.Application{}, s.fail(err)
	}

	s.log.Info().Int64("app_id", created.ID).Str("name", created.Name).Msg("application created")
	s.reloadApplications(ctx)
	s.succeed(fmt.Sprintf("application %q created", d.Name))
	return created, nil
}

// UpdateApplication checks d and replaces application id with it.
func (s *Session) UpdateApplication(ctx context.Context, id int64, d schema.ApplicationDraft) (schema.Application, error) {
	if err := s.checker.Struct(d); err != nil {
		return schema.Application{}, s.fail(err)
	}

	var updated schema.Application
	key := inflight.KeyFor(inflight.ActionUpdate, KindApplication, id)
	err := s.guard(ctx, key, func(ctx context.Context) error {
		var err error
		updated, err = s.backend.UpdateApplication(ctx, id, d)
		return err
	})
	if err != nil {
		return schema.Application{}, s.fail(err)
	}
	if updated.ID == 0 {
		updated = schema.Application{ID: id, ApplicationDraft: d}
	}

	s.mu.Lock()
	if s.app != nil && s.app.ID == id {
		s.app = &updated
	}
	s.mu.Unlock()

	s.log.Info().Int64("app_id", id).Msg("application updated")
	s.reloadApplications(ctx)
	s.succeed(fmt.Sprintf("application %q updated", d.Name))
	return updated, nil
}

// DeleteApplication deletes application id, closing it if it is open.
func (s *Session) DeleteApplication(ctx context.Context, id int64) error {
	key := inflight.KeyFor(inflight.ActionDelete, KindApplication, id)
	err := s.guard(ctx, key, func(ctx context.Context) error {
		return s.backend.DeleteApplication(ctx, id)
	})
	if err != nil {
		return s.fail(err)
	}

	if current, err := s.currentAppID(); err == nil && current == id {
		s.Close()
	}

	s.log.Info().Int64("app_id", id).Msg("application deleted")
	s.reloadApplications(ctx)
	s.succeed("application deleted")
	return nil
}

func (s *Session) reloadApplications(ctx context.Context) {
	apps, err := s.backend.ListApplications(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("reload applications failed")
		s.notifier.Notify(Notice{Level: LevelWarning, Message: "saved, but the list could not be refreshed: " + err.Error(), Err: err})
		return
	}
	s.mu.Lock()
	s.apps = apps
	s.mu.Unlock()
}
