package console

import (
	"context"
	"fmt"

	"github.com/cocofhu/mcp-adapter-console/inflight"
	"github.com/cocofhu/mcp-adapter-console/schema"
)

// NewInterfaceEditor starts a new interface in the current application.
func (s *Session) NewInterfaceEditor() (*schema.InterfaceEditor, error) {
	catalog := s.Catalog()
	if catalog == nil {
		return nil, s.fail(ErrNoApplication)
	}
	return schema.NewInterfaceEditor(catalog), nil
}

// EditInterface opens interface id of the current application.
func (s *Session) EditInterface(id int64) (*schema.InterfaceEditor, error) {
	catalog := s.Catalog()
	if catalog == nil {
		return nil, s.fail(ErrNoApplication)
	}
	s.mu.RLock()
	var (
		found schema.Interface
		ok    bool
	)
	for _, it := range s.interfaces {
		if it.ID == id {
			found, ok = it, true
			break
		}
	}
	s.mu.RUnlock()
	if !ok {
		return nil, s.fail(fmt.Errorf("interface %d: %w", id, ErrNotFound))
	}
	return schema.OpenInterfaceEditor(catalog, found), nil
}

// SubmitInterface validates the editor's draft and creates or updates the
// interface. Nothing is sent when validation fails, and the editor is left
// untouched either way.
func (s *Session) SubmitInterface(ctx context.Context, e *schema.InterfaceEditor) (schema.Interface, error) {
	catalog := s.Catalog()
	if catalog == nil {
		return schema.Interface{}, s.fail(ErrNoApplication)
	}

	d := e.Draft()
	d.AppID = catalog.AppID()
	if res := schema.Validate(d); !res.OK() {
		return schema.Interface{}, s.fail(res.Err())
	}
	if err := s.checkRefs(catalog, d.Parameters); err != nil {
		return schema.Interface{}, s.fail(err)
	}
	if err := s.checker.Struct(d); err != nil {
		return schema.Interface{}, s.fail(err)
	}

	id := e.InterfaceID()
	action := inflight.ActionCreate
	if id != 0 {
		action = inflight.ActionUpdate
	}

	var saved schema.Interface
	err := s.guard(ctx, inflight.KeyFor(action, KindInterface, id), func(ctx context.Context) error {
		var err error
		if id == 0 {
			saved, err = s.backend.CreateInterface(ctx, d)
		} else {
			saved, err = s.backend.UpdateInterface(ctx, id, d)
		}
		return err
	})
	if err != nil {
		return schema.Interface{}, s.fail(err)
	}
	if saved.ID == 0 {
		saved = schema.Interface{ID: id, InterfaceDraft: d}
	}

	s.log.Info().
		Int64("interface_id", saved.ID).
		Str("action", action).
		Int("parameters", len(d.Parameters)).
		Msg("interface saved")
	s.afterWrite(ctx, s.refreshInterfaces, d.AppID)
	s.succeed(fmt.Sprintf("interface %q saved", d.Name))
	return saved, nil
}

// checkRefs rejects custom-typed parameters whose type is not in catalog.
func (s *Session) checkRefs(catalog *schema.Catalog, params []schema.Parameter) error {
	for _, p := range params {
		if p.Type != schema.TypeCustom {
			continue
		}
		if p.Ref == nil {
			return &schema.Violation{Kind: schema.MissingReference, Field: p.Name}
		}
		if !catalog.InScope(*p.Ref, 0) {
			return &schema.Violation{Kind: schema.ReferenceOutOfScope, Field: p.Name}
		}
	}
	return nil
}

// DeleteInterface deletes interface id.
func (s *Session) DeleteInterface(ctx context.Context, id int64) error {
	appID, err := s.currentAppID()
	if err != nil {
		return s.fail(err)
	}

	err = s.guard(ctx, inflight.KeyFor(inflight.ActionDelete, KindInterface, id), func(ctx context.Context) error {
		return s.backend.DeleteInterface(ctx, id)
	})
	if err != nil {
		return s.fail(err)
	}

	s.log.Info().Int64("interface_id", id).Msg("interface deleted")
	s.afterWrite(ctx, s.refreshInterfaces, appID)
	s.succeed("interface deleted")
	return nil
}
