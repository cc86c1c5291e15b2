package console

import (
	"context"
	"fmt"

	"github.com/cocofhu/mcp-adapter-console/inflight"
	"github.com/cocofhu/mcp-adapter-console/schema"
)

// NewTypeEditor starts a new custom type in the current application.
func (s *Session) NewTypeEditor() (*schema.TypeEditor, error) {
	catalog := s.Catalog()
	if catalog == nil {
		return nil, s.fail(ErrNoApplication)
	}
	return schema.NewTypeEditor(catalog), nil
}

// EditType opens custom type id of the current application.
func (s *Session) EditType(id int64) (*schema.TypeEditor, error) {
	catalog := s.Catalog()
	if catalog == nil {
		return nil, s.fail(ErrNoApplication)
	}
	ct, ok := catalog.Lookup(id)
	if !ok {
		return nil, s.fail(fmt.Errorf("custom type %d: %w", id, ErrNotFound))
	}
	return schema.OpenTypeEditor(catalog, ct), nil
}

// SubmitType validates the editor's draft and creates or updates the type.
// The editor is left untouched.
func (s *Session) SubmitType(ctx context.Context, e *schema.TypeEditor) (schema.CustomType, error) {
	catalog := s.Catalog()
	if catalog == nil {
		return schema.CustomType{}, s.fail(ErrNoApplication)
	}

	d := e.Draft()
	d.AppID = catalog.AppID()
	if res := schema.ValidateType(d, e.TypeID(), catalog); !res.OK() {
		return schema.CustomType{}, s.fail(res.Err())
	}
	if err := s.checker.Struct(d); err != nil {
		return schema.CustomType{}, s.fail(err)
	}

	id := e.TypeID()
	action := inflight.ActionCreate
	if id != 0 {
		action = inflight.ActionUpdate
	}

	var saved schema.CustomType
	err := s.guard(ctx, inflight.KeyFor(action, KindCustomType, id), func(ctx context.Context) error {
		var err error
		if id == 0 {
			saved, err = s.backend.CreateCustomType(ctx, d)
		} else {
			saved, err = s.backend.UpdateCustomType(ctx, id, d)
		}
		return err
	})
	if err != nil {
		return schema.CustomType{}, s.fail(err)
	}
	if saved.ID == 0 {
		saved = schema.CustomType{ID: id, CustomTypeDraft: d}
	}

	s.log.Info().Int64("type_id", saved.ID).Str("action", action).Msg("custom type saved")
	s.afterWrite(ctx, s.refreshTypes, d.AppID)
	s.succeed(fmt.Sprintf("custom type %q saved", d.Name))
	return saved, nil
}

// DeleteType deletes custom type id.
func (s *Session) DeleteType(ctx context.Context, id int64) error {
	appID, err := s.currentAppID()
	if err != nil {
		return s.fail(err)
	}

	err = s.guard(ctx, inflight.KeyFor(inflight.ActionDelete, KindCustomType, id), func(ctx context.Context) error {
		return s.backend.DeleteCustomType(ctx, id)
	})
	if err != nil {
		return s.fail(err)
	}

	s.log.Info().Int64("type_id", id).Msg("custom type deleted")
	s.afterWrite(ctx, s.refreshTypes, appID)
	s.succeed("custom type deleted")
	return nil
}
