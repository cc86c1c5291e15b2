package schema

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownType       = errors.New("custom type not found")
	ErrCircularReference = errors.New("circular reference between custom types")
)

// BuildSchema returns the JSON schema of the object formed by the parameters
// of group. Non-array primitive parameters with a default value are omitted
// because the adapter injects them. Custom references expand into the object
// schema of the referenced type.
func BuildSchema(params []Parameter, group Group, catalog *Catalog) (map[string]any, error) {
	properties := make(map[string]any)
	required := make([]string, 0)

	for _, p := range params {
		if p.Group != group {
			continue
		}
		if p.DefaultValue != "" && !p.IsArray && p.Type.IsPrimitive() {
			continue
		}
		prop, err := fieldSchema(p.Field, catalog, map[int64]bool{})
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}, nil
}

// TypeSchema returns the object schema of a custom type.
func TypeSchema(id int64, catalog *Catalog) (map[string]any, error) {
	return typeSchema(id, catalog, map[int64]bool{})
}

func fieldSchema(f Field, catalog *Catalog, visiting map[int64]bool) (map[string]any, error) {
	item, err := kindSchema(f, catalog, visiting)
	if err != nil {
		return nil, err
	}
	if !f.IsArray {
		return item, nil
	}
	return map[string]any{
		"type":        "array",
		"description": f.Description,
		"items":       item,
	}, nil
}

func kindSchema(f Field, catalog *Catalog, visiting map[int64]bool) (map[string]any, error) {
	switch f.Type {
	case TypeString, TypeNumber, TypeBoolean:
		return map[string]any{
			"type":        f.Type.String(),
			"description": f.Description,
		}, nil
	case TypeCustom:
		if f.Ref == nil {
			return nil, ErrRefRequired
		}
		return typeSchema(*f.Ref, catalog, visiting)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeKind, string(f.Type))
	}
}

func typeSchema(id int64, catalog *Catalog, visiting map[int64]bool) (map[string]any, error) {
	t, ok := catalog.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, id)
	}
	if visiting[id] {
		return nil, fmt.Errorf("%w: %s", ErrCircularReference, t.Name)
	}
	visiting[id] = true
	defer delete(visiting, id)

	properties := make(map[string]any, len(t.Fields))
	required := make([]string, 0)
	for _, f := range t.Fields {
		prop, err := fieldSchema(f, catalog, visiting)
		if err != nil {
			return nil, err
		}
		properties[f.Name] = prop
		if f.Required {
			required = append(required, f.Name)
		}
	}

	return map[string]any{
		"type":        "object",
		"description": t.Description,
		"properties":  properties,
		"required":    required,
	}, nil
}
