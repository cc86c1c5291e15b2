// Package schema implements the typed-parameter schema model of the console:
// custom types and their fields, interface parameters, the editors that build
// them and the rules applied before a draft is submitted.
package schema

import "time"

// Field is a member of a custom type.
type Field struct {
	Name string   `json:"name" yaml:"name" validate:"notblank"`
	Type TypeKind `json:"type" yaml:"type" validate:"type_kind"`
	// Ref identifies the referenced custom type; set iff Type is TypeCustom.
	Ref         *int64 `json:"ref,omitempty" yaml:"ref,omitempty"`
	IsArray     bool   `json:"is_array" yaml:"is_array"`
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Parameter is a member of an interface parameter list.
type Parameter struct {
	Field    `yaml:",inline"`
	Location Location `json:"location" yaml:"location" validate:"param_location"`
	Group    Group    `json:"group" yaml:"group" validate:"param_group"`
	// DefaultValue is carried only by fixed parameters.
	DefaultValue string `json:"default_value,omitempty" yaml:"default_value,omitempty"`
}

// IsFixed reports whether p is injected by the adapter.
func (p Parameter) IsFixed() bool { return p.Group == GroupFixed }

// CustomTypeDraft is the writable part of a custom type.
type CustomTypeDraft struct {
	AppID       int64   `json:"app_id" yaml:"app_id" validate:"gt=0"`
	Name        string  `json:"name" yaml:"name" validate:"notblank,max=255"`
	Description string  `json:"description" yaml:"description"`
	Fields      []Field `json:"fields" yaml:"fields" validate:"dive"`
}

// CustomType is a named record schema owned by one application.
type CustomType struct {
	ID              int64 `json:"id" yaml:"id"`
	CustomTypeDraft `yaml:",inline"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

// DefaultParam is an entry of the flat default parameter list of simple interfaces.
type DefaultParam struct {
	Name        string   `json:"name" yaml:"name"`
	Value       string   `json:"value" yaml:"value"`
	Location    Location `json:"location,omitempty" yaml:"location,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// DefaultHeader is a header sent with every call of an interface.
type DefaultHeader struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// InterfaceDraft is the wire shape of an interface definition.
type InterfaceDraft struct {
	AppID          int64           `json:"app_id" yaml:"app_id"`
	Name           string          `json:"name" yaml:"name"`
	Description    string          `json:"description" yaml:"description"`
	Method         Method          `json:"method" yaml:"method" validate:"http_method"`
	Protocol       string          `json:"protocol" yaml:"protocol"`
	URL            string          `json:"url" yaml:"url"`
	AuthType       string          `json:"auth_type" yaml:"auth_type"`
	Enabled        bool            `json:"enabled" yaml:"enabled"`
	PostProcess    string          `json:"post_process" yaml:"post_process"`
	Parameters     []Parameter     `json:"parameters" yaml:"parameters" validate:"dive"`
	DefaultParams  []DefaultParam  `json:"default_params,omitempty" yaml:"default_params,omitempty"`
	DefaultHeaders []DefaultHeader `json:"default_headers,omitempty" yaml:"default_headers,omitempty"`
}

// Interface is a persisted HTTP endpoint definition.
type Interface struct {
	ID             int64 `json:"id" yaml:"id"`
	InterfaceDraft `yaml:",inline"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

// ApplicationDraft is the writable part of an application.
type ApplicationDraft struct {
	Name        string `json:"name" yaml:"name" validate:"notblank,max=255"`
	Description string `json:"description" yaml:"description" validate:"max=500"`
	Path        string `json:"path" yaml:"path" validate:"omitempty,max=255"`
	Protocol    string `json:"protocol" yaml:"protocol" validate:"omitempty,oneof=sse streamable"`
	PostProcess string `json:"post_process,omitempty" yaml:"post_process,omitempty"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
}

// Application is an API namespace grouping custom types and interfaces.
type Application struct {
	ID               int64 `json:"id" yaml:"id"`
	ApplicationDraft `yaml:",inline"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt        time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

func cloneRef(ref *int64) *int64 {
	if ref == nil {
		return nil
	}
	v := *ref
	return &v
}

// Ref returns a pointer to id, for building fields that reference a custom type.
func Ref(id int64) *int64 { return &id }
