package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors returned when decoding or setting an unknown variant value.
var (
	ErrUnknownTypeKind = errors.New("unknown type")
	ErrUnknownGroup    = errors.New("unknown parameter group")
	ErrUnknownLocation = errors.New("unknown parameter location")
	ErrUnknownMethod   = errors.New("unknown http method")
)

// TypeKind is the type of a field or parameter.
type TypeKind string

const (
	TypeString  TypeKind = "string"
	TypeNumber  TypeKind = "number"
	TypeBoolean TypeKind = "boolean"
	TypeCustom  TypeKind = "custom"
)

// PrimitiveKinds lists the kinds that never carry a reference, in display order.
var PrimitiveKinds = []TypeKind{TypeString, TypeNumber, TypeBoolean}

func (k TypeKind) Valid() bool {
	switch k {
	case TypeString, TypeNumber, TypeBoolean, TypeCustom:
		return true
	default:
		return false
	}
}

// IsPrimitive reports whether k is one of the scalar kinds.
func (k TypeKind) IsPrimitive() bool {
	switch k {
	case TypeString, TypeNumber, TypeBoolean:
		return true
	default:
		return false
	}
}

func (k TypeKind) String() string { return string(k) }

func (k *TypeKind) UnmarshalText(text []byte) error {
	v := TypeKind(text)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTypeKind, string(text))
	}
	*k = v
	return nil
}

// Group classifies the role of an interface parameter.
type Group string

const (
	// GroupInput parameters are supplied by the caller.
	GroupInput Group = "input"
	// GroupOutput parameters describe data produced by the call.
	GroupOutput Group = "output"
	// GroupFixed parameters are constants injected by the adapter on every call.
	GroupFixed Group = "fixed"
)

// Groups lists every group in display order.
var Groups = []Group{GroupInput, GroupOutput, GroupFixed}

func (g Group) Valid() bool {
	switch g {
	case GroupInput, GroupOutput, GroupFixed:
		return true
	default:
		return false
	}
}

func (g Group) String() string { return string(g) }

func (g *Group) UnmarshalText(text []byte) error {
	v := Group(text)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, string(text))
	}
	*g = v
	return nil
}

// Location is where in the HTTP request a parameter is carried.
type Location string

const (
	LocationQuery  Location = "query"
	LocationHeader Location = "header"
	LocationBody   Location = "body"
	LocationPath   Location = "path"
)

func (l Location) Valid() bool {
	switch l {
	case LocationQuery, LocationHeader, LocationBody, LocationPath:
		return true
	default:
		return false
	}
}

func (l Location) String() string { return string(l) }

func (l *Location) UnmarshalText(text []byte) error {
	v := Location(text)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, string(text))
	}
	*l = v
	return nil
}

// Method is the HTTP verb of an interface.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	default:
		return false
	}
}

func (m Method) String() string { return string(m) }

func (m *Method) UnmarshalText(text []byte) error {
	v := Method(text)
	if !v.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, string(text))
	}
	*m = v
	return nil
}
