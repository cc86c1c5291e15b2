package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Editor errors. A failed operation leaves the row unchanged.
var (
	ErrNoSuchRow         = errors.New("no such row")
	ErrRefRequired       = errors.New("custom type requires a referenced type")
	ErrRefOutOfScope     = errors.New("referenced type is not available")
	ErrLocked            = errors.New("fixed parameters are always required and never arrays")
	ErrDefaultNotAllowed = errors.New("only fixed parameters carry a default value")
)

// resolveKind checks a type change against the catalog and returns the ref to store.
func resolveKind(c *Catalog, kind TypeKind, ref *int64, exclude int64) (*int64, error) {
	switch kind {
	case TypeString, TypeNumber, TypeBoolean:
		return nil, nil
	case TypeCustom:
		if ref == nil {
			return nil, ErrRefRequired
		}
		if !c.InScope(*ref, exclude) {
			return nil, fmt.Errorf("%w: %d", ErrRefOutOfScope, *ref)
		}
		return cloneRef(ref), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeKind, string(kind))
	}
}

func collectField(f Field) (Field, bool) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return Field{}, false
	}
	f.Ref = cloneRef(f.Ref)
	return f, true
}

// TypeEditor edits the field list of one custom type.
type TypeEditor struct {
	Name        string
	Description string

	catalog *Catalog
	typeID  int64
	rows    []Field
}

// NewTypeEditor starts editing a new custom type of the catalog's application.
func NewTypeEditor(catalog *Catalog) *TypeEditor {
	return &TypeEditor{catalog: catalog}
}

// OpenTypeEditor starts editing an existing custom type.
func OpenTypeEditor(catalog *Catalog, t CustomType) *TypeEditor {
	e := &TypeEditor{
		Name:        t.Name,
		Description: t.Description,
		catalog:     catalog,
		typeID:      t.ID,
		rows:        make([]Field, 0, len(t.Fields)),
	}
	for _, f := range t.Fields {
		f.Ref = cloneRef(f.Ref)
		e.rows = append(e.rows, f)
	}
	return e
}

// TypeID is the id of the edited type, 0 for a new type.
func (e *TypeEditor) TypeID() int64 { return e.typeID }

func (e *TypeEditor) Catalog() *Catalog { return e.catalog }

// TypeOptions lists the selectable types; the edited type itself is excluded.
func (e *TypeEditor) TypeOptions() []TypeOption {
	return e.catalog.Options(e.typeID)
}

// Len returns the number of rows, including unnamed ones.
func (e *TypeEditor) Len() int { return len(e.rows) }

// Row returns a copy of row i.
func (e *TypeEditor) Row(i int) (Field, error) {
	if i < 0 || i >= len(e.rows) {
		return Field{}, ErrNoSuchRow
	}
	f := e.rows[i]
	f.Ref = cloneRef(f.Ref)
	return f, nil
}

// AddField appends a string field and returns its index.
func (e *TypeEditor) AddField() int {
	e.rows = append(e.rows, Field{Type: TypeString})
	return len(e.rows) - 1
}

func (e *TypeEditor) row(i int) (*Field, error) {
	if i < 0 || i >= len(e.rows) {
		return nil, ErrNoSuchRow
	}
	return &e.rows[i], nil
}

// SetType changes the type of row i. Custom kinds need an in-scope ref;
// primitive kinds drop any ref.
func (e *TypeEditor) SetType(i int, kind TypeKind, ref *int64) error {
	f, err := e.row(i)
	if err != nil {
		return err
	}
	r, err := resolveKind(e.catalog, kind, ref, e.typeID)
	if err != nil {
		return err
	}
	f.Type, f.Ref = kind, r
	return nil
}

// SetName renames row i.
func (e *TypeEditor) SetName(i int, name string) error {
	f, err := e.row(i)
	if err != nil {
		return err
	}
	f.Name = name
	return nil
}

func (e *TypeEditor) SetDescription(i int, description string) error {
	f, err := e.row(i)
	if err != nil {
		return err
	}
	f.Description = description
	return nil
}

func (e *TypeEditor) SetArray(i int, isArray bool) error {
	f, err := e.row(i)
	if err != nil {
		return err
	}
	f.IsArray = isArray
	return nil
}

func (e *TypeEditor) SetRequired(i int, required bool) error {
	f, err := e.row(i)
	if err != nil {
		return err
	}
	f.Required = required
	return nil
}

// Remove deletes row i, shifting later rows up.
func (e *TypeEditor) Remove(i int) error {
	if _, err := e.row(i); err != nil {
		return err
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
	return nil
}

// Collect returns the named fields in row order. Names are trimmed and rows
// with an empty name are skipped.
func (e *TypeEditor) Collect() []Field {
	out := make([]Field, 0, len(e.rows))
	for _, r := range e.rows {
		if f, ok := collectField(r); ok {
			out = append(out, f)
		}
	}
	return out
}

// Draft returns the wire draft of the edited type.
func (e *TypeEditor) Draft() CustomTypeDraft {
	return CustomTypeDraft{
		AppID:       e.catalog.AppID(),
		Name:        strings.TrimSpace(e.Name),
		Description: e.Description,
		Fields:      e.Collect(),
	}
}

// InterfaceEditor edits one interface definition. The exported fields are
// plain form values; the parameter rows are changed through its methods.
type InterfaceEditor struct {
	Name           string
	Description    string
	Method         Method
	Protocol       string
	URL            string
	AuthType       string
	PostProcess    string
	Enabled        bool
	DefaultParams  []DefaultParam
	DefaultHeaders []DefaultHeader

	catalog     *Catalog
	interfaceID int64
	rows        []Parameter
}

// NewInterfaceEditor starts editing a new interface of the catalog's application.
func NewInterfaceEditor(catalog *Catalog) *InterfaceEditor {
	return &InterfaceEditor{
		Method:   MethodGet,
		Protocol: "http",
		AuthType: "none",
		Enabled:  true,
		catalog:  catalog,
	}
}

// OpenInterfaceEditor starts editing an existing interface. Fixed rows are
// normalised to required and non-array.
func OpenInterfaceEditor(catalog *Catalog, it Interface) *InterfaceEditor {
	e := &InterfaceEditor{
		Name:           it.Name,
		Description:    it.Description,
		Method:         it.Method,
		Protocol:       it.Protocol,
		URL:            it.URL,
		AuthType:       it.AuthType,
		PostProcess:    it.PostProcess,
		Enabled:        it.Enabled,
		DefaultParams:  append([]DefaultParam(nil), it.DefaultParams...),
		DefaultHeaders: append([]DefaultHeader(nil), it.DefaultHeaders...),
		catalog:        catalog,
		interfaceID:    it.ID,
		rows:           make([]Parameter, 0, len(it.Parameters)),
	}
	for _, p := range it.Parameters {
		p.Ref = cloneRef(p.Ref)
		applyGroup(&p)
		e.rows = append(e.rows, p)
	}
	return e
}

// InterfaceID is the id of the edited interface, 0 for a new one.
func (e *InterfaceEditor) InterfaceID() int64 { return e.interfaceID }

func (e *InterfaceEditor) Catalog() *Catalog { return e.catalog }

// TypeOptions lists the selectable parameter types.
func (e *InterfaceEditor) TypeOptions() []TypeOption {
	return e.catalog.Options(0)
}

func (e *InterfaceEditor) Len() int { return len(e.rows) }

// Row returns a copy of row i.
func (e *InterfaceEditor) Row(i int) (Parameter, error) {
	if i < 0 || i >= len(e.rows) {
		return Parameter{}, ErrNoSuchRow
	}
	p := e.rows[i]
	p.Ref = cloneRef(p.Ref)
	return p, nil
}

// Locked reports whether the required and array flags of row i are locked.
func (e *InterfaceEditor) Locked(i int) bool {
	p, err := e.row(i)
	return err == nil && p.IsFixed()
}

// AddParameter appends a string query parameter in group and returns its index.
func (e *InterfaceEditor) AddParameter(group Group) (int, error) {
	if !group.Valid() {
		return -1, fmt.Errorf("%w: %q", ErrUnknownGroup, string(group))
	}
	p := Parameter{
		Field:    Field{Type: TypeString},
		Location: LocationQuery,
		Group:    group,
	}
	applyGroup(&p)
	e.rows = append(e.rows, p)
	return len(e.rows) - 1, nil
}

// applyGroup enforces the constraints of p's group.
func applyGroup(p *Parameter) {
	switch p.Group {
	case GroupFixed:
		p.Required = true
		p.IsArray = false
	case GroupInput, GroupOutput:
		p.DefaultValue = ""
	}
}

func (e *InterfaceEditor) row(i int) (*Parameter, error) {
	if i < 0 || i >= len(e.rows) {
		return nil, ErrNoSuchRow
	}
	return &e.rows[i], nil
}

// SetType changes the type of row i and re-applies the row's group constraints.
func (e *InterfaceEditor) SetType(i int, kind TypeKind, ref *int64) error {
	p, err := e.row(i)
	if err != nil {
		return err
	}
	r, err := resolveKind(e.catalog, kind, ref, 0)
	if err != nil {
		return err
	}
	p.Type, p.Ref = kind, r
	applyGroup(p)
	return nil
}

// SetGroup moves row i to group. Moving to fixed locks required on and array
// off; moving away from fixed unlocks both and clears the default value.
func (e *InterfaceEditor) SetGroup(i int, group Group) error {
	p, err := e.row(i)
	if err != nil {
		return err
	}
	if !group.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownGroup, string(group))
	}
	p.Group = group
	applyGroup(p)
	return nil
}

func (e *InterfaceEditor) SetLocation(i int, loc Location) error {
	p, err := e.row(i)
	if err != nil {
		return err
	}
	if !loc.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, string(loc))
	}
	p.Location = loc
	return nil
}

// SetName renames row i.
func (e *InterfaceEditor) SetName(i int, name string) error {
	p, err := e.row(i)
	if err != nil {
		return err
	}
	p.Name = name
	return nil
}

func (e *InterfaceEditor) SetDescription(i int, description string) error {
	p, err := e.row(i)
	if err != nil {
		return err
	}
	p.Description = description
	return nil
}

func (e *InterfaceEditor) SetArray(i int, isArray bool) error {
	p, err := e.row(i)
	if err != nil {
		return err
	}
	if p.IsFixed() {
		return ErrLocked
	}
	p.IsArray = isArray
	return nil
}

func (e *InterfaceEditor) SetRequired(i int, required bool) error {
	p, err := e.row(i)
	if err != nil {
		return err
	}
	if p.IsFixed() {
		return ErrLocked
	}
	p.Required = required
	return nil
}

// SetDefaultValue sets the constant injected for a fixed row.
func (e *InterfaceEditor) SetDefaultValue(i int, value string) error {
	p, err := e.row(i)
	if err != nil {
		return err
	}
	if !p.IsFixed() {
		return ErrDefaultNotAllowed
	}
	p.DefaultValue = value
	return nil
}

// Remove deletes row i, shifting later rows up.
func (e *InterfaceEditor) Remove(i int) error {
	if _, err := e.row(i); err != nil {
		return err
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
	return nil
}

// Collect returns the named parameters in row order. Names are trimmed, rows
// with an empty name are skipped and only fixed rows keep a default value.
func (e *InterfaceEditor) Collect() []Parameter {
	out := make([]Parameter, 0, len(e.rows))
	for _, r := range e.rows {
		f, ok := collectField(r.Field)
		if !ok {
			continue
		}
		p := Parameter{Field: f, Location: r.Location, Group: r.Group}
		if r.IsFixed() {
			p.DefaultValue = r.DefaultValue
		}
		out = append(out, p)
	}
	return out
}

// Draft returns the wire draft of the edited interface.
func (e *InterfaceEditor) Draft() InterfaceDraft {
	return InterfaceDraft{
		AppID:          e.catalog.AppID(),
		Name:           strings.TrimSpace(e.Name),
		Description:    e.Description,
		Method:         e.Method,
		Protocol:       e.Protocol,
		URL:            strings.TrimSpace(e.URL),
		AuthType:       e.AuthType,
		Enabled:        e.Enabled,
		PostProcess:    e.PostProcess,
		Parameters:     e.Collect(),
		DefaultParams:  append([]DefaultParam(nil), e.DefaultParams...),
		DefaultHeaders: append([]DefaultHeader(nil), e.DefaultHeaders...),
	}
}
