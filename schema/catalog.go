package schema

// Catalog indexes the custom types of one application. A nil *Catalog behaves
// as an application without custom types.
type Catalog struct {
	appID int64
	types []CustomType
	byID  map[int64]int
}

// TypeOption is one selectable entry of a type picker.
type TypeOption struct {
	Kind  TypeKind
	Ref   *int64
	Label string
}

// NewCatalog builds a catalog from the loaded custom types of appID.
// Types owned by other applications are ignored.
func NewCatalog(appID int64, types []CustomType) *Catalog {
	c := &Catalog{appID: appID, byID: make(map[int64]int, len(types))}
	for _, t := range types {
		if t.AppID != appID {
			continue
		}
		c.byID[t.ID] = len(c.types)
		c.types = append(c.types, t)
	}
	return c
}

func (c *Catalog) AppID() int64 {
	if c == nil {
		return 0
	}
	return c.appID
}

// Lookup returns the custom type with the given id.
func (c *Catalog) Lookup(id int64) (CustomType, bool) {
	if c == nil {
		return CustomType{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return CustomType{}, false
	}
	return c.types[i], true
}

// Types returns the catalog's types in load order.
func (c *Catalog) Types() []CustomType {
	if c == nil {
		return nil
	}
	out := make([]CustomType, len(c.types))
	copy(out, c.types)
	return out
}

// Options returns the primitive kinds followed by every custom type except exclude.
// Pass 0 to exclude nothing.
func (c *Catalog) Options(exclude int64) []TypeOption {
	opts := make([]TypeOption, 0, len(PrimitiveKinds)+len(c.Types()))
	for _, k := range PrimitiveKinds {
		opts = append(opts, TypeOption{Kind: k, Label: k.String()})
	}
	for _, t := range c.Types() {
		if exclude != 0 && t.ID == exclude {
			continue
		}
		opts = append(opts, TypeOption{Kind: TypeCustom, Ref: Ref(t.ID), Label: t.Name})
	}
	return opts
}

// InScope reports whether ref names a type of this application other than exclude.
func (c *Catalog) InScope(ref, exclude int64) bool {
	if exclude != 0 && ref == exclude {
		return false
	}
	_, ok := c.Lookup(ref)
	return ok
}

// DisplayType returns the name shown for a field type: the referenced type's
// name for custom kinds, or the literal "custom" when the ref cannot be resolved.
func (c *Catalog) DisplayType(kind TypeKind, ref *int64) string {
	if kind != TypeCustom {
		return kind.String()
	}
	if ref != nil {
		if t, ok := c.Lookup(*ref); ok {
			return t.Name
		}
	}
	return TypeCustom.String()
}

// Label is DisplayType with "[]" appended for arrays.
func (c *Catalog) Label(kind TypeKind, ref *int64, isArray bool) string {
	s := c.DisplayType(kind, ref)
	if isArray {
		return s + "[]"
	}
	return s
}
