// Package admin holds the collaborators an entity admin is configured
// against: field mappers, filters and datagrid, menus, translation and the
// Base that drives lifecycle hooks, URL generation and admin hierarchy.
package admin

// Options carries widget or filter options keyed by name.
type Options map[string]any

// Bool reads a boolean option, returning def when it is absent.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// String reads a string option.
func (o Options) String(key string) string {
	s, _ := o[key].(string)
	return s
}

// Field types understood by the admin layer.
const (
	TypeString     = "string"
	TypeText       = "text"
	TypeBoolean    = "boolean"
	TypeInteger    = "integer"
	TypeDatetime   = "datetime"
	TypeChoice     = "choice"
	TypeModel      = "model"
	TypeManyToMany = "many_to_many"
	TypeCallback   = "callback"
)

// FieldDescription is one declared field of a show, form, list or filter view.
type FieldDescription struct {
	Name         string  `json:"name"`
	Type         string  `json:"type,omitempty"`
	Options      Options `json:"options,omitempty"`
	FieldType    string  `json:"fieldType,omitempty"`
	FieldOptions Options `json:"fieldOptions,omitempty"`
	Identifier   bool    `json:"identifier,omitempty"`
	Group        string  `json:"group,omitempty"`
}

// FieldOption customises a FieldDescription while it is declared.
type FieldOption func(*FieldDescription)

func WithType(t string) FieldOption {
	return func(fd *FieldDescription) { fd.Type = t }
}

func WithOptions(o Options) FieldOption {
	return func(fd *FieldDescription) { fd.Options = o }
}

func WithFieldType(t string) FieldOption {
	return func(fd *FieldDescription) { fd.FieldType = t }
}

func WithFieldOptions(o Options) FieldOption {
	return func(fd *FieldDescription) { fd.FieldOptions = o }
}

func newFieldDescription(name string, opts []FieldOption) *FieldDescription {
	fd := &FieldDescription{Name: name, Options: Options{}, FieldOptions: Options{}}
	for _, opt := range opts {
		opt(fd)
	}
	if fd.Options == nil {
		fd.Options = Options{}
	}
	if fd.FieldOptions == nil {
		fd.FieldOptions = Options{}
	}
	return fd
}

// fieldList keeps field descriptions in declaration order. Redeclaring a
// name replaces the description but keeps its original position.
type fieldList struct {
	order  []string
	fields map[string]*FieldDescription
}

func newFieldList() fieldList {
	return fieldList{fields: make(map[string]*FieldDescription)}
}

func (l *fieldList) add(fd *FieldDescription) {
	if _, ok := l.fields[fd.Name]; !ok {
		l.order = append(l.order, fd.Name)
	}
	l.fields[fd.Name] = fd
}

// Has reports whether name was declared.
func (l *fieldList) Has(name string) bool {
	_, ok := l.fields[name]
	return ok
}

// Get returns the description declared for name.
func (l *fieldList) Get(name string) (*FieldDescription, bool) {
	fd, ok := l.fields[name]
	return fd, ok
}

// Keys returns the declared names in display order.
func (l *fieldList) Keys() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Fields returns the declared descriptions in display order.
func (l *fieldList) Fields() []*FieldDescription {
	out := make([]*FieldDescription, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.fields[name])
	}
	return out
}
