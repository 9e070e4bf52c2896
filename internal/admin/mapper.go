package admin

// ShowMapper collects the fields of the show view.
type ShowMapper struct {
	fieldList
}

func NewShowMapper() *ShowMapper {
	return &ShowMapper{fieldList: newFieldList()}
}

func (m *ShowMapper) Add(name string, opts ...FieldOption) *ShowMapper {
	m.add(newFieldDescription(name, opts))
	return m
}

// ListMapper collects the columns of the list view.
type ListMapper struct {
	fieldList
}

func NewListMapper() *ListMapper {
	return &ListMapper{fieldList: newFieldList()}
}

func (m *ListMapper) Add(name string, opts ...FieldOption) *ListMapper {
	m.add(newFieldDescription(name, opts))
	return m
}

// AddIdentifier declares a column that links to the object.
func (m *ListMapper) AddIdentifier(name string, opts ...FieldOption) *ListMapper {
	fd := newFieldDescription(name, opts)
	fd.Identifier = true
	m.add(fd)
	return m
}

// DatagridMapper collects the filters of the list view.
type DatagridMapper struct {
	fieldList
}

func NewDatagridMapper() *DatagridMapper {
	return &DatagridMapper{fieldList: newFieldList()}
}

func (m *DatagridMapper) Add(name string, opts ...FieldOption) *DatagridMapper {
	m.add(newFieldDescription(name, opts))
	return m
}

// FormGroup is a named block of form fields.
type FormGroup struct {
	Name    string   `json:"name"`
	Options Options  `json:"options,omitempty"`
	Fields  []string `json:"fields"`
}

// FormMapper collects the fields of the create and edit forms, grouped with
// With and End.
type FormMapper struct {
	fieldList
	groups  []*FormGroup
	current *FormGroup
}

func NewFormMapper() *FormMapper {
	return &FormMapper{fieldList: newFieldList()}
}

// With opens group name. Reopening an existing group appends to it.
func (m *FormMapper) With(name string, opts ...Options) *FormMapper {
	for _, g := range m.groups {
		if g.Name == name {
			m.current = g
			return m
		}
	}
	g := &FormGroup{Name: name, Options: Options{}}
	for _, o := range opts {
		for k, v := range o {
			g.Options[k] = v
		}
	}
	m.groups = append(m.groups, g)
	m.current = g
	return m
}

func (m *FormMapper) Add(name string, opts ...FieldOption) *FormMapper {
	if m.current == nil {
		m.With("default")
	}
	fd := newFieldDescription(name, opts)
	fd.Group = m.current.Name
	if !m.Has(name) {
		m.current.Fields = append(m.current.Fields, name)
	}
	m.add(fd)
	return m
}

// End closes the current group.
func (m *FormMapper) End() *FormMapper {
	m.current = nil
	return m
}

// Groups returns the form groups in declaration order.
func (m *FormMapper) Groups() []*FormGroup {
	out := make([]*FormGroup, len(m.groups))
	copy(out, m.groups)
	return out
}
