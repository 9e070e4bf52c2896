package admin

// MenuItem is a node of a navigation menu.
type MenuItem struct {
	Name     string      `json:"name"`
	Label    string      `json:"label,omitempty"`
	URI      string      `json:"uri,omitempty"`
	Children []*MenuItem `json:"children,omitempty"`
}

func NewMenuItem(name string) *MenuItem {
	return &MenuItem{Name: name}
}

// AddChild appends an entry linking label to uri and returns it.
func (m *MenuItem) AddChild(label, uri string) *MenuItem {
	child := &MenuItem{Name: label, Label: label, URI: uri}
	m.Children = append(m.Children, child)
	return child
}
