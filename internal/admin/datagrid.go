package admin

// Values is the read side of a request's query string.
type Values interface {
	Get(key string) string
}

// Datagrid is the set of filters built from a DatagridMapper.
type Datagrid struct {
	filters []Filter
}

// NewDatagrid builds one filter per declared field, in declaration order.
func NewDatagrid(m *DatagridMapper) (*Datagrid, error) {
	d := &Datagrid{}
	for _, fd := range m.Fields() {
		f, err := NewFilter(fd)
		if err != nil {
			return nil, err
		}
		d.filters = append(d.filters, f)
	}
	return d, nil
}

// FilterKey is the query key a filter reads its value from.
func FilterKey(name string) string {
	return "filter[" + name + "]"
}

// Apply runs every filter that has a value in values against q and returns
// the names of the filters it applied.
func (d *Datagrid) Apply(q ProxyQuery, values Values) ([]string, error) {
	var applied []string
	for _, f := range d.filters {
		v := values.Get(FilterKey(f.Name()))
		if v == "" {
			continue
		}
		if err := f.Apply(q, q.RootAlias(), v); err != nil {
			return applied, err
		}
		applied = append(applied, f.Name())
	}
	return applied, nil
}
