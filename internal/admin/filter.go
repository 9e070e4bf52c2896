package admin

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// CallbackFunc applies a custom filter value to qb.
type CallbackFunc func(qb QueryBuilder, alias, field string, value any) error

// ErrUnknownFilterType is returned when a declared filter has no implementation.
var ErrUnknownFilterType = errors.New("unknown filter type")

// Filter narrows a ProxyQuery from one request value.
type Filter interface {
	Name() string
	Apply(q ProxyQuery, alias, value string) error
}

// Truthy reports whether v counts as a set filter value. nil, false, the
// empty string, "0" and numeric zero are falsy.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	case reflect.Slice, reflect.Map:
		return rv.Len() > 0
	}
	return true
}

// NewFilter builds the filter for a datagrid field description.
func NewFilter(fd *FieldDescription) (Filter, error) {
	switch fd.Type {
	case TypeString, TypeText, "":
		return &stringFilter{name: fd.Name}, nil
	case TypeBoolean:
		return &equalFilter{name: fd.Name, parse: parseBool}, nil
	case TypeChoice, TypeInteger:
		return &equalFilter{name: fd.Name, parse: parseNumber}, nil
	case TypeManyToMany, TypeModel:
		return &associationFilter{name: fd.Name}, nil
	case TypeCallback:
		var cb CallbackFunc
		switch fn := fd.Options["callback"].(type) {
		case CallbackFunc:
			cb = fn
		case func(QueryBuilder, string, string, any) error:
			cb = fn
		}
		if cb == nil {
			return nil, fmt.Errorf("filter %s: callback option is not a CallbackFunc", fd.Name)
		}
		return &callbackFilter{name: fd.Name, fieldType: fd.Options.String("field_type"), callback: cb}, nil
	default:
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnknownFilterType, fd.Type, fd.Name)
	}
}

func paramName(name string) string {
	return "filter_" + strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

type stringFilter struct {
	name string
}

func (f *stringFilter) Name() string { return f.name }

func (f *stringFilter) Apply(q ProxyQuery, alias, value string) error {
	col, err := q.Column(f.name)
	if err != nil {
		return err
	}
	p := paramName(f.name)
	q.AndWhere(fmt.Sprintf("%s.%s LIKE :%s", alias, col, p))
	q.SetParameter(p, "%"+value+"%")
	return nil
}

type equalFilter struct {
	name  string
	parse func(string) (any, error)
}

func (f *equalFilter) Name() string { return f.name }

func (f *equalFilter) Apply(q ProxyQuery, alias, value string) error {
	col, err := q.Column(f.name)
	if err != nil {
		return err
	}
	v, err := f.parse(value)
	if err != nil {
		return fmt.Errorf("filter %s: %w", f.name, err)
	}
	p := paramName(f.name)
	q.AndWhere(fmt.Sprintf("%s.%s = :%s", alias, col, p))
	q.SetParameter(p, v)
	return nil
}

// associationFilter keeps rows related to any of a comma separated list of ids.
type associationFilter struct {
	name string
}

func (f *associationFilter) Name() string { return f.name }

func (f *associationFilter) Apply(q ProxyQuery, alias, value string) error {
	ids, err := parseIDs(value)
	if err != nil {
		return fmt.Errorf("filter %s: %w", f.name, err)
	}
	if len(ids) == 0 {
		return nil
	}
	joined := "f_" + f.name
	p := paramName(f.name)
	q.LeftJoin(alias+"."+f.name, joined)
	q.AndWhere(fmt.Sprintf("%s.id IN :%s", joined, p))
	q.SetParameter(p, ids)
	return nil
}

type callbackFilter struct {
	name      string
	fieldType string
	callback  CallbackFunc
}

func (f *callbackFilter) Name() string { return f.name }

func (f *callbackFilter) Apply(q ProxyQuery, alias, value string) error {
	var v any = value
	if f.fieldType == "checkbox" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			b = Truthy(value)
		}
		v = b
	}
	return f.callback(q, alias, f.name, v)
}

func parseBool(s string) (any, error) {
	return strconv.ParseBool(s)
}

func parseNumber(s string) (any, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	return s, nil
}

func parseIDs(s string) ([]uint64, error) {
	var ids []uint64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
