package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	t.Parallel()
	var nilPtr *int
	one := 1
	tests := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{false, false},
		{"", false},
		{"0", false},
		{0, false},
		{int64(0), false},
		{uint(0), false},
		{0.0, false},
		{nilPtr, false},
		{[]int{}, false},
		{true, true},
		{"1", true},
		{"yes", true},
		{1, true},
		{-2, true},
		{0.5, true},
		{&one, true},
		{[]int{1}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Truthy(tt.value), "Truthy(%#v)", tt.value)
	}
}

func TestNewFilter_Types(t *testing.T) {
	t.Parallel()
	cb := func(QueryBuilder, string, string, any) error { return nil }

	for _, typ := range []string{"", TypeString, TypeBoolean, TypeChoice, TypeManyToMany} {
		_, err := NewFilter(&FieldDescription{Name: "f", Type: typ})
		assert.NoError(t, err, typ)
	}

	_, err := NewFilter(&FieldDescription{Name: "f", Type: TypeCallback, Options: Options{"callback": cb}})
	assert.NoError(t, err)
	_, err = NewFilter(&FieldDescription{Name: "f", Type: TypeCallback, Options: Options{"callback": CallbackFunc(cb)}})
	assert.NoError(t, err)

	_, err = NewFilter(&FieldDescription{Name: "f", Type: TypeCallback, Options: Options{}})
	assert.Error(t, err)

	_, err = NewFilter(&FieldDescription{Name: "f", Type: TypeDatetime})
	assert.ErrorIs(t, err, ErrUnknownFilterType)
}

func TestFilters_Apply(t *testing.T) {
	t.Parallel()

	t.Run("string", func(t *testing.T) {
		q := newRecordingQuery()
		q.columns = map[string]string{"title": "title"}
		f, _ := NewFilter(&FieldDescription{Name: "title", Type: TypeString})
		require.NoError(t, f.Apply(q, "o", "go"))
		assert.Equal(t, []string{"o.title LIKE :filter_title"}, q.wheres)
		assert.Equal(t, "%go%", q.params["filter_title"])
	})

	t.Run("boolean", func(t *testing.T) {
		q := newRecordingQuery()
		q.columns = map[string]string{"commentsEnabled": "comments_enabled"}
		f, _ := NewFilter(&FieldDescription{Name: "commentsEnabled", Type: TypeBoolean})
		require.NoError(t, f.Apply(q, "o", "true"))
		assert.Equal(t, []string{"o.comments_enabled = :filter_commentsEnabled"}, q.wheres)
		assert.Equal(t, true, q.params["filter_commentsEnabled"])

		assert.Error(t, f.Apply(newRecordingQuery(), "o", "maybe"))
	})

	t.Run("choice", func(t *testing.T) {
		q := newRecordingQuery()
		f, _ := NewFilter(&FieldDescription{Name: "status", Type: TypeChoice})
		require.NoError(t, f.Apply(q, "o", "2"))
		assert.Equal(t, int64(2), q.params["filter_status"])
	})

	t.Run("many to many", func(t *testing.T) {
		q := newRecordingQuery()
		f, _ := NewFilter(&FieldDescription{Name: "tags", Type: TypeManyToMany})
		require.NoError(t, f.Apply(q, "o", "1, 3"))
		assert.Equal(t, [][2]string{{"o.tags", "f_tags"}}, q.joins)
		assert.Equal(t, []string{"f_tags.id IN :filter_tags"}, q.wheres)
		assert.Equal(t, []uint64{1, 3}, q.params["filter_tags"])

		assert.Error(t, f.Apply(newRecordingQuery(), "o", "1,x"))
	})

	t.Run("unknown column", func(t *testing.T) {
		f, _ := NewFilter(&FieldDescription{Name: "missing", Type: TypeString})
		assert.Error(t, f.Apply(newRecordingQuery(), "o", "x"))
	})

	t.Run("callback checkbox", func(t *testing.T) {
		var got []any
		cb := func(qb QueryBuilder, alias, field string, value any) error {
			assert.Equal(t, "o", alias)
			assert.Equal(t, "with_open_comments", field)
			got = append(got, value)
			return nil
		}
		f, _ := NewFilter(&FieldDescription{
			Name:    "with_open_comments",
			Type:    TypeCallback,
			Options: Options{"callback": cb, "field_type": "checkbox"},
		})
		for _, v := range []string{"1", "0", "true", "on"} {
			require.NoError(t, f.Apply(newRecordingQuery(), "o", v))
		}
		assert.Equal(t, []any{true, false, true, true}, got)
	})
}

func TestDatagrid_Apply(t *testing.T) {
	t.Parallel()
	var order []string
	cb := func(qb QueryBuilder, alias, field string, value any) error {
		order = append(order, field)
		return nil
	}
	m := NewDatagridMapper()
	m.Add("title").
		Add("enabled", WithType(TypeBoolean)).
		Add("custom", WithType(TypeCallback), WithOptions(Options{"callback": cb}))

	d, err := NewDatagrid(m)
	require.NoError(t, err)

	q := newRecordingQuery()
	applied, err := d.Apply(q, values{
		FilterKey("custom"):  "x",
		FilterKey("enabled"): "1",
		"title":              "ignored without filter[] key",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"enabled", "custom"}, applied)
	assert.Equal(t, []string{"custom"}, order)
	assert.Equal(t, []string{"o.enabled = :filter_enabled"}, q.wheres)
}

func TestDatagrid_StopsOnError(t *testing.T) {
	t.Parallel()
	m := NewDatagridMapper()
	m.Add("enabled", WithType(TypeBoolean)).Add("title")
	d, err := NewDatagrid(m)
	require.NoError(t, err)

	applied, err := d.Apply(newRecordingQuery(), values{FilterKey("enabled"): "nope", FilterKey("title"): "a"})
	assert.Error(t, err)
	assert.Empty(t, applied)
}
