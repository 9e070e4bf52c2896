package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormMapper_GroupsKeepOrderAndOptions(t *testing.T) {
	t.Parallel()
	m := NewFormMapper()
	m.With("General").
		Add("enabled", WithFieldOptions(Options{"required": false})).
		Add("title").
		End().
		With("Options", Options{"collapsed": true}).
		Add("commentsCloseAt").
		End()

	assert.Equal(t, []string{"enabled", "title", "commentsCloseAt"}, m.Keys())
	groups := m.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "General", groups[0].Name)
	assert.Equal(t, []string{"enabled", "title"}, groups[0].Fields)
	assert.Equal(t, true, groups[1].Options["collapsed"])

	fd, ok := m.Get("enabled")
	require.True(t, ok)
	assert.Equal(t, "General", fd.Group)
	assert.Equal(t, false, fd.FieldOptions["required"])
}

func TestFormMapper_AddWithoutGroup(t *testing.T) {
	t.Parallel()
	m := NewFormMapper()
	m.Add("title")
	require.Len(t, m.Groups(), 1)
	assert.Equal(t, "default", m.Groups()[0].Name)
}

func TestListMapper_Identifier(t *testing.T) {
	t.Parallel()
	m := NewListMapper()
	m.AddIdentifier("title").Add("author", WithType(TypeModel))

	fields := m.Fields()
	require.Len(t, fields, 2)
	assert.True(t, fields[0].Identifier)
	assert.False(t, fields[1].Identifier)
	assert.Equal(t, TypeModel, fields[1].Type)
}

func TestMapper_RedeclareKeepsPosition(t *testing.T) {
	t.Parallel()
	m := NewShowMapper()
	m.Add("a").Add("b").Add("a", WithType(TypeBoolean))

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	fd, _ := m.Get("a")
	assert.Equal(t, TypeBoolean, fd.Type)
	assert.False(t, m.Has("c"))
}

func TestDatagridMapper_Options(t *testing.T) {
	t.Parallel()
	m := NewDatagridMapper()
	m.Add("tags",
		WithType(TypeManyToMany),
		WithOptions(nil),
		WithFieldType("checkbox"),
		WithFieldOptions(Options{"expanded": true}),
	)
	fd, ok := m.Get("tags")
	require.True(t, ok)
	assert.NotNil(t, fd.Options, "nil options are normalised")
	assert.Equal(t, "checkbox", fd.FieldType)
	assert.True(t, fd.FieldOptions.Bool("expanded", false))
	assert.True(t, fd.FieldOptions.Bool("multiple", true))
}

func TestMenuItem_AddChild(t *testing.T) {
	t.Parallel()
	menu := NewMenuItem("root")
	menu.AddChild("One", "/1")
	menu.AddChild("Two", "/2")

	require.Len(t, menu.Children, 2)
	assert.Equal(t, "One", menu.Children[0].Label)
	assert.Equal(t, "/2", menu.Children[1].URI)
}

func TestTranslator(t *testing.T) {
	t.Parallel()
	en := NewTranslator("en")
	assert.Equal(t, "View Post", en.Trans("view_post"))
	assert.Equal(t, "unknown_id", en.Trans("unknown_id"))

	fr := NewTranslator("fr-FR")
	assert.Equal(t, "fr", fr.Locale())
	assert.Equal(t, "Voir les commentaires", fr.Trans("link_view_comment"))

	assert.Equal(t, "en", NewTranslator("not a locale").Locale())
	assert.Equal(t, "view_post", identityTranslator{}.Trans("view_post"))
}
