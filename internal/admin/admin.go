package admin

import (
	"context"
	"fmt"
	"strings"
)

// Admin configures the back-office views of one model.
type Admin interface {
	Code() string
	AdminBase() *Base
	NewInstance() any

	ConfigureShowFields(m *ShowMapper)
	ConfigureFormFields(m *FormMapper)
	ConfigureListFields(m *ListMapper)
	ConfigureDatagridFilters(m *DatagridMapper)
	ConfigureQuery(ctx context.Context, q ProxyQuery) error
	ConfigureSideMenu(ctx context.Context, menu *MenuItem, action string, child Admin) error

	PreInsert(ctx context.Context, obj any) error
	PreUpdate(ctx context.Context, obj any) error
	PreRemove(ctx context.Context, obj any) error
}

// Extension hooks into the lifecycle of every object an admin persists.
type Extension interface {
	PreInsert(ctx context.Context, a Admin, obj any) error
	PreUpdate(ctx context.Context, a Admin, obj any) error
	PreRemove(ctx context.Context, a Admin, obj any) error
}

// Config describes an admin at construction time.
type Config struct {
	Code         string
	Label        string
	RoutePattern string
	ModelManager ModelManager
	Translator   Translator
}

// Base implements the parts of Admin shared by every admin. Concrete admins
// embed *Base and override what they need.
type Base struct {
	code         string
	label        string
	routePattern string
	modelManager ModelManager
	translator   Translator
	extensions   []Extension

	self     Admin
	parent   *Base
	children []Admin
	pool     *Pool

	show     *ShowMapper
	form     *FormMapper
	list     *ListMapper
	datagrid *DatagridMapper
	grid     *Datagrid
}

func NewBase(cfg Config) *Base {
	b := &Base{
		code:         cfg.Code,
		label:        cfg.Label,
		routePattern: cfg.RoutePattern,
		modelManager: cfg.ModelManager,
		translator:   cfg.Translator,
		show:         NewShowMapper(),
		form:         NewFormMapper(),
		list:         NewListMapper(),
		datagrid:     NewDatagridMapper(),
	}
	if b.translator == nil {
		b.translator = identityTranslator{}
	}
	if b.label == "" {
		b.label = cfg.Code
	}
	if b.routePattern == "" {
		b.routePattern = "/" + strings.ReplaceAll(cfg.Code, ".", "/")
	}
	return b
}

func (b *Base) Code() string           { return b.code }
func (b *Base) AdminBase() *Base       { return b }
func (b *Base) Label() string          { return b.translator.Trans(b.label) }
func (b *Base) Trans(id string) string { return b.translator.Trans(id) }

func (b *Base) ModelManager() ModelManager { return b.modelManager }

func (b *Base) SetModelManager(m ModelManager) { b.modelManager = m }

func (b *Base) SetTranslator(t Translator) {
	if t == nil {
		t = identityTranslator{}
	}
	b.translator = t
}

// AddExtension registers e to run on every lifecycle hook, in registration order.
func (b *Base) AddExtension(e Extension) {
	b.extensions = append(b.extensions, e)
}

func (b *Base) ConfigureShowFields(*ShowMapper)                  {}
func (b *Base) ConfigureFormFields(*FormMapper)                  {}
func (b *Base) ConfigureListFields(*ListMapper)                  {}
func (b *Base) ConfigureDatagridFilters(*DatagridMapper)         {}
func (b *Base) ConfigureQuery(context.Context, ProxyQuery) error { return nil }

func (b *Base) ConfigureSideMenu(context.Context, *MenuItem, string, Admin) error {
	return nil
}

func (b *Base) PreInsert(ctx context.Context, obj any) error {
	for _, e := range b.extensions {
		if err := e.PreInsert(ctx, b.self, obj); err != nil {
			return err
		}
	}
	return nil
}

func (b *Base) PreUpdate(ctx context.Context, obj any) error {
	for _, e := range b.extensions {
		if err := e.PreUpdate(ctx, b.self, obj); err != nil {
			return err
		}
	}
	return nil
}

func (b *Base) PreRemove(ctx context.Context, obj any) error {
	for _, e := range b.extensions {
		if err := e.PreRemove(ctx, b.self, obj); err != nil {
			return err
		}
	}
	return nil
}

func (b *Base) ShowFields() *ShowMapper         { return b.show }
func (b *Base) FormFields() *FormMapper         { return b.form }
func (b *Base) ListFields() *ListMapper         { return b.list }
func (b *Base) DatagridFields() *DatagridMapper { return b.datagrid }
func (b *Base) Datagrid() *Datagrid             { return b.grid }

// HasFormFieldDescription reports whether the built form declares name.
func (b *Base) HasFormFieldDescription(name string) bool {
	return b.form.Has(name)
}

// AddChild nests child under this admin. Both must be registered in the
// same pool before their routes are used.
func (b *Base) AddChild(child Admin) {
	child.AdminBase().parent = b
	b.children = append(b.children, child)
}

// IsChild reports whether the admin was added to another with AddChild.
func (b *Base) IsChild() bool { return b.parent != nil }

// Parent returns the admin this one is nested under, or nil.
func (b *Base) Parent() Admin {
	if b.parent == nil {
		return nil
	}
	return b.parent.self
}

func (b *Base) Children() []Admin {
	out := make([]Admin, len(b.children))
	copy(out, b.children)
	return out
}

// Child returns the nested admin with code.
func (b *Base) Child(code string) (Admin, bool) {
	for _, c := range b.children {
		if c.Code() == code {
			return c, true
		}
	}
	return nil, false
}

// RoutePattern is the path prefix of the admin's routes. A child is nested
// under its parent's object as "<parent>/:id/<child>".
func (b *Base) RoutePattern() string {
	if b.parent == nil {
		return b.routePattern
	}
	return b.parent.RoutePattern() + "/:" + b.parent.IDParameter() + "/" + lastSegment(b.routePattern)
}

// RouteName prefixes the names of the admin's routes.
func (b *Base) RouteName() string {
	return strings.ReplaceAll(b.code, ".", "_")
}

// IDParameter is the route parameter holding this admin's object id.
func (b *Base) IDParameter() string {
	if b.parent == nil {
		return "id"
	}
	return "childId"
}

// RouteFor resolves name to a route name. A plain action belongs to this
// admin. "<code>.<action>" names an action of this admin, of one of its
// children or of any admin in the pool.
func (b *Base) RouteFor(name string) (string, error) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return b.RouteName() + "_" + name, nil
	}
	code, action := name[:i], name[i+1:]
	if code == b.code {
		return b.RouteName() + "_" + action, nil
	}
	if child, ok := b.Child(code); ok {
		return child.AdminBase().RouteName() + "_" + action, nil
	}
	if b.pool != nil {
		if a, ok := b.pool.Get(code); ok {
			return a.AdminBase().RouteName() + "_" + action, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownRoute, name)
}

// GenerateURL renders the route name resolves to through the current request.
func (b *Base) GenerateURL(ctx context.Context, name string, params map[string]any) (string, error) {
	route, err := b.RouteFor(name)
	if err != nil {
		return "", err
	}
	req, ok := RequestFrom(ctx)
	if !ok {
		return "", ErrNoRequest
	}
	return req.URL(route, params)
}

// RequestValue reads key from the current request.
func (b *Base) RequestValue(ctx context.Context, key string) (string, error) {
	req, ok := RequestFrom(ctx)
	if !ok {
		return "", ErrNoRequest
	}
	return req.Get(key), nil
}

func lastSegment(p string) string {
	p = strings.TrimSuffix(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
