package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// recordingQuery is a ProxyQuery that records the calls made on it.
type recordingQuery struct {
	alias    string
	calls    []string
	joins    [][2]string
	wheres   []string
	params   map[string]any
	preloads []string
	columns  map[string]string
}

func newRecordingQuery() *recordingQuery {
	return &recordingQuery{alias: "o", params: map[string]any{}}
}

func (q *recordingQuery) RootAlias() string { return q.alias }

func (q *recordingQuery) LeftJoin(join, alias string) QueryBuilder {
	q.calls = append(q.calls, "join")
	q.joins = append(q.joins, [2]string{join, alias})
	return q
}

func (q *recordingQuery) AndWhere(predicate string) QueryBuilder {
	q.calls = append(q.calls, "where")
	q.wheres = append(q.wheres, predicate)
	return q
}

func (q *recordingQuery) SetParameter(name string, value any) QueryBuilder {
	q.calls = append(q.calls, "param")
	q.params[name] = value
	return q
}

func (q *recordingQuery) Column(field string) (string, error) {
	if c, ok := q.columns[field]; ok {
		return c, nil
	}
	if strings.Contains(field, "missing") {
		return "", errors.New("no such field")
	}
	return field, nil
}

func (q *recordingQuery) Preload(associations ...string) ProxyQuery {
	q.preloads = append(q.preloads, associations...)
	return q
}

func (q *recordingQuery) Execute(context.Context, any, int, int) (int64, error) {
	return 0, nil
}

func (q *recordingQuery) SQL(any) string { return "" }

type values map[string]string

func (v values) Get(key string) string { return v[key] }

// stubRequest renders routes as "<name>?<sorted params>".
type stubRequest struct {
	params map[string]string
	err    error
}

func (r stubRequest) Get(key string) string { return r.params[key] }

func (r stubRequest) URL(route string, params map[string]any) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf("%s?id=%v", route, params["id"]), nil
}

type article struct {
	ID    uint
	Title string
	Valid bool
}

func (a *article) Validate() error {
	if !a.Valid {
		return errors.New("invalid article")
	}
	return nil
}

// stubManager is a ModelManager made of function fields.
type stubManager struct {
	log      *[]string
	query    *recordingQuery
	guesses  map[string]string
	bindFn   func(obj any, data FormData) error
	createFn func(obj any) error
}

func (m *stubManager) record(s string) {
	if m.log != nil {
		*m.log = append(*m.log, s)
	}
}

func (m *stubManager) Find(_ context.Context, dest any, id string) error {
	m.record("find:" + id)
	if id == "404" {
		return errors.New("not found")
	}
	return nil
}

func (m *stubManager) Create(_ context.Context, obj any) error {
	m.record("create")
	if m.createFn != nil {
		return m.createFn(obj)
	}
	return nil
}

func (m *stubManager) Update(context.Context, any) error {
	m.record("update")
	return nil
}

func (m *stubManager) Delete(context.Context, any) error {
	m.record("delete")
	return nil
}

func (m *stubManager) CreateQuery(context.Context, any, string) ProxyQuery {
	if m.query == nil {
		m.query = newRecordingQuery()
	}
	return m.query
}

func (m *stubManager) Bind(_ context.Context, obj any, _ *FormMapper, data FormData) error {
	m.record("bind")
	if m.bindFn != nil {
		return m.bindFn(obj, data)
	}
	return nil
}

func (m *stubManager) GuessType(_ any, field string) string { return m.guesses[field] }

func (m *stubManager) Choices(context.Context, any, string) ([]Choice, error) { return nil, nil }

func (m *stubManager) Identifier(any) any { return 1 }

func (m *stubManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// articleAdmin is a minimal Admin recording the hooks it runs.
type articleAdmin struct {
	*Base
	log       *[]string
	insertErr error
	menuCalls []string
}

func newArticleAdmin(code string, mm ModelManager, log *[]string) *articleAdmin {
	return &articleAdmin{
		Base: NewBase(Config{Code: code, ModelManager: mm}),
		log:  log,
	}
}

func (a *articleAdmin) NewInstance() any { return &article{} }

func (a *articleAdmin) ConfigureShowFields(m *ShowMapper) {
	*a.log = append(*a.log, "show")
	m.Add("title")
}

func (a *articleAdmin) ConfigureFormFields(m *FormMapper) {
	*a.log = append(*a.log, "form")
	m.With("General").Add("title").Add("valid").End()
}

func (a *articleAdmin) ConfigureListFields(m *ListMapper) {
	*a.log = append(*a.log, "list")
	m.AddIdentifier("title").Add("author")
}

func (a *articleAdmin) ConfigureDatagridFilters(m *DatagridMapper) {
	*a.log = append(*a.log, "filter")
	m.Add("title").Add("published")
}

func (a *articleAdmin) PreInsert(ctx context.Context, obj any) error {
	if err := a.Base.PreInsert(ctx, obj); err != nil {
		return err
	}
	*a.log = append(*a.log, "preInsert")
	return a.insertErr
}

func (a *articleAdmin) ConfigureSideMenu(_ context.Context, menu *MenuItem, action string, child Admin) error {
	name := "none"
	if child != nil {
		name = child.Code()
	}
	a.menuCalls = append(a.menuCalls, action+":"+name)
	menu.AddChild("entry", "/"+action)
	return nil
}

type recordingExtension struct {
	name string
	log  *[]string
	err  error
}

func (e recordingExtension) PreInsert(context.Context, Admin, any) error {
	*e.log = append(*e.log, e.name+".preInsert")
	return e.err
}

func (e recordingExtension) PreUpdate(context.Context, Admin, any) error {
	*e.log = append(*e.log, e.name+".preUpdate")
	return e.err
}

func (e recordingExtension) PreRemove(context.Context, Admin, any) error {
	*e.log = append(*e.log, e.name+".preRemove")
	return e.err
}
