package news

import (
	"context"
	"errors"
	"fmt"

	"newsdesk/internal/admin"
	"newsdesk/internal/models"
)

// recordingBuilder is a ProxyQuery recording every call made on it.
type recordingBuilder struct {
	calls  []string
	joins  [][2]string
	wheres []string
	params map[string]any
}

func newRecordingBuilder() *recordingBuilder {
	return &recordingBuilder{params: map[string]any{}}
}

func (q *recordingBuilder) RootAlias() string { return "o" }

func (q *recordingBuilder) LeftJoin(join, alias string) admin.QueryBuilder {
	q.calls = append(q.calls, "join")
	q.joins = append(q.joins, [2]string{join, alias})
	return q
}

func (q *recordingBuilder) AndWhere(predicate string) admin.QueryBuilder {
	q.calls = append(q.calls, "where")
	q.wheres = append(q.wheres, predicate)
	return q
}

func (q *recordingBuilder) SetParameter(name string, value any) admin.QueryBuilder {
	q.calls = append(q.calls, "param")
	q.params[name] = value
	return q
}

func (q *recordingBuilder) Column(field string) (string, error)                   { return field, nil }
func (q *recordingBuilder) Preload(...string) admin.ProxyQuery                    { return q }
func (q *recordingBuilder) Execute(context.Context, any, int, int) (int64, error) { return 0, nil }
func (q *recordingBuilder) SQL(any) string                                        { return "" }

// fakeRequest renders routes as "<route>?id=<id>". urlErr fails every
// route, or only failRoute when that is set.
type fakeRequest struct {
	params    map[string]string
	urlErr    error
	failRoute string
}

func (r fakeRequest) Get(key string) string { return r.params[key] }

func (r fakeRequest) URL(route string, params map[string]any) (string, error) {
	if r.urlErr != nil && (r.failRoute == "" || r.failRoute == route) {
		return "", r.urlErr
	}
	return fmt.Sprintf("%s?id=%v", route, params["id"]), nil
}

func withRequest(params map[string]string) context.Context {
	return admin.WithRequest(context.Background(), fakeRequest{params: params})
}

// passwordRecorder is a PasswordUpdater appending to a shared log.
type passwordRecorder struct {
	log   *[]string
	users []*models.User
	err   error
}

func (p *passwordRecorder) UpdatePassword(_ context.Context, user *models.User) error {
	*p.log = append(*p.log, "password")
	p.users = append(p.users, user)
	return p.err
}

// hookRecorder is an admin extension appending to a shared log.
type hookRecorder struct {
	log *[]string
	err error
}

func (h *hookRecorder) PreInsert(context.Context, admin.Admin, any) error {
	*h.log = append(*h.log, "extension:insert")
	return h.err
}

func (h *hookRecorder) PreUpdate(context.Context, admin.Admin, any) error {
	*h.log = append(*h.log, "extension:update")
	return h.err
}

func (h *hookRecorder) PreRemove(context.Context, admin.Admin, any) error {
	*h.log = append(*h.log, "extension:remove")
	return h.err
}

var errBoom = errors.New("boom")

// registeredAdmins registers the news admins without a model manager.
func registeredAdmins(users PasswordUpdater, exts ...admin.Extension) (*Admins, error) {
	return Register(admin.NewPool(), nil, admin.NewTranslator("en"), users, exts...)
}

func itoa(id uint) string { return fmt.Sprint(id) }
