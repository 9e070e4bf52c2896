// Package news configures the back-office admins of the news desk: posts and
// the comments nested under them.
package news

import (
	"context"
	"errors"
	"fmt"

	"newsdesk/internal/admin"
	"newsdesk/internal/models"
)

// Admin codes. The comment admin code doubles as the prefix of its routes in
// GenerateURL ("news.admin.comment.list").
const (
	PostAdminCode    = "news.admin.post"
	CommentAdminCode = "news.admin.comment"
)

// FilterCallbackTemplate names the widget that renders callback filters.
const FilterCallbackTemplate = "admin/filter_callback"

// ErrUserManagerNotSet is returned by the post hooks when the form edits the
// author but no user manager was wired.
var ErrUserManagerNotSet = errors.New("news: post admin has no user manager")

// PasswordUpdater re-hashes the pending plain password of a user.
type PasswordUpdater interface {
	UpdatePassword(ctx context.Context, user *models.User) error
}

// PostAdmin is the admin of news posts.
type PostAdmin struct {
	*admin.Base
	userManager PasswordUpdater
}

var _ admin.Admin = (*PostAdmin)(nil)

// NewPostAdmin returns the post admin. Call SetUserManager before saving
// posts through a form that edits the author.
func NewPostAdmin(mm admin.ModelManager, tr admin.Translator) *PostAdmin {
	return &PostAdmin{
		Base: admin.NewBase(admin.Config{
			Code:         PostAdminCode,
			Label:        PostAdminCode,
			RoutePattern: "/news/post",
			ModelManager: mm,
			Translator:   tr,
		}),
	}
}

func (a *PostAdmin) NewInstance() any {
	return &models.Post{CommentsDefaultStatus: models.CommentStatusModerate}
}

// ConfigureShowFields lists the fields of the show page.
func (a *PostAdmin) ConfigureShowFields(m *admin.ShowMapper) {
	m.Add("author").
		Add("enabled").
		Add("title").
		Add("abstract").
		Add("content").
		Add("tags")
}

// ConfigureFormFields groups the edit form into General, Tags and a
// collapsed Options panel.
func (a *PostAdmin) ConfigureFormFields(m *admin.FormMapper) {
	m.With("General").
		Add("enabled", admin.WithOptions(admin.Options{"required": false})).
		Add("author", admin.WithType(admin.TypeModel), admin.WithFieldOptions(admin.Options{"edit": "list"})).
		Add("title").
		Add("abstract").
		Add("content").
		End().
		With("Tags").
		Add("tags", admin.WithType(admin.TypeModel), admin.WithOptions(admin.Options{"expanded": true, "multiple": true})).
		End().
		With("Options", admin.Options{"collapsed": true}).
		Add("commentsCloseAt").
		Add("commentsEnabled", admin.WithOptions(admin.Options{"required": false})).
		Add("commentsDefaultStatus", admin.WithType(admin.TypeChoice), admin.WithOptions(admin.Options{"choices": models.CommentStatusList()})).
		End()
}

// ConfigureListFields lists the list columns, linking rows by title.
func (a *PostAdmin) ConfigureListFields(m *admin.ListMapper) {
	m.AddIdentifier("title").
		Add("author").
		Add("enabled").
		Add("tags").
		Add("commentsEnabled")
}

// ConfigureDatagridFilters declares the list filters, among them the
// with_open_comments callback backed by WithOpenCommentFilter.
func (a *PostAdmin) ConfigureDatagridFilters(m *admin.DatagridMapper) {
	m.Add("title").
		Add("enabled").
		Add("tags", admin.WithType(admin.TypeManyToMany), admin.WithFieldOptions(admin.Options{"expanded": true, "multiple": true})).
		Add("with_open_comments",
			admin.WithType(admin.TypeCallback),
			admin.WithOptions(admin.Options{
				"template":   FilterCallbackTemplate,
				"callback":   admin.CallbackFunc(WithOpenCommentFilter),
				"field_type": "checkbox",
			}),
			admin.WithFieldOptions(admin.Options{"required": false}),
		)
}

// WithOpenCommentFilter keeps the posts that have at least one comment
// awaiting moderation. A falsy value leaves qb untouched.
func WithOpenCommentFilter(qb admin.QueryBuilder, alias, _ string, value any) error {
	if !admin.Truthy(value) {
		return nil
	}
	qb.LeftJoin(alias+".comments", "c")
	qb.AndWhere("c.status = :status")
	qb.SetParameter("status", models.CommentStatusModerate)
	return nil
}

func (a *PostAdmin) PreInsert(ctx context.Context, obj any) error {
	if err := a.Base.PreInsert(ctx, obj); err != nil {
		return err
	}
	return a.updateAuthorPassword(ctx, obj)
}

func (a *PostAdmin) PreUpdate(ctx context.Context, obj any) error {
	if err := a.Base.PreUpdate(ctx, obj); err != nil {
		return err
	}
	return a.updateAuthorPassword(ctx, obj)
}

// updateAuthorPassword hands the author to the user manager whenever the form
// exposes the author field, so a password typed into the author widget is
// hashed before the post is stored.
func (a *PostAdmin) updateAuthorPassword(ctx context.Context, obj any) error {
	if !a.HasFormFieldDescription("author") {
		return nil
	}
	post, ok := obj.(*models.Post)
	if !ok {
		return fmt.Errorf("news: post admin cannot handle %T", obj)
	}
	if a.userManager == nil {
		return ErrUserManagerNotSet
	}
	return a.userManager.UpdatePassword(ctx, post.Author)
}

// ConfigureSideMenu links the edited post and its comments. It only acts on
// the edit page or when a nested admin asks for the menu.
func (a *PostAdmin) ConfigureSideMenu(ctx context.Context, menu *admin.MenuItem, action string, child admin.Admin) error {
	if child == nil && action != "edit" {
		return nil
	}

	base := a.Base
	if a.IsChild() {
		base = a.Parent().AdminBase()
	}

	id, err := base.RequestValue(ctx, "id")
	if err != nil {
		return err
	}
	params := map[string]any{"id": id}

	viewPost, err := base.GenerateURL(ctx, "edit", params)
	if err != nil {
		return err
	}
	viewComments, err := base.GenerateURL(ctx, CommentAdminCode+".list", params)
	if err != nil {
		return err
	}
	menu.AddChild(a.Trans("view_post"), viewPost)
	menu.AddChild(a.Trans("link_view_comment"), viewComments)
	return nil
}

// SetUserManager wires the password updater used by the insert and update
// hooks.
func (a *PostAdmin) SetUserManager(m PasswordUpdater) {
	a.userManager = m
}

// UserManager returns the password updater, or nil when none is set.
func (a *PostAdmin) UserManager() PasswordUpdater {
	return a.userManager
}
