package news

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"newsdesk/internal/admin"
	"newsdesk/internal/models"
)

// CommentAdmin moderates comments. Nested under PostAdmin it lists and
// creates the comments of one post.
type CommentAdmin struct {
	*admin.Base
	now func() time.Time
}

var (
	_ admin.Admin  = (*CommentAdmin)(nil)
	_ admin.Scoper = (*CommentAdmin)(nil)
)

// NewCommentAdmin returns the comment admin. It only becomes nested once
// PostAdmin adds it as a child.
func NewCommentAdmin(mm admin.ModelManager, tr admin.Translator) *CommentAdmin {
	return &CommentAdmin{
		Base: admin.NewBase(admin.Config{
			Code:         CommentAdminCode,
			Label:        CommentAdminCode,
			RoutePattern: "/news/comment",
			ModelManager: mm,
			Translator:   tr,
		}),
		now: time.Now,
	}
}

func (a *CommentAdmin) NewInstance() any {
	return &models.Comment{Status: models.CommentStatusModerate}
}

func statusChoice() []admin.FieldOption {
	return []admin.FieldOption{
		admin.WithType(admin.TypeChoice),
		admin.WithOptions(admin.Options{"choices": models.CommentStatusList()}),
	}
}

func (a *CommentAdmin) ConfigureShowFields(m *admin.ShowMapper) {
	m.Add("name").
		Add("email").
		Add("url").
		Add("message").
		Add("status", statusChoice()...).
		Add("post")
}

func (a *CommentAdmin) ConfigureFormFields(m *admin.FormMapper) {
	m.With("General").
		Add("name").
		Add("email").
		Add("url").
		Add("message").
		Add("status", statusChoice()...).
		End()
}

func (a *CommentAdmin) ConfigureListFields(m *admin.ListMapper) {
	m.AddIdentifier("name").
		Add("post").
		Add("email").
		Add("message").
		Add("status", statusChoice()...)
}

func (a *CommentAdmin) ConfigureDatagridFilters(m *admin.DatagridMapper) {
	m.Add("name").
		Add("email").
		Add("status", statusChoice()...)
}

// parentID returns the id of the post the request is nested under, or 0
// outside a nested request.
func (a *CommentAdmin) parentID(ctx context.Context) (uint64, error) {
	if !a.IsChild() {
		return 0, nil
	}
	raw, err := a.RequestValue(ctx, "id")
	if err != nil || raw == "" {
		return 0, err
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("Post", raw)
	}
	return id, nil
}

// ConfigureQuery scopes a nested list to the comments of the parent post.
func (a *CommentAdmin) ConfigureQuery(ctx context.Context, q admin.ProxyQuery) error {
	id, err := a.parentID(ctx)
	if err != nil || id == 0 {
		return err
	}
	q.AndWhere(q.RootAlias() + ".post_id = :post")
	q.SetParameter("post", id)
	return nil
}

// PreInsert attaches a nested comment to its post. The post must accept
// comments, and a comment submitted without a status takes the post's
// default one.
func (a *CommentAdmin) PreInsert(ctx context.Context, obj any) error {
	if err := a.Base.PreInsert(ctx, obj); err != nil {
		return err
	}
	comment, ok := obj.(*models.Comment)
	if !ok {
		return fmt.Errorf("news: comment admin cannot handle %T", obj)
	}
	id, err := a.parentID(ctx)
	if err != nil || id == 0 {
		return err
	}

	post := &models.Post{}
	if err := a.Parent().AdminBase().ModelManager().Find(ctx, post, strconv.FormatUint(id, 10)); err != nil {
		return err
	}
	if !post.IsCommentable(a.now()) {
		return models.NewValidationError("comments are closed on this post")
	}
	comment.Post = post
	comment.PostID = post.ID
	if !admin.FormDataFrom(ctx).Has("status") {
		comment.Status = post.CommentsDefaultStatus
	}
	return nil
}

func (a *CommentAdmin) PreUpdate(ctx context.Context, obj any) error {
	if err := a.Base.PreUpdate(ctx, obj); err != nil {
		return err
	}
	return a.InScope(ctx, obj)
}

func (a *CommentAdmin) PreRemove(ctx context.Context, obj any) error {
	if err := a.Base.PreRemove(ctx, obj); err != nil {
		return err
	}
	return a.InScope(ctx, obj)
}

// InScope hides comments of other posts from a nested request.
func (a *CommentAdmin) InScope(ctx context.Context, obj any) error {
	comment, ok := obj.(*models.Comment)
	if !ok {
		return fmt.Errorf("news: comment admin cannot handle %T", obj)
	}
	id, err := a.parentID(ctx)
	if err != nil || id == 0 {
		return err
	}
	if uint64(comment.PostID) != id {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	return nil
}
