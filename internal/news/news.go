package news

import (
	"newsdesk/internal/admin"
)

// Admins are the registered news admins.
type Admins struct {
	Posts    *PostAdmin
	Comments *CommentAdmin
}

// Register builds the post admin with the comment admin nested under it and
// adds both to pool. Every extension runs on both admins.
func Register(pool *admin.Pool, mm admin.ModelManager, tr admin.Translator, users PasswordUpdater, exts ...admin.Extension) (*Admins, error) {
	posts := NewPostAdmin(mm, tr)
	posts.SetUserManager(users)
	comments := NewCommentAdmin(mm, tr)
	posts.AddChild(comments)

	for _, e := range exts {
		posts.AddExtension(e)
		comments.AddExtension(e)
	}
	if err := pool.Register(posts); err != nil {
		return nil, err
	}
	if err := pool.Register(comments); err != nil {
		return nil, err
	}
	return &Admins{Posts: posts, Comments: comments}, nil
}
