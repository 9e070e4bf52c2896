package admin

import "context"

// Choice is one option of a choice or model widget.
type Choice struct {
	Value any    `json:"value"`
	Label string `json:"label"`
}

// ModelManager persists admin objects. obj and dest are always pointers to
// the admin's model struct.
type ModelManager interface {
	Find(ctx context.Context, dest any, id string) error
	Create(ctx context.Context, obj any) error
	Update(ctx context.Context, obj any) error
	Delete(ctx context.Context, obj any) error
	CreateQuery(ctx context.Context, model any, alias string) ProxyQuery
	// Bind copies the submitted values of the fields declared on form into obj.
	Bind(ctx context.Context, obj any, form *FormMapper, data FormData) error
	// GuessType returns the field type of a model field from its metadata.
	GuessType(model any, field string) string
	// Choices lists the objects a model field may point at.
	Choices(ctx context.Context, model any, field string) ([]Choice, error)
	Identifier(obj any) any
	// Transaction runs fn atomically. Writes made through the context fn
	// receives commit or roll back together.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
