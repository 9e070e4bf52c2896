package admin

import "context"

// Request is the request an admin operation runs in.
type Request interface {
	// Get returns a route parameter, falling back to the query string.
	Get(key string) string
	// URL renders the named route with params.
	URL(routeName string, params map[string]any) (string, error)
}

// FormData is submitted form input keyed by field name.
type FormData map[string]any

// Has reports whether key was submitted.
func (d FormData) Has(key string) bool {
	_, ok := d[key]
	return ok
}

type requestKey struct{}
type formDataKey struct{}

func WithRequest(ctx context.Context, r Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

func RequestFrom(ctx context.Context) (Request, bool) {
	r, ok := ctx.Value(requestKey{}).(Request)
	return r, ok && r != nil
}

// WithFormData records the submitted form for hooks that depend on which
// fields were posted.
func WithFormData(ctx context.Context, d FormData) context.Context {
	return context.WithValue(ctx, formDataKey{}, d)
}

// FormDataFrom returns the submitted form, or nil outside a submission.
func FormDataFrom(ctx context.Context) FormData {
	d, _ := ctx.Value(formDataKey{}).(FormData)
	return d
}
