package admin

import (
	"context"
	"reflect"
	"time"

	"newsdesk/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Validator is implemented by models that check their own invariants.
type Validator interface {
	Validate() error
}

// ListResult is one page of an admin list.
type ListResult struct {
	Rows    any      `json:"rows"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	PerPage int      `json:"perPage"`
	Filters []string `json:"filters"`
}

func observe(ctx context.Context, a Admin, action string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "admin."+action,
		attribute.String("admin.code", a.Code()),
	)
	err := fn(ctx)
	observability.EndSpan(span, err)
	observability.ObserveAdminAction(a.Code(), action, start, err)
	return err
}

// List runs the admin's list query with the filters found in values.
func List(ctx context.Context, a Admin, values Values, page, perPage int) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 25
	}
	res := &ListResult{Page: page, PerPage: perPage, Filters: []string{}}
	err := observe(ctx, a, "list", func(ctx context.Context) error {
		b := a.AdminBase()
		q := b.modelManager.CreateQuery(ctx, a.NewInstance(), "o")
		if err := a.ConfigureQuery(ctx, q); err != nil {
			return err
		}
		applied, err := b.grid.Apply(q, values)
		if err != nil {
			return err
		}
		for _, name := range applied {
			observability.FilterApplications.WithLabelValues(a.Code(), name).Inc()
		}
		if len(applied) > 0 {
			res.Filters = applied
		}

		var preload []string
		for _, fd := range b.list.Fields() {
			if fd.Type == TypeModel || fd.Type == TypeManyToMany {
				preload = append(preload, fd.Name)
			}
		}
		q.Preload(preload...)

		rows := reflect.New(reflect.SliceOf(reflect.TypeOf(a.NewInstance())))
		total, err := q.Execute(ctx, rows.Interface(), perPage, (page-1)*perPage)
		if err != nil {
			return err
		}
		res.Rows = rows.Elem().Interface()
		res.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Show loads the object with id.
func Show(ctx context.Context, a Admin, id string) (any, error) {
	obj := a.NewInstance()
	if err := Load(ctx, a, obj, id); err != nil {
		return nil, err
	}
	return obj, nil
}

// Load is Show into an instance the caller allocated with NewInstance.
func Load(ctx context.Context, a Admin, obj any, id string) error {
	return observe(ctx, a, "show", func(ctx context.Context) error {
		if err := a.AdminBase().modelManager.Find(ctx, obj, id); err != nil {
			return err
		}
		return CheckScope(ctx, a, obj)
	})
}

// Scoper is implemented by admins that expose only part of their model's
// rows, such as the children of one parent object.
type Scoper interface {
	// InScope returns a not found error when obj is outside the admin's
	// rows for the current request.
	InScope(ctx context.Context, obj any) error
}

// CheckScope applies a's Scoper, if any, to a loaded obj.
func CheckScope(ctx context.Context, a Admin, obj any) error {
	if s, ok := a.(Scoper); ok {
		return s.InScope(ctx, obj)
	}
	return nil
}

// Create binds data onto a new instance, validates it, runs PreInsert and
// persists it.
func Create(ctx context.Context, a Admin, data FormData) (any, error) {
	obj := a.NewInstance()
	err := observe(ctx, a, "create", func(ctx context.Context) error {
		ctx = WithFormData(ctx, data)
		mm := a.AdminBase().modelManager
		if err := mm.Bind(ctx, obj, a.AdminBase().form, data); err != nil {
			return err
		}
		if v, ok := obj.(Validator); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		return mm.Transaction(ctx, func(ctx context.Context) error {
			if err := a.PreInsert(ctx, obj); err != nil {
				return err
			}
			return mm.Create(ctx, obj)
		})
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Update loads the object with id and applies data to it the way Create does,
// running PreUpdate instead of PreInsert.
func Update(ctx context.Context, a Admin, id string, data FormData) (any, error) {
	obj := a.NewInstance()
	err := observe(ctx, a, "update", func(ctx context.Context) error {
		ctx = WithFormData(ctx, data)
		mm := a.AdminBase().modelManager
		if err := mm.Find(ctx, obj, id); err != nil {
			return err
		}
		if err := CheckScope(ctx, a, obj); err != nil {
			return err
		}
		if err := mm.Bind(ctx, obj, a.AdminBase().form, data); err != nil {
			return err
		}
		if v, ok := obj.(Validator); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
		return mm.Transaction(ctx, func(ctx context.Context) error {
			if err := a.PreUpdate(ctx, obj); err != nil {
				return err
			}
			return mm.Update(ctx, obj)
		})
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Delete runs PreRemove and removes the object with id.
func Delete(ctx context.Context, a Admin, id string) error {
	return observe(ctx, a, "delete", func(ctx context.Context) error {
		obj := a.NewInstance()
		mm := a.AdminBase().modelManager
		if err := mm.Find(ctx, obj, id); err != nil {
			return err
		}
		if err := CheckScope(ctx, a, obj); err != nil {
			return err
		}
		return mm.Transaction(ctx, func(ctx context.Context) error {
			if err := a.PreRemove(ctx, obj); err != nil {
				return err
			}
			return mm.Delete(ctx, obj)
		})
	})
}
