package admin

import (
	"context"
	"log/slog"
)

// LogExtension logs every lifecycle hook an admin runs.
type LogExtension struct {
	Logger *slog.Logger
}

func (e LogExtension) log(ctx context.Context, a Admin, hook string, obj any) {
	attrs := []any{slog.String("admin", a.Code()), slog.String("hook", hook)}
	if mm := a.AdminBase().ModelManager(); mm != nil {
		attrs = append(attrs, slog.Any("id", mm.Identifier(obj)))
	}
	e.Logger.DebugContext(ctx, "admin lifecycle hook", attrs...)
}

func (e LogExtension) PreInsert(ctx context.Context, a Admin, obj any) error {
	e.log(ctx, a, "pre_insert", obj)
	return nil
}

func (e LogExtension) PreUpdate(ctx context.Context, a Admin, obj any) error {
	e.log(ctx, a, "pre_update", obj)
	return nil
}

func (e LogExtension) PreRemove(ctx context.Context, a Admin, obj any) error {
	e.log(ctx, a, "pre_remove", obj)
	return nil
}
