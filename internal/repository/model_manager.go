package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"newsdesk/internal/admin"
	"newsdesk/internal/models"
	"newsdesk/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

var timeType = reflect.TypeOf(time.Time{})

// ModelManager persists admin objects with gorm.
type ModelManager struct {
	db     *gorm.DB
	logger *slog.Logger
}

var _ admin.ModelManager = (*ModelManager)(nil)

func NewModelManager(db *gorm.DB, logger *slog.Logger) *ModelManager {
	return &ModelManager{db: db, logger: logger}
}

func (m *ModelManager) repoLogger(sch *schema.Schema) *observability.RepoLogger {
	return observability.NewRepoLogger(sch.Table, m.logger)
}

func parseID(id string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
	if err != nil || n == 0 {
		return 0, models.NewValidationError(fmt.Sprintf("invalid id %q", id))
	}
	return n, nil
}

// idValue reads a primary key from decoded form input. JSON bodies carry
// numbers as float64, which fmt would render in exponent form past 1e6.
func idValue(v any) (uint64, error) {
	switch n := v.(type) {
	case string:
		return parseID(n)
	case json.Number:
		return parseID(n.String())
	case float64:
		if n < 1 || n != math.Trunc(n) || n >= math.MaxUint64 {
			return 0, models.NewValidationError(fmt.Sprintf("invalid id %v", n))
		}
		return uint64(n), nil
	case int:
		return positiveID(int64(n))
	case int64:
		return positiveID(n)
	case uint:
		return parseID(strconv.FormatUint(uint64(n), 10))
	case uint64:
		return parseID(strconv.FormatUint(n, 10))
	}
	return 0, models.NewValidationError(fmt.Sprintf("invalid id %v", v))
}

func positiveID(n int64) (uint64, error) {
	if n < 1 {
		return 0, models.NewValidationError(fmt.Sprintf("invalid id %d", n))
	}
	return uint64(n), nil
}

// Find loads the object with id into dest along with its single-valued and
// many-to-many associations.
func (m *ModelManager) Find(ctx context.Context, dest any, id string) error {
	sch, err := parseSchema(m.db, dest)
	if err != nil {
		return models.NewInternalError(err)
	}
	n, err := parseID(id)
	if err != nil {
		return models.NewNotFoundError(sch.Name, id)
	}

	tx := conn(ctx, m.db)
	for name, rel := range sch.Relationships.Relations {
		if rel.Type != schema.HasMany {
			tx = tx.Preload(name)
		}
	}
	if err := tx.First(dest, n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError(sch.Name, id)
		}
		return models.NewInternalError(err)
	}
	m.repoLogger(sch).LogRead(ctx, map[string]any{"id": n})
	return nil
}

// Create inserts obj and links its many-to-many associations. Related rows
// are referenced, never written.
func (m *ModelManager) Create(ctx context.Context, obj any) error {
	return m.save(ctx, obj, true)
}

func (m *ModelManager) Update(ctx context.Context, obj any) error {
	return m.save(ctx, obj, false)
}

func (m *ModelManager) save(ctx context.Context, obj any, insert bool) error {
	sch, err := parseSchema(m.db, obj)
	if err != nil {
		return models.NewInternalError(err)
	}
	op := "update"
	if insert {
		op = "create"
	}
	err = conn(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		write := tx.Omit(clause.Associations)
		if insert {
			write = write.Create(obj)
		} else {
			write = write.Save(obj)
		}
		if write.Error != nil {
			return write.Error
		}
		rv := reflect.ValueOf(obj)
		for _, rel := range sch.Relationships.Many2Many {
			related := rel.Field.ReflectValueOf(ctx, rv)
			if err := tx.Model(obj).Association(rel.Name).Replace(related.Interface()); err != nil {
				return fmt.Errorf("link %s: %w", rel.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		m.repoLogger(sch).LogError(ctx, err, op)
		if isUniqueConstraintError(err) {
			return models.NewValidationError(sch.Name + " already exists")
		}
		return models.NewInternalError(err)
	}
	fields := map[string]any{"id": m.Identifier(obj)}
	if insert {
		m.repoLogger(sch).LogCreate(ctx, fields)
	} else {
		m.repoLogger(sch).LogUpdate(ctx, fields)
	}
	return nil
}

// Transaction runs fn in a database transaction. Repositories reached with
// the context fn receives take part in it.
func (m *ModelManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return conn(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

// Delete removes obj with its has-many rows and many-to-many links.
func (m *ModelManager) Delete(ctx context.Context, obj any) error {
	sch, err := parseSchema(m.db, obj)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := conn(ctx, m.db).Select(clause.Associations).Delete(obj).Error; err != nil {
		m.repoLogger(sch).LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	m.repoLogger(sch).LogDelete(ctx, map[string]any{"id": m.Identifier(obj)})
	return nil
}

func (m *ModelManager) CreateQuery(_ context.Context, model any, alias string) admin.ProxyQuery {
	return NewProxyQuery(m.db, model, alias)
}

// Identifier returns the primary key value of obj.
func (m *ModelManager) Identifier(obj any) any {
	sch, err := parseSchema(m.db, obj)
	if err != nil || sch.PrioritizedPrimaryField == nil {
		return nil
	}
	v, _ := sch.PrioritizedPrimaryField.ValueOf(context.Background(), reflect.ValueOf(obj))
	return v
}

// GuessType infers the admin field type of field from gorm metadata.
func (m *ModelManager) GuessType(model any, field string) string {
	sch, err := parseSchema(m.db, model)
	if err != nil {
		return ""
	}
	if rel := findRelationship(sch, field); rel != nil {
		switch rel.Type {
		case schema.BelongsTo, schema.HasOne:
			return admin.TypeModel
		default:
			return admin.TypeManyToMany
		}
	}
	f := findColumn(sch, field)
	if f == nil {
		return ""
	}
	if f.DataType == "text" {
		return admin.TypeText
	}
	switch {
	case f.IndirectFieldType == timeType:
		return admin.TypeDatetime
	case f.IndirectFieldType.Kind() == reflect.Bool:
		return admin.TypeBoolean
	case f.IndirectFieldType.Kind() == reflect.String:
		return admin.TypeString
	case f.DataType == schema.Int || f.DataType == schema.Uint:
		return admin.TypeInteger
	}
	return ""
}

// Choices lists every row field may point at, labelled by its String method.
func (m *ModelManager) Choices(ctx context.Context, model any, field string) ([]admin.Choice, error) {
	sch, err := parseSchema(m.db, model)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	rel := findRelationship(sch, field)
	if rel == nil {
		return nil, models.NewValidationError(fmt.Sprintf("%s has no association %q", sch.Name, field))
	}
	rows := reflect.New(reflect.SliceOf(reflect.PointerTo(rel.FieldSchema.ModelType)))
	if err := conn(ctx, m.db).Order(clause.OrderByColumn{
		Column: clause.Column{Name: rel.FieldSchema.PrioritizedPrimaryField.DBName},
	}).Find(rows.Interface()).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	list := rows.Elem()
	out := make([]admin.Choice, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		row := list.Index(i)
		id, _ := rel.FieldSchema.PrioritizedPrimaryField.ValueOf(ctx, row)
		out = append(out, admin.Choice{Value: id, Label: fmt.Sprint(row.Interface())})
	}
	return out, nil
}

// Bind copies the submitted values of the fields declared on form onto obj.
// Association fields take ids, or for single-valued associations an object
// carrying "id" plus fields to set on the referenced row.
func (m *ModelManager) Bind(ctx context.Context, obj any, form *admin.FormMapper, data admin.FormData) error {
	sch, err := parseSchema(m.db, obj)
	if err != nil {
		return models.NewInternalError(err)
	}
	rv := reflect.ValueOf(obj)
	for _, name := range form.Keys() {
		raw, ok := data[name]
		if !ok {
			continue
		}
		if rel := findRelationship(sch, name); rel != nil {
			if err := m.bindRelation(ctx, rv, rel, name, raw); err != nil {
				return err
			}
			continue
		}
		if err := bindScalar(ctx, sch, rv, name, raw); err != nil {
			return err
		}
	}
	return nil
}

func (m *ModelManager) bindRelation(ctx context.Context, rv reflect.Value, rel *schema.Relationship, name string, raw any) error {
	switch rel.Type {
	case schema.BelongsTo, schema.HasOne:
		return m.bindSingle(ctx, rv, rel, name, raw)
	default:
		return m.bindMany(ctx, rv, rel, name, raw)
	}
}

func (m *ModelManager) bindSingle(ctx context.Context, rv reflect.Value, rel *schema.Relationship, name string, raw any) error {
	var (
		id     any
		nested map[string]any
	)
	switch v := raw.(type) {
	case nil:
	case map[string]any:
		id, nested = v["id"], v
	default:
		id = v
	}

	if !admin.Truthy(id) {
		if err := rel.Field.Set(ctx, rv, nil); err != nil {
			return models.NewValidationError(fmt.Sprintf("%s: %v", name, err))
		}
		if rel.Type == schema.BelongsTo {
			for _, ref := range rel.References {
				if err := ref.ForeignKey.Set(ctx, rv, nil); err != nil {
					return models.NewValidationError(fmt.Sprintf("%s: %v", name, err))
				}
			}
		}
		return nil
	}

	n, err := idValue(id)
	if err != nil {
		return err
	}
	target := reflect.New(rel.FieldSchema.ModelType)
	if err := conn(ctx, m.db).First(target.Interface(), n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewValidationError(fmt.Sprintf("%s %d does not exist", name, n))
		}
		return models.NewInternalError(err)
	}
	for key, v := range nested {
		if key == "id" {
			continue
		}
		if err := bindScalar(ctx, rel.FieldSchema, target, key, v); err != nil {
			return err
		}
	}

	value := target.Interface()
	if rel.Field.IndirectFieldType.Kind() == reflect.Struct && rel.Field.FieldType.Kind() != reflect.Pointer {
		value = target.Elem().Interface()
	}
	if err := rel.Field.Set(ctx, rv, value); err != nil {
		return models.NewValidationError(fmt.Sprintf("%s: %v", name, err))
	}
	if rel.Type == schema.BelongsTo {
		for _, ref := range rel.References {
			pk, _ := ref.PrimaryKey.ValueOf(ctx, target)
			if err := ref.ForeignKey.Set(ctx, rv, pk); err != nil {
				return models.NewValidationError(fmt.Sprintf("%s: %v", name, err))
			}
		}
	}
	return nil
}

func (m *ModelManager) bindMany(ctx context.Context, rv reflect.Value, rel *schema.Relationship, name string, raw any) error {
	ids, err := toIDs(raw)
	if err != nil {
		return models.NewValidationError(fmt.Sprintf("%s: %v", name, err))
	}
	rows := reflect.New(rel.Field.IndirectFieldType)
	if len(ids) > 0 {
		if err := conn(ctx, m.db).Find(rows.Interface(), ids).Error; err != nil {
			return models.NewInternalError(err)
		}
	}
	if rows.Elem().Len() != len(ids) {
		return models.NewValidationError(fmt.Sprintf("%s: unknown id in %v", name, ids))
	}
	if err := rel.Field.Set(ctx, rv, rows.Elem().Interface()); err != nil {
		return models.NewValidationError(fmt.Sprintf("%s: %v", name, err))
	}
	return nil
}

// bindScalar sets a column, or a settable non-persisted field such as a
// transient password, from a submitted value.
func bindScalar(ctx context.Context, sch *schema.Schema, rv reflect.Value, name string, raw any) error {
	if f := findColumn(sch, name); f != nil {
		if f.PrimaryKey || !f.Updatable {
			return nil
		}
		v, err := coerce(f.IndirectFieldType, raw)
		if err != nil {
			return models.NewValidationError(fmt.Sprintf("%s: %v", name, err))
		}
		if err := f.Set(ctx, rv, v); err != nil {
			return models.NewValidationError(fmt.Sprintf("%s: %v", name, err))
		}
		return nil
	}

	sf := reflect.Indirect(rv).FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
	if !sf.IsValid() || !sf.CanSet() {
		return models.NewValidationError(fmt.Sprintf("%s has no field %q", sch.Name, name))
	}
	v, err := coerce(sf.Type(), raw)
	if err != nil {
		return models.NewValidationError(fmt.Sprintf("%s: %v", name, err))
	}
	rval := reflect.ValueOf(v)
	if !rval.IsValid() {
		sf.Set(reflect.Zero(sf.Type()))
		return nil
	}
	if !rval.Type().ConvertibleTo(sf.Type()) {
		return models.NewValidationError(fmt.Sprintf("%s: cannot use %T", name, raw))
	}
	sf.Set(rval.Convert(sf.Type()))
	return nil
}

// coerce normalises form input (JSON numbers, query strings) toward t.
func coerce(t reflect.Type, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	s, isString := raw.(string)
	switch {
	case t == timeType:
		if !isString {
			return raw, nil
		}
		if strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return time.Parse(time.RFC3339, s)
	case t.Kind() == reflect.Bool:
		if !isString {
			return admin.Truthy(raw), nil
		}
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		}
		return admin.Truthy(s), nil
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64:
		if isString {
			return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		}
		if f, ok := raw.(float64); ok {
			return int64(f), nil
		}
	case t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uint64:
		if isString {
			return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		}
		if f, ok := raw.(float64); ok {
			return uint64(f), nil
		}
	case t.Kind() == reflect.String:
		if !isString {
			return fmt.Sprint(raw), nil
		}
	}
	return raw, nil
}

func toIDs(raw any) ([]uint64, error) {
	var parts []any
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		parts = v
	case string:
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
	default:
		parts = []any{v}
	}
	ids := make([]uint64, 0, len(parts))
	seen := map[uint64]bool{}
	for _, p := range parts {
		if nested, ok := p.(map[string]any); ok {
			p = nested["id"]
		}
		n, err := idValue(p)
		if err != nil {
			return nil, fmt.Errorf("invalid id %v", p)
		}
		if !seen[n] {
			seen[n] = true
			ids = append(ids, n)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
