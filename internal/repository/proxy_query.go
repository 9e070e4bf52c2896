package repository

import (
	"context"
	"fmt"
	"strings"

	"newsdesk/internal/admin"
	"newsdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ProxyQuery is the gorm-backed admin list query. Joins are resolved from the
// association metadata of the model, so "o.comments" becomes a join on the
// comments table through its foreign key.
type ProxyQuery struct {
	db       *gorm.DB
	model    any
	schema   *schema.Schema
	alias    string
	aliases  map[string]*schema.Schema
	joins    []string
	wheres   []string
	params   map[string]any
	preloads []string
	err      error
}

var _ admin.ProxyQuery = (*ProxyQuery)(nil)

// NewProxyQuery starts a query over model's table aliased as alias.
func NewProxyQuery(db *gorm.DB, model any, alias string) *ProxyQuery {
	q := &ProxyQuery{
		db:      db,
		model:   model,
		alias:   alias,
		aliases: map[string]*schema.Schema{},
		params:  map[string]any{},
	}
	sch, err := parseSchema(db, model)
	if err != nil {
		q.err = err
		return q
	}
	q.schema = sch
	q.aliases[alias] = sch
	return q
}

func parseSchema(db *gorm.DB, model any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, fmt.Errorf("parse schema of %T: %w", model, err)
	}
	return stmt.Schema, nil
}

func findRelationship(sch *schema.Schema, name string) *schema.Relationship {
	if rel, ok := sch.Relationships.Relations[name]; ok {
		return rel
	}
	for fieldName, rel := range sch.Relationships.Relations {
		if strings.EqualFold(fieldName, name) {
			return rel
		}
	}
	return nil
}

func findColumn(sch *schema.Schema, name string) *schema.Field {
	for _, f := range sch.Fields {
		if f.DBName == "" {
			continue
		}
		if strings.EqualFold(f.Name, name) || f.DBName == name {
			return f
		}
	}
	return nil
}

func (q *ProxyQuery) RootAlias() string { return q.alias }

// LeftJoin joins the association named by join ("<alias>.<association>")
// under alias.
func (q *ProxyQuery) LeftJoin(join, alias string) admin.QueryBuilder {
	if q.err != nil {
		return q
	}
	owner, assoc, ok := strings.Cut(join, ".")
	if !ok {
		q.err = fmt.Errorf("join %q must be written <alias>.<association>", join)
		return q
	}
	ownerSchema, ok := q.aliases[owner]
	if !ok {
		q.err = fmt.Errorf("join %q: unknown alias %q", join, owner)
		return q
	}
	rel := findRelationship(ownerSchema, assoc)
	if rel == nil {
		q.err = fmt.Errorf("join %q: %s has no association %q", join, ownerSchema.Name, assoc)
		return q
	}

	table := rel.FieldSchema.Table
	switch rel.Type {
	case schema.BelongsTo:
		var on []string
		for _, ref := range rel.References {
			on = append(on, fmt.Sprintf("%s.%s = %s.%s", alias, ref.PrimaryKey.DBName, owner, ref.ForeignKey.DBName))
		}
		q.joins = append(q.joins, fmt.Sprintf("LEFT JOIN %s %s ON %s", table, alias, strings.Join(on, " AND ")))
	case schema.HasOne, schema.HasMany:
		var on []string
		for _, ref := range rel.References {
			if ref.OwnPrimaryKey {
				on = append(on, fmt.Sprintf("%s.%s = %s.%s", alias, ref.ForeignKey.DBName, owner, ref.PrimaryKey.DBName))
			}
		}
		q.joins = append(q.joins, fmt.Sprintf("LEFT JOIN %s %s ON %s", table, alias, strings.Join(on, " AND ")))
	case schema.Many2Many:
		through := alias + "_jt"
		var ownerOn, relatedOn []string
		for _, ref := range rel.References {
			if ref.PrimaryKey == nil {
				continue
			}
			if ref.OwnPrimaryKey {
				ownerOn = append(ownerOn, fmt.Sprintf("%s.%s = %s.%s", through, ref.ForeignKey.DBName, owner, ref.PrimaryKey.DBName))
			} else {
				relatedOn = append(relatedOn, fmt.Sprintf("%s.%s = %s.%s", alias, ref.PrimaryKey.DBName, through, ref.ForeignKey.DBName))
			}
		}
		q.joins = append(q.joins,
			fmt.Sprintf("LEFT JOIN %s %s ON %s", rel.JoinTable.Table, through, strings.Join(ownerOn, " AND ")),
			fmt.Sprintf("LEFT JOIN %s %s ON %s", table, alias, strings.Join(relatedOn, " AND ")),
		)
	default:
		q.err = fmt.Errorf("join %q: unsupported relationship %s", join, rel.Type)
		return q
	}
	q.aliases[alias] = rel.FieldSchema
	return q
}

// AndWhere adds predicate. ":name" placeholders are bound by SetParameter.
func (q *ProxyQuery) AndWhere(predicate string) admin.QueryBuilder {
	q.wheres = append(q.wheres, predicate)
	return q
}

func (q *ProxyQuery) SetParameter(name string, value any) admin.QueryBuilder {
	q.params[name] = value
	return q
}

// Column maps a field of the root model to its column name.
func (q *ProxyQuery) Column(field string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	f := findColumn(q.schema, field)
	if f == nil {
		return "", models.NewValidationError(fmt.Sprintf("%s has no field %q", q.schema.Name, field))
	}
	return f.DBName, nil
}

// Preload resolves association field names such as "author" to the
// relationship they name.
func (q *ProxyQuery) Preload(associations ...string) admin.ProxyQuery {
	if q.err != nil {
		return q
	}
	for _, name := range associations {
		rel := findRelationship(q.schema, name)
		if rel == nil {
			q.err = fmt.Errorf("preload: %s has no association %q", q.schema.Name, name)
			return q
		}
		q.preloads = append(q.preloads, rel.Name)
	}
	return q
}

func (q *ProxyQuery) build(tx *gorm.DB) *gorm.DB {
	tx = tx.Model(q.model).Table(q.schema.Table + " " + q.alias)
	for _, j := range q.joins {
		tx = tx.Joins(j)
	}
	for _, w := range q.wheres {
		named, ok := namedParams(w)
		if !ok {
			tx = tx.Where(w)
			continue
		}
		tx = tx.Where(named, map[string]interface{}(q.params))
	}
	return tx
}

// namedParams rewrites :name placeholders into gorm's @name form. Quoted
// text and :: casts are copied as they are.
func namedParams(expr string) (string, bool) {
	var b strings.Builder
	changed := false
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			end := closingQuote(expr, i)
			b.WriteString(expr[i:end])
			i = end - 1
		case ch == ':' && i+1 < len(expr) && expr[i+1] == ':':
			b.WriteString("::")
			i++
		case ch == ':' && i+1 < len(expr) && isIdentStart(expr[i+1]):
			j := i + 1
			for j < len(expr) && (isIdentStart(expr[j]) || expr[j] >= '0' && expr[j] <= '9') {
				j++
			}
			b.WriteByte('@')
			b.WriteString(expr[i+1 : j])
			i = j - 1
			changed = true
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), changed
}

// closingQuote returns the index just past the quoted span opening at i. A
// doubled quote inside the span is an escaped one.
func closingQuote(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return len(s)
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (q *ProxyQuery) primaryKey() string {
	if pk := q.schema.PrioritizedPrimaryField; pk != nil {
		return q.alias + "." + pk.DBName
	}
	return q.alias + ".id"
}

func (q *ProxyQuery) page(tx *gorm.DB, limit, offset int, preload bool) *gorm.DB {
	tx = q.build(tx).Distinct(q.alias + ".*").Order(q.primaryKey() + " DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if preload {
		for _, p := range q.preloads {
			tx = tx.Preload(p)
		}
	}
	return tx
}

// Execute counts the distinct matching rows, then loads one page of them
// into dest. Joined rows never duplicate a root row.
func (q *ProxyQuery) Execute(ctx context.Context, dest any, limit, offset int) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	var total int64
	if err := q.build(conn(ctx, q.db)).Distinct(q.primaryKey()).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	if total == 0 {
		return 0, nil
	}
	if err := q.page(conn(ctx, q.db), limit, offset, true).Find(dest).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// SQL renders the page query with its parameters inlined.
func (q *ProxyQuery) SQL(dest any) string {
	if q.err != nil {
		return ""
	}
	return q.db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return q.page(tx, 0, 0, false).Find(dest)
	})
}

// Err returns the first error recorded while the query was built.
func (q *ProxyQuery) Err() error {
	return q.err
}
