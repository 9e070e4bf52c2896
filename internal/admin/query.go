package admin

import "context"

// QueryBuilder is the part of a query a filter callback may touch.
// Joins are written "<alias>.<association>" and predicates use ":name"
// placeholders bound with SetParameter.
type QueryBuilder interface {
	RootAlias() string
	LeftJoin(join, alias string) QueryBuilder
	AndWhere(predicate string) QueryBuilder
	SetParameter(name string, value any) QueryBuilder
}

// ProxyQuery is the list query of one admin.
type ProxyQuery interface {
	QueryBuilder
	// Column maps a model field name to its column on the root alias.
	Column(field string) (string, error)
	// Preload eager-loads associations on the fetched rows.
	Preload(associations ...string) ProxyQuery
	// Execute fills dest (a pointer to a slice) with one page of distinct
	// root rows and returns the total number of matching rows.
	Execute(ctx context.Context, dest any, limit, offset int) (int64, error)
	// SQL renders the page query without running it.
	SQL(dest any) string
}
