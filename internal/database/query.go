package database

import (
	"strings"
)

// QueryBuilder rewrites queries written with ? placeholders for a dialect.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a new QueryBuilder for the given dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build converts ? placeholders to the dialect's form. Question marks inside
// single-quoted literals are left alone.
//
//	input:    "SELECT name FROM worlds WHERE world_id = ? AND seed = ?"
//	SQLite:   unchanged
//	Postgres: "SELECT name FROM worlds WHERE world_id = $1 AND seed = $2"
func (qb *QueryBuilder) Build(query string) string {
	if _, ok := qb.dialect.(*SQLiteDialect); ok {
		return query
	}

	var out strings.Builder
	out.Grow(len(query) + 8)
	position := 1
	quoted := false

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			out.WriteByte(c)
		case c == '?' && !quoted:
			out.WriteString(qb.dialect.Placeholder(position))
			position++
		default:
			out.WriteByte(c)
		}
	}

	return out.String()
}
