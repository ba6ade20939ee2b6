// Package search turns validated filter records into parameterized SQL.
//
// Every predicate fragment is added together with its bind value, so the
// fragment list and the argument list can never drift apart and no user value
// is ever spliced into SQL text. Placeholders are written as "?"; callers
// rebind them for their driver (sqlx.DB.Rebind).
package search

import (
	"strings"

	"isuumo/internal/condition"
)

// Builder accumulates AND-combined predicates.
type Builder struct {
	conditions []string
	args       []any
}

func NewBuilder() *Builder { return &Builder{} }

// Where adds a fragment holding exactly one placeholder, bound to arg.
func (b *Builder) Where(fragment string, arg any) *Builder {
	b.conditions = append(b.conditions, fragment)
	b.args = append(b.args, arg)
	return b
}

// Fixed adds a fragment without placeholders.
func (b *Builder) Fixed(fragment string) *Builder {
	b.conditions = append(b.conditions, fragment)
	return b
}

// Range adds the bounded sides of r: column >= min, column < max.
func (b *Builder) Range(column string, r condition.Range) *Builder {
	if r.Min != condition.Unbounded {
		b.Where(column+" >= ?", r.Min)
	}
	if r.Max != condition.Unbounded {
		b.Where(column+" < ?", r.Max)
	}
	return b
}

// Contains adds a substring match on column.
func (b *Builder) Contains(column, value string) *Builder {
	return b.Where(column+" LIKE '%' || ? || '%'", value)
}

func (b *Builder) Len() int { return len(b.conditions) }

func (b *Builder) Args() []any {
	out := make([]any, len(b.args))
	copy(out, b.args)
	return out
}

func (b *Builder) where() string {
	if len(b.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

// CountQuery returns the COUNT(*) statement over the accumulated predicates.
func (b *Builder) CountQuery(table string) (string, []any) {
	return "SELECT COUNT(*) FROM " + table + b.where(), b.Args()
}

// SelectQuery returns one page in popularity DESC, id ASC order. It shares the
// predicate/argument prefix with CountQuery.
func (b *Builder) SelectQuery(table, columns string, p Page) (string, []any) {
	q := "SELECT " + columns + " FROM " + table + b.where() +
		" ORDER BY popularity DESC, id ASC LIMIT ? OFFSET ?"
	return q, append(b.Args(), p.PerPage, p.Offset())
}
