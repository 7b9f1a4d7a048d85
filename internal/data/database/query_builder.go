// Package database builds parameterized list queries with sanitized identifiers.
package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal ConditionType = "="
	ILike ConditionType = "ILIKE"

	unset = -1
)

// Condition is one WHERE predicate. All conditions are joined with AND.
type Condition struct {
	Field  string
	Type   ConditionType
	Values []any
}

// WhereCond compares a column with a single bound value.
// Conditions with an unknown type are dropped when the query is built.
func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Values: []any{value}}
}

// ListQueryOptions describes a single-table SELECT.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	Conditions []Condition
	OrderBy    []string
	Limit      int
	Offset     int
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	o := &ListQueryOptions{Table: table, Limit: unset, Offset: unset}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithColumns sets the selected columns.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithCondition appends a condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = append(o.Conditions, cond) }
}

// WithOrderBy appends an ORDER BY term. Direction must be ASC or DESC; anything else is dropped.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		term := sanitizeQualified(column)
		if d := strings.ToUpper(direction); d == "ASC" || d == "DESC" {
			term += " " + d
		}
		o.OrderBy = append(o.OrderBy, term)
	}
}

// WithLimit sets LIMIT. Negative values leave it unset.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets OFFSET. Negative values leave it unset.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

func sanitizeQualified(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

// BuildListQuery renders the query and its positional arguments.
func BuildListQuery(o *ListQueryOptions) (string, []any) {
	if o == nil {
		return "", nil
	}

	var q strings.Builder
	q.WriteString("SELECT ")
	if len(o.Columns) == 0 {
		q.WriteString("*")
	} else {
		cols := make([]string, len(o.Columns))
		for i, c := range o.Columns {
			cols[i] = sanitizeQualified(c)
		}
		q.WriteString(strings.Join(cols, ", "))
	}
	q.WriteString(" FROM ")
	q.WriteString(pgx.Identifier{o.Table}.Sanitize())

	var args []any
	preds := make([]string, 0, len(o.Conditions))
	for _, c := range o.Conditions {
		var pred string
		pred, args = renderCondition(c, args)
		if pred != "" {
			preds = append(preds, pred)
		}
	}
	if len(preds) > 0 {
		q.WriteString(" WHERE ")
		q.WriteString(strings.Join(preds, " AND "))
	}

	if len(o.OrderBy) > 0 {
		q.WriteString(" ORDER BY ")
		q.WriteString(strings.Join(o.OrderBy, ", "))
	}
	if o.Limit != unset {
		args = append(args, o.Limit)
		fmt.Fprintf(&q, " LIMIT $%d", len(args))
	}
	if o.Offset != unset {
		args = append(args, o.Offset)
		fmt.Fprintf(&q, " OFFSET $%d", len(args))
	}
	return q.String(), args
}

func renderCondition(c Condition, args []any) (string, []any) {
	switch c.Type {
	case Equal, ILike:
		if c.Field == "" || len(c.Values) != 1 {
			return "", args
		}
		args = append(args, c.Values[0])
		return fmt.Sprintf("%s %s $%d", sanitizeQualified(c.Field), c.Type, len(args)), args
	default:
		return "", args
	}
}
