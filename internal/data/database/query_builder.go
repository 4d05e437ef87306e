// Package database provides a small SQL list-query builder with identifier
// sanitization for the repositories' filter/sort/paginate surfaces.
package database

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType enumerates the supported WHERE operators.
type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
	ILike              ConditionType = "ILIKE"
	In                 ConditionType = "IN"
	Custom             ConditionType = "CUSTOM"
)

const (
	defaultLimit  = -1
	defaultOffset = -1
)

// Condition is one WHERE clause term.
type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery *string
}

// WhereCond builds a standard field/operator/value condition.
func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

// WhereRawCond builds a custom condition from a raw SQL fragment. Parameter
// placeholders in the fragment are written as $1..$n relative to the
// fragment and renumbered during assembly.
func WhereRawCond(rawQuery string, params ...any) Condition {
	var value any = params
	if len(params) == 0 {
		value = nil
	} else if len(params) == 1 {
		value = params[0]
	}
	return Condition{Type: Custom, rawQuery: &rawQuery, Value: value}
}

// ListQueryOptions describes one list query.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

// ListQueryOption mutates ListQueryOptions.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions builds options for a list query on table.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:  table,
		Limit:  defaultLimit,
		Offset: defaultOffset,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = append(o.Conditions, cond) }
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly makes the query a COUNT(*) over the same conditions.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) { o.CountOnly = true }
}

// sanitizeIdentifier quotes a single identifier.
func sanitizeIdentifier(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// sanitizeQualifiedIdentifier quotes qualified identifiers like
// "table.column" part by part.
func sanitizeQualifiedIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

func sanitizeColumnRef(ident string) string {
	if strings.Contains(ident, ".") {
		return sanitizeQualifiedIdentifier(ident)
	}
	return sanitizeIdentifier(ident)
}

func buildSelectClause(options *ListQueryOptions) string {
	if options.CountOnly {
		return "SELECT COUNT(*) "
	}
	if len(options.Columns) == 0 {
		return "SELECT * "
	}
	cols := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		cols[i] = sanitizeColumnRef(col)
	}
	return "SELECT " + strings.Join(cols, ", ") + " "
}

// buildWhereClause assembles the WHERE clause, renumbering placeholders from
// startParam. It returns the clause, the collected args, and the next free
// placeholder index.
func buildWhereClause(conditions []Condition, startParam int) (string, []any, int) {
	if len(conditions) == 0 {
		return "", nil, startParam
	}

	parts := make([]string, 0, len(conditions))
	args := make([]any, 0, len(conditions))
	paramCount := startParam

	for _, cond := range conditions {
		var part string
		switch cond.Type {
		case Custom:
			part, args, paramCount = appendCustomCondition(cond, args, paramCount)
		case In:
			part, args, paramCount = appendInCondition(cond, args, paramCount)
		default:
			if cond.Field == "" {
				continue
			}
			part = fmt.Sprintf("%s %s $%d", sanitizeColumnRef(cond.Field), cond.Type, paramCount)
			args = append(args, cond.Value)
			paramCount++
		}
		if part != "" {
			parts = append(parts, part)
		}
	}

	if len(parts) == 0 {
		return "", nil, startParam
	}
	return "WHERE " + strings.Join(parts, " AND "), args, paramCount
}

// appendCustomCondition renumbers $1..$n placeholders in the raw fragment to
// the query-global parameter sequence.
func appendCustomCondition(cond Condition, args []any, paramCount int) (string, []any, int) {
	if cond.rawQuery == nil {
		return "", args, paramCount
	}
	params := rawParams(cond.Value)
	fragment := *cond.rawQuery
	for i := len(params); i >= 1; i-- {
		from := fmt.Sprintf("$%d", i)
		to := fmt.Sprintf("$%d", paramCount+i-1)
		fragment = strings.ReplaceAll(fragment, from, to)
	}
	return "(" + fragment + ")", append(args, params...), paramCount + len(params)
}

func rawParams(value any) []any {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{v}
	}
}

// appendInCondition expands a slice value into IN ($n, $n+1, ...).
func appendInCondition(cond Condition, args []any, paramCount int) (string, []any, int) {
	if cond.Field == "" {
		return "", args, paramCount
	}
	rv := reflect.ValueOf(cond.Value)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return "", args, paramCount
	}
	placeholders := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		placeholders[i] = fmt.Sprintf("$%d", paramCount)
		args = append(args, rv.Index(i).Interface())
		paramCount++
	}
	part := fmt.Sprintf("%s IN (%s)", sanitizeColumnRef(cond.Field), strings.Join(placeholders, ", "))
	return part, args, paramCount
}

func buildPaginationAndOrderClause(options *ListQueryOptions, startParam int, args []any) (string, []any) {
	var clause strings.Builder
	paramCount := startParam

	if options.OrderBy != "" {
		clause.WriteString(" ORDER BY ")
		clause.WriteString(sanitizeColumnRef(options.OrderBy))
		dir := strings.ToUpper(options.OrderDir)
		if dir == "ASC" || dir == "DESC" {
			clause.WriteString(" ")
			clause.WriteString(dir)
		}
	}
	if options.Limit != defaultLimit {
		clause.WriteString(fmt.Sprintf(" LIMIT $%d", paramCount))
		args = append(args, options.Limit)
		paramCount++
	}
	if options.Offset != defaultOffset {
		clause.WriteString(fmt.Sprintf(" OFFSET $%d", paramCount))
		args = append(args, options.Offset)
	}
	return clause.String(), args
}

// BuildListQuery constructs a SQL query string and args from options,
// sanitizing all identifiers. It handles SELECT, WHERE, ORDER BY, LIMIT, and
// OFFSET clauses; CountOnly queries stop after WHERE.
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	whereClause, whereArgs, nextParam := buildWhereClause(options.Conditions, 1)
	if whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
	}

	if options.CountOnly {
		return query.String(), whereArgs
	}

	clause, finalArgs := buildPaginationAndOrderClause(options, nextParam, whereArgs)
	query.WriteString(clause)
	return query.String(), finalArgs
}
