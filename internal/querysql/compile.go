// Package querysql compiles queryir queries to parameterized SQLite.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/chipwire/internal/queryir"
)

// Compile turns q into a SELECT statement and its parameters.
//
// The query is validated first, so column names in the statement are always
// known columns. Values are never interpolated: every comparison uses a ?
// placeholder. Every statement ends with the table's stable ORDER BY.
func Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	sel, ok := q.(queryir.Select)
	if !ok {
		sel = *q.(*queryir.Select)
	}
	table := queryir.Tables[sel.From]

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(sel.Columns, ", "), table.Name)

	var params []any
	if sel.Filter != nil {
		where, whereParams := compilePredicate(sel.Filter)
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = whereParams
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(table.Order)
	return b.String(), params, nil
}

// compilePredicate renders a validated predicate.
func compilePredicate(p queryir.Predicate) (string, []any) {
	switch pred := p.(type) {
	case queryir.Equals:
		return pred.Field + " = ?", []any{param(pred.Value)}
	case *queryir.Equals:
		return compilePredicate(*pred)
	case queryir.AtLeast:
		return pred.Field + " >= ?", []any{pred.Value}
	case *queryir.AtLeast:
		return compilePredicate(*pred)
	case queryir.And:
		return compileAnd(pred)
	case *queryir.And:
		return compileAnd(*pred)
	default:
		return "1 = 1", nil
	}
}

func compileAnd(and queryir.And) (string, []any) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil
	}
	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, p := range and.Predicates {
		sql, ps := compilePredicate(p)
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params
}

// param normalizes integer values so drivers see one type.
func param(v any) any {
	if i, ok := v.(int); ok {
		return int64(i)
	}
	return v
}
