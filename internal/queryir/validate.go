package queryir

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks that q reads a known table, names only its columns and
// compares each column with a value of the right kind. All problems are
// reported together.
func Validate(q Query) error {
	v := &validator{}
	v.query(q)
	return v.err
}

type validator struct {
	err error
}

func (v *validator) addf(format string, args ...any) {
	v.err = multierr.Append(v.err, fmt.Errorf(format, args...))
}

func (v *validator) query(q Query) {
	var sel Select
	switch query := q.(type) {
	case Select:
		sel = query
	case *Select:
		if query == nil {
			v.addf("nil query")
			return
		}
		sel = *query
	case nil:
		v.addf("nil query")
		return
	default:
		v.addf("unknown query type %T", q)
		return
	}

	table, ok := Tables[sel.From]
	if !ok {
		v.addf("unknown table %q", sel.From)
		return
	}
	if len(sel.Columns) == 0 {
		v.addf("select from %s: no columns", sel.From)
	}
	seen := make(map[string]bool, len(sel.Columns))
	for _, c := range sel.Columns {
		if _, ok := table.Columns[c]; !ok {
			v.addf("table %s has no column %q", table.Name, c)
		}
		if seen[c] {
			v.addf("column %q selected twice", c)
		}
		seen[c] = true
	}
	v.predicate(table, sel.Filter)
}

func (v *validator) predicate(table Table, p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.equals(table, pred)
	case *Equals:
		v.equals(table, *pred)
	case AtLeast:
		v.atLeast(table, pred)
	case *AtLeast:
		v.atLeast(table, *pred)
	case And:
		v.and(table, pred)
	case *And:
		v.and(table, *pred)
	default:
		v.addf("unknown predicate type %T", p)
	}
}

func (v *validator) equals(table Table, eq Equals) {
	kind, ok := v.column(table, eq.Field)
	if !ok {
		return
	}
	switch eq.Value.(type) {
	case string:
		if kind != Text {
			v.addf("%s is %s, compared with a string", eq.Field, kind)
		}
	case int, int64:
		if kind != Integer {
			v.addf("%s is %s, compared with an integer", eq.Field, kind)
		}
	case nil:
		v.addf("%s compared with nil", eq.Field)
	default:
		v.addf("%s: unsupported value type %T", eq.Field, eq.Value)
	}
}

func (v *validator) atLeast(table Table, al AtLeast) {
	kind, ok := v.column(table, al.Field)
	if ok && kind != Integer {
		v.addf("%s is %s, AtLeast needs an integer column", al.Field, kind)
	}
}

func (v *validator) and(table Table, and And) {
	for _, p := range and.Predicates {
		v.predicate(table, p)
	}
}

func (v *validator) column(table Table, field string) (ColumnKind, bool) {
	kind, ok := table.Columns[field]
	if !ok {
		v.addf("table %s has no column %q", table.Name, field)
	}
	return kind, ok
}
