package queryir

// Query is a read against one history table.
type Query interface {
	queryNode()
}

// Predicate is a row filter.
//
// Predicate types:
//   - Equals: column = value
//   - AtLeast: column >= value, for integer columns
//   - And: all of the above
type Predicate interface {
	predicateNode()
}

// Select reads Columns from From, keeping rows that match Filter.
//
//	Select{
//	  From:    TableRuns,
//	  Columns: []string{"id", "seq", "status"},
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: "status", Value: "error"},
//	    AtLeast{Field: "seq", Value: 10},
//	  }},
//	}
//
// Columns must be explicit; there is no SELECT *. A nil Filter keeps every
// row. Rows always come back in the table's stable order.
type Select struct {
	From    string
	Columns []string
	Filter  Predicate
}

func (Select) queryNode() {}

// Equals matches rows whose column holds exactly Value.
// Value is a string for text columns and an int or int64 for integer ones.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// AtLeast matches rows whose integer column is >= Value.
type AtLeast struct {
	Field string
	Value int64
}

func (AtLeast) predicateNode() {}

// And matches rows that satisfy every predicate. An empty And matches all.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Where combines predicates, dropping nils. It returns nil when none are
// left and the single predicate when only one is.
func Where(preds ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(preds))
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
