package queryir

// Table names.
const (
	TableBoards = "boards"
	TableRuns   = "runs"
)

// ColumnKind is the storage class of a column.
type ColumnKind int

const (
	Text ColumnKind = iota
	Integer
)

func (k ColumnKind) String() string {
	if k == Integer {
		return "integer"
	}
	return "text"
}

// Table describes one queryable table.
type Table struct {
	Name    string
	Columns map[string]ColumnKind

	// Order is the ORDER BY clause that makes results deterministic.
	Order string
}

// Tables lists the queryable history tables, mirroring the store schema.
var Tables = map[string]Table{
	TableBoards: {
		Name: TableBoards,
		Columns: map[string]ColumnKind{
			"hash":       Text,
			"name":       Text,
			"document":   Text,
			"ir_version": Text,
		},
		Order: "hash COLLATE BINARY ASC",
	},
	TableRuns: {
		Name: TableRuns,
		Columns: map[string]ColumnKind{
			"id":             Text,
			"seq":            Integer,
			"board_hash":     Text,
			"cycle_count":    Integer,
			"inputs":         Text,
			"status":         Text,
			"error_code":     Text,
			"error_message":  Text,
			"outputs":        Text,
			"outputs_hash":   Text,
			"engine_version": Text,
		},
		Order: "seq ASC, id COLLATE BINARY ASC",
	},
}
