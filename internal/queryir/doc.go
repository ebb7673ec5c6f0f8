// Package queryir is a small query representation for the run history.
//
// Callers describe which rows they want (runs of one board, failed runs,
// runs after a given sequence number) without writing SQL. The querysql
// package turns a Query into a parameterized SQLite statement.
//
//	[history flags] → [Query IR] → [querysql] → SQLite
//
// Query and Predicate are sealed: only this package implements them, so
// backends can switch over every case.
//
// Every field a predicate names must be a column of the selected table,
// and every value must match that column's type. Validate enforces both, so
// a query that validates always compiles.
package queryir
