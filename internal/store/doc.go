// Package store provides SQLite-backed history of board evaluations.
//
// The store keeps two append-only tables:
//   - Boards: canonical board documents keyed by content hash
//   - Runs: one row per evaluation, with its samples or its error code
//
// # Critical Patterns
//
// Logical identity and time:
//   - Runs are ordered by seq INTEGER (assigned in the write transaction),
//     never by timestamps
//   - Run ids are UUIDv7 in production and fixed in tests
//
// Deterministic query results:
//   - Every list query ends in ORDER BY seq ASC, id COLLATE BINARY ASC
//
// Content addressing:
//   - boards.hash is ir.BoardHash, so the same board written twice is one row
//   - Board documents and run outputs are stored as canonical JSON
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
