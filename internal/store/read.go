package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/chipwire/internal/queryir"
	"github.com/roach88/chipwire/internal/querysql"
)

// runColumnList is the scan order of scanRun.
var runColumnList = []string{
	"id", "seq", "board_hash", "cycle_count", "inputs", "status",
	"error_code", "error_message", "outputs", "outputs_hash", "engine_version",
}

var runColumns = strings.Join(runColumnList, ", ")

// ReadBoard retrieves a board document by hash.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadBoard(ctx context.Context, hash string) (BoardRecord, error) {
	var rec BoardRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, name, document, ir_version
		FROM boards
		WHERE hash = ?
	`, hash).Scan(&rec.Hash, &rec.Name, &rec.Document, &rec.IRVersion)
	if err != nil {
		return BoardRecord{}, err
	}
	return rec, nil
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns runs in seq order. An empty boardHash lists every run.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context, boardHash string) ([]Run, error) {
	var filter queryir.Predicate
	if boardHash != "" {
		filter = queryir.Equals{Field: "board_hash", Value: boardHash}
	}
	return s.QueryRuns(ctx, filter)
}

// QueryRuns returns the runs matching filter, in seq order. A nil filter
// matches every run.
func (s *Store) QueryRuns(ctx context.Context, filter queryir.Predicate) ([]Run, error) {
	query, args, err := querysql.Compile(queryir.Select{
		From:    queryir.TableRuns,
		Columns: runColumnList,
		Filter:  filter,
	})
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run of a board.
// Returns sql.ErrNoRows if the board has never been run.
func (s *Store) LatestRun(ctx context.Context, boardHash string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE board_hash = ?
		ORDER BY seq DESC
		LIMIT 1
	`, boardHash)
	return scanRun(row)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run     Run
		inputs  string
		outputs string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.BoardHash,
		&run.CycleCount,
		&inputs,
		&run.Status,
		&run.ErrorCode,
		&run.ErrorMessage,
		&outputs,
		&run.OutputsHash,
		&run.EngineVersion,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(inputs), &run.Inputs); err != nil {
		return Run{}, fmt.Errorf("scan run %s: inputs: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(outputs), &run.Outputs); err != nil {
		return Run{}, fmt.Errorf("scan run %s: outputs: %w", run.ID, err)
	}
	return run, nil
}
