package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/chipwire/internal/engine"
	"github.com/roach88/chipwire/internal/ir"
)

// WriteBoard stores a board's canonical document and returns its hash.
// Uses ON CONFLICT(hash) DO NOTHING, so writing the same board twice is a no-op.
func (s *Store) WriteBoard(ctx context.Context, b *ir.Board) (string, error) {
	doc, err := ir.MarshalCanonical(b.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("write board: %w", err)
	}
	hash, err := ir.BoardHash(b)
	if err != nil {
		return "", fmt.Errorf("write board: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO boards (hash, name, document, ir_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, hash, b.Name, string(doc), ir.IRVersion)
	if err != nil {
		return "", fmt.Errorf("write board: %w", err)
	}
	return hash, nil
}

// WriteRun inserts a run and returns it with ID and Seq filled in.
//
// An empty ID is replaced by the store's generator. Seq is always assigned
// inside the write transaction as one past the current maximum.
// The board referenced by BoardHash must already exist (foreign key constraint).
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}
	if run.Outputs == nil {
		run.Outputs = [][]float64{}
	}
	if run.Inputs == nil {
		run.Inputs = []string{}
	}
	if run.Status == "" {
		run.Status = StatusOK
	}
	if run.EngineVersion == "" {
		run.EngineVersion = ir.EngineVersion
	}

	outputs, err := ir.MarshalCanonical(run.Outputs)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	inputs, err := ir.MarshalCanonical(run.Inputs)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	if run.OutputsHash == "" && run.Status == StatusOK {
		if run.OutputsHash, err = ir.OutputsHash(run.Outputs); err != nil {
			return Run{}, fmt.Errorf("write run: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, board_hash, cycle_count, inputs, status, error_code, error_message, outputs, outputs_hash, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Seq,
		run.BoardHash,
		run.CycleCount,
		string(inputs),
		run.Status,
		run.ErrorCode,
		run.ErrorMessage,
		string(outputs),
		run.OutputsHash,
		run.EngineVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

// RecordEvaluation stores the board and the outcome of evaluating it.
// evalErr is the error returned by engine.Evaluate; an *engine.EvalError is
// recorded as a failed run, any other error is returned unchanged.
// inputs are the waveform specs that fed the run, kept for replay.
func (s *Store) RecordEvaluation(ctx context.Context, b *ir.Board, cycles int, res *engine.CycleResults, evalErr error, inputs ...string) (Run, error) {
	run := Run{CycleCount: cycles, Inputs: inputs}

	if evalErr != nil {
		var ee *engine.EvalError
		if !errors.As(evalErr, &ee) {
			return Run{}, evalErr
		}
		run.Status = StatusError
		run.ErrorCode = string(ee.Code)
		run.ErrorMessage = ee.Error()
	} else {
		run.Status = StatusOK
		run.Outputs = res.OutputValues
	}

	hash, err := s.WriteBoard(ctx, b)
	if err != nil {
		return Run{}, err
	}
	run.BoardHash = hash
	return s.WriteRun(ctx, run)
}
