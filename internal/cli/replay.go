package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/chipwire/internal/compiler"
	"github.com/roach88/chipwire/internal/engine"
	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/node"
	"github.com/roach88/chipwire/internal/store"
	"github.com/roach88/chipwire/internal/waveform"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID      string `json:"run_id"`
	Seq        int64  `json:"seq"`
	Board      string `json:"board"`
	Status     string `json:"status"`
	Reproduced bool   `json:"reproduced"`
	Detail     string `json:"detail,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs          []ReplayRunResult `json:"runs"`
	TotalRuns     int               `json:"total_runs"`
	AllReproduced bool              `json:"all_reproduced"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run stored evaluations and verify determinism",
		Long: `Re-run evaluations from the run history and check they come out the same.

Each run is rebuilt from its stored board document, input waveforms and
tick count. A successful run must reproduce its outputs hash; a rejected
run must be rejected with the same error code.

Exit codes:
  0 - All runs reproduced
  1 - At least one run came out differently
  2 - Command error (database not found, etc.)

Examples:
  chipwire replay --db ./runs.db
  chipwire replay --db ./runs.db --run 0192f0c4-...
  chipwire replay --db ./runs.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	st, err := openHistory(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, sql.ErrNoRows) {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("run %s not found", opts.RunID), nil)
		}
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		runs = []store.Run{run}
	} else if runs, err = st.ListRuns(ctx, ""); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	result := ReplayResult{
		Runs:          make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:     len(runs),
		AllReproduced: true,
	}
	reg := opts.registry()
	for _, run := range runs {
		r, err := replayRun(ctx, st, reg, run)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("replay run %s: %v", run.ID, err), nil)
		}
		opts.Logger().Debug("run replayed", "run", run.ID, "board", r.Board, "reproduced", r.Reproduced)
		result.Runs = append(result.Runs, r)
		if !r.Reproduced {
			result.AllReproduced = false
		}
	}

	if formatter.JSON() {
		if result.AllReproduced {
			return formatter.Success(result)
		}
		if err := formatter.Failure("E_DETERMINISM", "determinism verification failed", result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return outputReplayText(cmd, result)
}

// openHistory opens an existing run history. store.Open would create a
// missing file, which would only hide a mistyped path.
func openHistory(path string) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("--db is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found: %s", path)
	}
	return store.Open(path)
}

// replayRun re-evaluates one stored run. Only storage failures are returned
// as errors; a board that no longer compiles is a failed replay.
func replayRun(ctx context.Context, st *store.Store, reg *node.Registry, run store.Run) (ReplayRunResult, error) {
	r := ReplayRunResult{RunID: run.ID, Seq: run.Seq, Status: run.Status}

	rec, err := st.ReadBoard(ctx, run.BoardHash)
	if err != nil {
		return r, fmt.Errorf("read board %s: %w", run.BoardHash, err)
	}
	r.Board = rec.Name

	b, err := compiler.CompileDocument([]byte(rec.Document))
	if err != nil {
		r.Detail = fmt.Sprintf("stored board does not compile: %v", err)
		return r, nil
	}
	inputs, err := waveform.ParseAll(run.Inputs)
	if err != nil {
		r.Detail = fmt.Sprintf("stored inputs do not parse: %v", err)
		return r, nil
	}

	res, evalErr := engine.Evaluate(b, reg, waveform.Generator(inputs...), engine.WithCycleCount(run.CycleCount))

	switch {
	case run.Failed() && evalErr == nil:
		r.Detail = fmt.Sprintf("was rejected with %s, now runs", run.ErrorCode)
	case run.Failed():
		if code := string(engine.CodeOf(evalErr)); code != run.ErrorCode {
			r.Detail = fmt.Sprintf("was rejected with %s, now %s", run.ErrorCode, code)
		} else {
			r.Reproduced = true
		}
	case evalErr != nil:
		r.Detail = fmt.Sprintf("ran before, now rejected: %v", evalErr)
	default:
		hash, err := ir.OutputsHash(res.OutputValues)
		if err != nil {
			r.Detail = err.Error()
		} else if hash != run.OutputsHash {
			r.Detail = fmt.Sprintf("outputs hash %s, stored %s", shortHash(hash), shortHash(run.OutputsHash))
		} else {
			r.Reproduced = true
		}
	}
	if run.EngineVersion != ir.EngineVersion && !r.Reproduced {
		r.Detail += fmt.Sprintf(" (recorded by engine %s, now %s)", run.EngineVersion, ir.EngineVersion)
	}
	return r, nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Reproduced {
			status = "✗"
		}
		fmt.Fprintf(w, "%s #%d %s (%s, %s)\n", status, run.Seq, run.RunID, run.Board, run.Status)
		if run.Detail != "" {
			fmt.Fprintf(w, "  %s\n", run.Detail)
		}
	}
	fmt.Fprintln(w)

	if result.AllReproduced {
		fmt.Fprintln(w, "✓ All runs reproduced")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	// Determinism failure = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
