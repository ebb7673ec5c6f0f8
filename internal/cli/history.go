package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/queryir"
	"github.com/roach88/chipwire/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Board    string // board name, when the path holds several
	Hash     string // board hash, instead of a path
	Status   string // "ok" or "error"
	Code     string // engine error code
	Since    int64  // first seq to list
	Limit    int    // most recent runs only; 0 means all
}

// HistoryEntry is one stored run.
type HistoryEntry struct {
	store.Run
	Board string `json:"board"`
}

// HistoryResult lists stored runs, oldest first.
type HistoryResult struct {
	BoardHash string         `json:"board_hash,omitempty"`
	Runs      []HistoryEntry `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "List recorded runs",
		Long: `List runs recorded with "chipwire eval --db".

Without a path every run is listed. With a board path (or --hash) only runs
of that exact board document are listed; editing a board gives it a new
hash and a fresh history. --status, --error-code and --since narrow the
list further.

Examples:
  chipwire history --db ./runs.db
  chipwire history --db ./runs.db boards/echo.cue
  chipwire history --db ./runs.db --hash 3f2a... --limit 5 --format json
  chipwire history --db ./runs.db --error-code COMBINATIONAL_CYCLE --since 40`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runHistory(opts, path, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Board, "board", "", "board name, when the path holds several")
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "board hash to list runs for")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only runs with this status (ok|error)")
	cmd.Flags().StringVar(&opts.Code, "error-code", "", "only runs rejected with this engine error code")
	cmd.Flags().Int64Var(&opts.Since, "since", 0, "only runs with seq >= n")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the most recent n runs")

	return cmd
}

func runHistory(opts *HistoryOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := opts.formatter(cmd)

	hash := opts.Hash
	if path != "" {
		if hash != "" {
			return formatter.fail(ExitCommandError, ErrCodeBadFlag, "give a board path or --hash, not both", nil)
		}
		b, err := LoadBoard(path, opts.Board)
		if err != nil {
			code, message := loadErrorParts(err)
			return formatter.fail(ExitCommandError, code, message, nil)
		}
		if hash, err = ir.BoardHash(b); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
	}

	if opts.Status != "" && opts.Status != store.StatusOK && opts.Status != store.StatusError {
		return formatter.fail(ExitCommandError, ErrCodeBadFlag, fmt.Sprintf("--status must be %s or %s, got %q", store.StatusOK, store.StatusError, opts.Status), nil)
	}

	st, err := openHistory(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	runs, err := st.QueryRuns(ctx, historyFilter(opts, hash))
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	if opts.Limit > 0 && len(runs) > opts.Limit {
		runs = runs[len(runs)-opts.Limit:]
	}

	result := HistoryResult{BoardHash: hash, Runs: make([]HistoryEntry, 0, len(runs))}
	names := map[string]string{}
	for _, run := range runs {
		name, ok := names[run.BoardHash]
		if !ok {
			rec, err := st.ReadBoard(ctx, run.BoardHash)
			if err != nil {
				return formatter.fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("read board %s: %v", run.BoardHash, err), nil)
			}
			name = rec.Name
			names[run.BoardHash] = name
		}
		result.Runs = append(result.Runs, HistoryEntry{Run: run, Board: name})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}
	fmt.Fprintf(w, "%5s  %-36s  %-12s  %-6s  %6s  %s\n", "seq", "run", "board", "status", "ticks", "result")
	for _, e := range result.Runs {
		outcome := shortHash(e.OutputsHash)
		if e.Failed() {
			outcome = e.ErrorCode
		}
		fmt.Fprintf(w, "%5d  %-36s  %-12s  %-6s  %6d  %s\n", e.Seq, e.ID, e.Board, e.Status, e.CycleCount, outcome)
	}
	return nil
}

// historyFilter turns the history flags into a run query.
func historyFilter(opts *HistoryOptions, hash string) queryir.Predicate {
	var preds []queryir.Predicate
	if hash != "" {
		preds = append(preds, queryir.Equals{Field: "board_hash", Value: hash})
	}
	if opts.Status != "" {
		preds = append(preds, queryir.Equals{Field: "status", Value: opts.Status})
	}
	if opts.Code != "" {
		preds = append(preds, queryir.Equals{Field: "error_code", Value: opts.Code})
	}
	if opts.Since > 0 {
		preds = append(preds, queryir.AtLeast{Field: "seq", Value: opts.Since})
	}
	return queryir.Where(preds...)
}
