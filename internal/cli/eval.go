package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chipwire/internal/engine"
	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/store"
	"github.com/roach88/chipwire/internal/waveform"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Board     string
	Inputs    []string // waveform specs, one per boundary input
	Targets   []string // waveform specs, one per boundary output
	Tolerance float64
	Cycles    int
	Every     int // print every n-th tick in text mode
	Database  string
}

// TargetMatch is how closely one output column follows its target.
type TargetMatch struct {
	Output     int                `json:"output"`
	Target     string             `json:"target"`
	Ratio      float64            `json:"ratio"`
	Mismatches int                `json:"mismatches"`
	First      *waveform.Mismatch `json:"first_mismatch,omitempty"`
}

// EvalResult is the outcome of one evaluation.
type EvalResult struct {
	Board     string        `json:"board"`
	BoardHash string        `json:"board_hash"`
	Cycles    int           `json:"cycles"`
	Order     []ir.NodeID   `json:"order"`
	Outputs   [][]float64   `json:"outputs"`
	Targets   []TargetMatch `json:"targets,omitempty"`
	RunID     string        `json:"run_id,omitempty"`
}

// OnTarget reports whether every target matched at every tick.
func (r *EvalResult) OnTarget() bool {
	for _, m := range r.Targets {
		if m.Mismatches > 0 {
			return false
		}
	}
	return true
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <path>",
		Short: "Run a board against input waveforms",
		Long: `Run a board for a number of ticks and print its output samples.

Inputs and targets are waveform specs, shape:amplitude:period[:phase[:offset]]
with shape one of sine, square, triangle, sawtooth, or a bare number for a
constant. Pass one --input per boundary input and one --target per boundary
output, in boundary index order. Missing inputs read as 0.

With --db the run is recorded in the run history.

Exit codes:
  0 - Board ran (and every target matched)
  1 - Board rejected, or an output is off target
  2 - Command error (path not found, bad waveform, etc.)

Examples:
  chipwire eval boards/offset.cue --input sine:50:256
  chipwire eval boards/offset.cue --input sine:50:256 --target sine:50:256:0:50
  chipwire eval boards/ --board echo --input square:50:32 --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Board, "board", "", "board name, when the path holds several")
	cmd.Flags().StringArrayVarP(&opts.Inputs, "input", "i", nil, "input waveform (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Targets, "target", "t", nil, "target waveform (repeatable)")
	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", waveform.DefaultTolerance, "allowed distance from a target, in signal units")
	cmd.Flags().IntVar(&opts.Cycles, "cycles", engine.DefaultCycleCount, "number of ticks to run")
	cmd.Flags().IntVar(&opts.Every, "every", 16, "print every n-th tick (text format)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runEval(opts *EvalOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger()

	b, err := LoadBoard(path, opts.Board)
	if err != nil {
		code, message := loadErrorParts(err)
		return formatter.fail(ExitCommandError, code, message, nil)
	}
	inputs, err := parseWaveforms("input", opts.Inputs)
	if err != nil {
		code, message := loadErrorParts(err)
		return formatter.fail(ExitCommandError, code, message, nil)
	}
	targets, err := parseWaveforms("target", opts.Targets)
	if err != nil {
		code, message := loadErrorParts(err)
		return formatter.fail(ExitCommandError, code, message, nil)
	}
	if opts.Cycles <= 0 {
		return formatter.fail(ExitCommandError, ErrCodeBadFlag, fmt.Sprintf("--cycles must be positive, got %d", opts.Cycles), nil)
	}

	hash, err := ir.BoardHash(b)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	res, evalErr := engine.Evaluate(b, opts.registry(), waveform.Generator(inputs...),
		engine.WithCycleCount(opts.Cycles),
		engine.WithLogger(logger),
	)

	var runID string
	if opts.Database != "" {
		run, err := recordRun(cmd.Context(), opts, b, res, evalErr)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		runID = run.ID
		logger.Info("run recorded", "board", b.Name, "run", run.ID, "seq", run.Seq, "status", run.Status)
	}

	if evalErr != nil {
		return outputEvalError(formatter, b, evalErr)
	}

	if len(targets) > len(res.OutputValues[0]) {
		return formatter.fail(ExitCommandError, ErrCodeBadFlag,
			fmt.Sprintf("%d target(s) given, board has %d output(s)", len(targets), len(res.OutputValues[0])), nil)
	}

	result := &EvalResult{
		Board:     b.Name,
		BoardHash: hash,
		Cycles:    res.Cycles(),
		Order:     res.Order,
		Outputs:   res.OutputValues,
		RunID:     runID,
	}
	for i, target := range targets {
		misses := waveform.Compare(res, i, target, opts.Tolerance)
		m := TargetMatch{
			Output:     i,
			Target:     target.String(),
			Ratio:      waveform.MatchRatio(res, i, target, opts.Tolerance),
			Mismatches: len(misses),
		}
		if len(misses) > 0 {
			m.First = &misses[0]
		}
		result.Targets = append(result.Targets, m)
	}

	if formatter.JSON() {
		if result.OnTarget() {
			return formatter.Success(result)
		}
		if err := formatter.Failure("E_OFF_TARGET", "outputs off target", result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "outputs off target")
	}

	outputEvalText(formatter, result, opts.Every, opts.Tolerance)
	if !result.OnTarget() {
		return NewExitError(ExitFailure, "outputs off target")
	}
	return nil
}

func recordRun(ctx context.Context, opts *EvalOptions, b *ir.Board, res *engine.CycleResults, evalErr error) (store.Run, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return store.Run{}, fmt.Errorf("open run history: %w", err)
	}
	defer st.Close()

	return st.RecordEvaluation(ctx, b, opts.Cycles, res, evalErr, opts.Inputs...)
}

func outputEvalText(formatter *OutputFormatter, result *EvalResult, every int, tolerance float64) {
	w := formatter.Writer
	if every <= 0 {
		every = 1
	}

	fmt.Fprintf(w, "✓ %s: %d tick(s)\n", result.Board, result.Cycles)
	fmt.Fprintf(w, "  order: %s\n", joinNodeIDs(result.Order, " → "))
	if result.RunID != "" {
		fmt.Fprintf(w, "  run:   %s\n", result.RunID)
	}
	fmt.Fprintln(w)

	columns := 0
	if len(result.Outputs) > 0 {
		columns = len(result.Outputs[0])
	}
	header := []string{fmt.Sprintf("%6s", "tick")}
	for i := 0; i < columns; i++ {
		header = append(header, fmt.Sprintf("%9s", fmt.Sprintf("out%d", i)))
	}
	fmt.Fprintln(w, strings.Join(header, " "))
	for tick := 0; tick < len(result.Outputs); tick += every {
		row := []string{fmt.Sprintf("%6d", tick)}
		for _, v := range result.Outputs[tick] {
			row = append(row, fmt.Sprintf("%9s", formatSample(v)))
		}
		fmt.Fprintln(w, strings.Join(row, " "))
	}

	if len(result.Targets) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, m := range result.Targets {
		mark := "✓"
		if m.Mismatches > 0 {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s out%d vs %s: %.1f%% within ±%g\n", mark, m.Output, m.Target, m.Ratio*100, tolerance)
		if m.First != nil {
			fmt.Fprintf(w, "  first miss: %s\n", m.First)
		}
	}
}
