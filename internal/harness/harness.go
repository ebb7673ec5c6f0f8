package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/chipwire/internal/compiler"
	"github.com/roach88/chipwire/internal/engine"
	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/node"
	"github.com/roach88/chipwire/internal/store"
	"github.com/roach88/chipwire/internal/testutil"
	"github.com/roach88/chipwire/internal/waveform"
)

// Options configures RunWithOptions.
type Options struct {
	// Registry resolves node types. Defaults to node.Default().
	Registry *node.Registry

	// Logger receives engine diagnostics. Defaults to discarding them.
	Logger *slog.Logger
}

// Run executes a scenario with the builtin catalog and returns the result.
//
// A returned error means the scenario could not be executed at all (board
// file missing, board does not compile). Expectation failures are reported
// in Result.Errors with Pass set to false.
//
// Execution flow:
//  1. Load the board from its CUE file
//  2. Compile it with the engine; compare any error with expect.error
//  3. Run with the input waveforms and compare outputs with expect.outputs
//  4. Record the run in a fresh in-memory store
//  5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(scenario, Options{})
}

// RunWithOptions is Run with a custom registry or logger.
func RunWithOptions(scenario *Scenario, opts Options) (*Result, error) {
	if opts.Registry == nil {
		opts.Registry = node.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	loaded, err := compiler.LoadBoards(scenario.Board)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	board, err := loaded.Board(scenario.BoardName)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}

	inputs, err := waveform.ParseAll(scenario.Inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	targets, err := waveform.ParseAll(scenario.Expect.Outputs)
	if err != nil {
		return nil, fmt.Errorf("expect.outputs: %w", err)
	}

	st, err := store.Open(":memory:", store.WithRunIDs(testutil.NewRunIDs()))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	result := NewResult(scenario.Name)
	result.BoardName = board.Name
	if result.BoardHash, err = ir.BoardHash(board); err != nil {
		return nil, err
	}

	cycles := scenario.Cycles
	if cycles == 0 {
		cycles = engine.DefaultCycleCount
	}

	res, evalErr := engine.Evaluate(board, opts.Registry, waveform.Generator(inputs...),
		engine.WithCycleCount(cycles),
		engine.WithLogger(opts.Logger),
	)

	run, err := st.RecordEvaluation(context.Background(), board, cycles, res, evalErr, scenario.Inputs...)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	result.RunID = run.ID

	if evalErr != nil {
		var ee *engine.EvalError
		errors.As(evalErr, &ee)
		result.ErrorCode = string(ee.Code)
		result.Loops = ee.Loops
		if scenario.Expect.Error == "" {
			result.AddError(fmt.Sprintf("board rejected: %v", evalErr))
		} else if scenario.Expect.Error != result.ErrorCode {
			result.AddError(fmt.Sprintf("expected error %s, got %s", scenario.Expect.Error, result.ErrorCode))
		}
	} else {
		result.Order = res.Order
		result.Outputs = res.OutputValues
		result.OutputsHash = run.OutputsHash
		if scenario.Expect.Error != "" {
			result.AddError(fmt.Sprintf("expected error %s, board ran", scenario.Expect.Error))
		}
		checkOutputs(result, res, targets, scenario.tolerance())
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, scenario.tolerance()) {
		result.AddError(msg)
	}

	return result, nil
}

func checkOutputs(result *Result, res *engine.CycleResults, targets []waveform.Spec, tolerance float64) {
	if len(res.OutputValues) > 0 && len(targets) > len(res.OutputValues[0]) {
		result.AddError(fmt.Sprintf("expected %d outputs, board has %d", len(targets), len(res.OutputValues[0])))
		return
	}
	result.Mismatches = waveform.CompareAll(res, targets, tolerance)
	if n := len(result.Mismatches); n > 0 {
		result.AddError(fmt.Sprintf("%d samples off target, first: %s", n, result.Mismatches[0]))
	}
}
