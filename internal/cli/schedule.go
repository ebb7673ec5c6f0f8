package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chipwire/internal/engine"
	"github.com/roach88/chipwire/internal/ir"
)

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	*RootOptions
	Board string
}

// ScheduleResult is the evaluation order of one board.
type ScheduleResult struct {
	Board string      `json:"board"`
	Order []ir.NodeID `json:"order"`

	// Deferred lists wires leaving a sequential node. They impose no
	// same-tick order, which is how feedback through a delay is allowed.
	Deferred []string `json:"deferred"`
}

// LoopDetails is the error payload of a rejected schedule.
type LoopDetails struct {
	Board string        `json:"board"`
	Nodes []ir.NodeID   `json:"nodes"`
	Loops [][]ir.NodeID `json:"loops"`
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScheduleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schedule <path>",
		Short: "Show the evaluation order of a board",
		Long: `Show the order nodes are evaluated in every tick.

A board whose wires form a loop with no delay in it cannot be scheduled;
the loop members are reported instead, separately from the nodes that are
merely downstream of the loop.

Examples:
  chipwire schedule boards/echo.cue
  chipwire schedule boards/ --board feedback --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Board, "board", "", "board name, when the path holds several")

	return cmd
}

func runSchedule(opts *ScheduleOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	b, err := LoadBoard(path, opts.Board)
	if err != nil {
		code, message := loadErrorParts(err)
		return formatter.fail(ExitCommandError, code, message, nil)
	}

	sched, err := engine.BuildSchedule(b, opts.registry())
	if err != nil {
		return outputEvalError(formatter, b, err)
	}

	result := ScheduleResult{
		Board:    b.Name,
		Order:    sched.Order,
		Deferred: make([]string, len(sched.Deferred)),
	}
	for i, w := range sched.Deferred {
		result.Deferred[i] = w.ID
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ %s: %d node(s)\n\n", b.Name, len(result.Order))
	for i, id := range result.Order {
		n, _ := b.Node(id)
		fmt.Fprintf(w, "  %2d. %s (%s)\n", i+1, id, n.Type)
	}
	if len(sched.Deferred) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Deferred wires (read last tick's value):")
		for _, wire := range sched.Deferred {
			fmt.Fprintf(w, "  %s: %s:%d → %s:%d\n", wire.ID,
				wire.Source.NodeID, wire.Source.Port, wire.Target.NodeID, wire.Target.Port)
		}
	}
	return nil
}

// outputEvalError reports an engine rejection. Rejections are evaluation
// failures (exit 1); anything else is a command error.
func outputEvalError(formatter *OutputFormatter, b *ir.Board, err error) error {
	var ee *engine.EvalError
	if !errors.As(err, &ee) {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	var details any
	if ee.Code == engine.ErrCodeCombinationalCycle {
		details = LoopDetails{Board: b.Name, Nodes: ee.NodeIDs, Loops: ee.Loops}
	}

	if !formatter.JSON() && ee.Code == engine.ErrCodeCombinationalCycle {
		w := formatter.Writer
		fmt.Fprintf(w, "✗ %s: combinational loop\n", b.Name)
		inLoop := map[ir.NodeID]bool{}
		for _, loop := range ee.Loops {
			fmt.Fprintf(w, "  loop: %s → %s\n", joinNodeIDs(loop, " → "), loop[0])
			for _, id := range loop {
				inLoop[id] = true
			}
		}
		var blocked []ir.NodeID
		for _, id := range ee.NodeIDs {
			if !inLoop[id] {
				blocked = append(blocked, id)
			}
		}
		if len(blocked) > 0 {
			fmt.Fprintf(w, "  blocked: %s\n", joinNodeIDs(blocked, ", "))
		}
		fmt.Fprintln(w, "  Put a delay somewhere in each loop.")
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", ee.Code, ee.Message))
	}

	return formatter.fail(ExitFailure, string(ee.Code), ee.Error(), details)
}

func joinNodeIDs(ids []ir.NodeID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, sep)
}
