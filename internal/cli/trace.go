package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chipwire/internal/engine"
	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/waveform"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Board  string
	Inputs []string
	From   int
	To     int
	Nodes  []string // optional - only these nodes
}

// NodeTrace is the output of one node over the traced ticks.
type NodeTrace struct {
	Node ir.NodeID `json:"node"`
	Type string    `json:"type"`

	// Values is indexed [tick-From][output port]. Boundary outputs report
	// the value they deliver.
	Values [][]float64 `json:"values"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Board string      `json:"board"`
	From  int         `json:"from"`
	To    int         `json:"to"`
	Nodes []NodeTrace `json:"nodes"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <path>",
		Short: "Show every node's output tick by tick",
		Long: `Run a board and show what each node produced over a range of ticks.

Nodes are listed in evaluation order. Use it to see where a signal goes
wrong on its way to an output.

Examples:
  chipwire trace boards/echo.cue --input square:50:32 --to 20
  chipwire trace boards/echo.cue --input square:50:32 --from 14 --to 18 --node d --node x
  chipwire trace boards/echo.cue --input sine:50:256 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Board, "board", "", "board name, when the path holds several")
	cmd.Flags().StringArrayVarP(&opts.Inputs, "input", "i", nil, "input waveform (repeatable)")
	cmd.Flags().IntVar(&opts.From, "from", 0, "first tick to show")
	cmd.Flags().IntVar(&opts.To, "to", 15, "last tick to show")
	cmd.Flags().StringArrayVar(&opts.Nodes, "node", nil, "only show this node (repeatable)")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if opts.From < 0 || opts.To < opts.From {
		return formatter.fail(ExitCommandError, ErrCodeBadFlag,
			fmt.Sprintf("invalid tick range %d..%d", opts.From, opts.To), nil)
	}

	b, err := LoadBoard(path, opts.Board)
	if err != nil {
		code, message := loadErrorParts(err)
		return formatter.fail(ExitCommandError, code, message, nil)
	}
	for _, id := range opts.Nodes {
		if _, ok := b.Node(ir.NodeID(id)); !ok {
			return formatter.fail(ExitCommandError, ErrCodeBadFlag, fmt.Sprintf("--node %s: no such node in %s", id, b.Name), nil)
		}
	}
	inputs, err := parseWaveforms("input", opts.Inputs)
	if err != nil {
		code, message := loadErrorParts(err)
		return formatter.fail(ExitCommandError, code, message, nil)
	}

	prog, err := engine.Compile(b, opts.registry(),
		engine.WithCycleCount(opts.To+1),
		engine.WithLogger(opts.Logger()),
		engine.WithTrace(),
	)
	if err != nil {
		return outputEvalError(formatter, b, err)
	}
	res := prog.Run(waveform.Generator(inputs...))

	result := buildTrace(b, res, opts)

	if formatter.JSON() {
		return formatter.Success(result)
	}
	outputTraceText(formatter, result)
	return nil
}

// buildTrace slices the recorded values to the requested ticks and nodes.
func buildTrace(b *ir.Board, res *engine.CycleResults, opts *TraceOptions) TraceResult {
	result := TraceResult{Board: b.Name, From: opts.From, To: opts.To, Nodes: []NodeTrace{}}

	for _, id := range res.Order {
		if len(opts.Nodes) > 0 && !slices.Contains(opts.Nodes, string(id)) {
			continue
		}
		n, _ := b.Node(id)
		nt := NodeTrace{Node: id, Type: n.Type}

		if n.IsBoundaryOutput() {
			// Boundary outputs have no output ports; show the delivered column.
			for tick := opts.From; tick <= opts.To; tick++ {
				nt.Values = append(nt.Values, []float64{res.OutputValues[tick][*n.BoundaryIndex]})
			}
		} else {
			nt.Values = res.Trace[id][opts.From : opts.To+1]
		}
		result.Nodes = append(result.Nodes, nt)
	}
	return result
}

// outputTraceText prints one row per tick and one column per node port.
func outputTraceText(formatter *OutputFormatter, result TraceResult) {
	w := formatter.Writer

	fmt.Fprintf(w, "Trace: %s, ticks %d..%d\n\n", result.Board, result.From, result.To)

	header := []string{fmt.Sprintf("%6s", "tick")}
	for _, nt := range result.Nodes {
		ports := 0
		if len(nt.Values) > 0 {
			ports = len(nt.Values[0])
		}
		for p := 0; p < ports; p++ {
			label := string(nt.Node)
			if ports > 1 {
				label = fmt.Sprintf("%s:%d", nt.Node, p)
			}
			header = append(header, fmt.Sprintf("%9s", label))
		}
	}
	fmt.Fprintln(w, strings.Join(header, " "))

	for i := 0; i <= result.To-result.From; i++ {
		row := []string{fmt.Sprintf("%6d", result.From+i)}
		for _, nt := range result.Nodes {
			for _, v := range nt.Values[i] {
				row = append(row, fmt.Sprintf("%9s", formatSample(v)))
			}
		}
		fmt.Fprintln(w, strings.Join(row, " "))
	}
}
