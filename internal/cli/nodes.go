package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/chipwire/internal/node"
)

// NodeInfo describes one registered chip type.
type NodeInfo struct {
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Kind        string           `json:"kind"`
	Inputs      []node.PortSpec  `json:"inputs"`
	Outputs     []node.PortSpec  `json:"outputs"`
	Params      []node.ParamSpec `json:"params,omitempty"`
	Variadic    []string         `json:"variadic,omitempty"`
}

// NewNodesCommand creates the nodes command.
func NewNodesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes [type...]",
		Short: "List the chip catalog",
		Long: `List the chip types boards may use, with their ports and params.

Examples:
  chipwire nodes
  chipwire nodes delay mix
  chipwire nodes --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNodes(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runNodes(opts *RootOptions, types []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg := opts.registry()

	if len(types) == 0 {
		types = reg.Types()
	}

	infos := make([]NodeInfo, 0, len(types))
	for _, typ := range types {
		def, ok := reg.Lookup(typ)
		if !ok {
			return formatter.fail(ExitCommandError, ErrCodeBadFlag, fmt.Sprintf("unknown node type %q", typ), nil)
		}
		info := NodeInfo{
			Type:        def.Type,
			Description: def.Description,
			Kind:        def.Kind.String(),
			Inputs:      def.Inputs,
			Outputs:     def.Outputs,
			Params:      def.Params,
		}
		if def.VariadicInputs {
			info.Variadic = append(info.Variadic, "inputs")
		}
		if def.VariadicOutputs {
			info.Variadic = append(info.Variadic, "outputs")
		}
		infos = append(infos, info)
	}

	if formatter.JSON() {
		return formatter.Success(infos)
	}

	w := formatter.Writer
	for _, info := range infos {
		fmt.Fprintf(w, "%s (%s)\n", info.Type, info.Kind)
		fmt.Fprintf(w, "  %s\n", info.Description)
		fmt.Fprintf(w, "  in:  %s\n", portNames(info.Inputs, slices.Contains(info.Variadic, "inputs")))
		fmt.Fprintf(w, "  out: %s\n", portNames(info.Outputs, slices.Contains(info.Variadic, "outputs")))
		for _, p := range info.Params {
			fmt.Fprintf(w, "  %s = %g [%g..%g]", p.Key, p.Default, p.Min, p.Max)
			if len(p.Labels) > 0 {
				fmt.Fprintf(w, " %s", strings.Join(p.Labels, "|"))
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func portNames(ports []node.PortSpec, variadic bool) string {
	if len(ports) == 0 {
		return "-"
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	s := strings.Join(names, ", ")
	if variadic {
		s += ", ..."
	}
	return s
}
