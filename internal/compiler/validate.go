package compiler

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/roach88/chipwire/internal/engine"
	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/node"
)

// Validation error codes (E200-E219)
const (
	ErrUnknownNodeType    = "E200" // type not in the registry
	ErrDuplicateNodeID    = "E201" // two nodes share an id
	ErrUnknownWireNode    = "E202" // wire endpoint names a missing node
	ErrPortOutOfRange     = "E203" // wire port index >= node port count
	ErrInputMultiplyWired = "E204" // more than one wire into an input port
	ErrUnknownParam       = "E205" // param key not declared by the type
	ErrParamOutOfRange    = "E206" // param value outside [min, max]
	ErrInvalidArity       = "E207" // port count override not allowed by the type
	ErrInvalidConstant    = "E208" // constant key malformed or addresses no input
	ErrBoundaryIndex      = "E209" // boundary index duplicated or not dense
	ErrCombinationalLoop  = "E210" // loop with no sequential node
)

// ValidationError represents one static problem in a board.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a board against the registry.
// Returns all errors found (does not fail-fast), in document order.
//
// The loop check only runs on an otherwise clean board, since it needs every
// type and port to resolve.
func Validate(b *ir.Board, reg *node.Registry) []ValidationError {
	v := &validator{board: b, reg: reg, defs: map[ir.NodeID]*node.Definition{}, nodes: map[ir.NodeID]*ir.NodeInstance{}}
	v.checkNodes()
	v.checkWires()
	v.checkConstants()
	v.checkBoundaries()

	if len(v.errs) == 0 {
		if _, err := engine.BuildSchedule(b, reg); err != nil {
			v.add("wires", ErrCombinationalLoop, loopMessage(err))
		}
	}
	return v.errs
}

// Err combines validation errors into one error, or nil when there are none.
func Err(errs []ValidationError) error {
	var combined error
	for _, e := range errs {
		combined = multierr.Append(combined, e)
	}
	return combined
}

type validator struct {
	board *ir.Board
	reg   *node.Registry
	defs  map[ir.NodeID]*node.Definition
	nodes map[ir.NodeID]*ir.NodeInstance
	errs  []ValidationError
}

func (v *validator) add(field, code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (v *validator) checkNodes() {
	for i, n := range v.board.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)

		// E201: duplicate id
		if _, dup := v.nodes[n.ID]; dup {
			v.add(field+".id", ErrDuplicateNodeID, "duplicate node id %q", n.ID)
			continue
		}
		v.nodes[n.ID] = n

		// E200: unknown type
		def, ok := v.reg.Lookup(n.Type)
		if !ok {
			v.add(field+".type", ErrUnknownNodeType, "unknown node type %q", n.Type)
			continue
		}
		v.defs[n.ID] = def

		// E205/E206: params
		keys := make([]string, 0, len(n.Params))
		for k := range n.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			spec, ok := def.Param(k)
			if !ok {
				v.add(field+".params."+k, ErrUnknownParam, "type %q has no param %q", n.Type, k)
				continue
			}
			if val := n.Params[k]; !spec.Contains(val) {
				v.add(field+".params."+k, ErrParamOutOfRange, "%g outside [%g, %g]", val, spec.Min, spec.Max)
			}
		}

		// E207: arity
		v.checkArity(field+".inputs", n.Type, n.InputCount, len(def.Inputs), def.VariadicInputs)
		v.checkArity(field+".outputs", n.Type, n.OutputCount, len(def.Outputs), def.VariadicOutputs)

		if def.Boundary == node.BoundaryNone && n.BoundaryIndex != nil {
			v.add(field+".index", ErrBoundaryIndex, "only boundary nodes take an index")
		}
	}
}

func (v *validator) checkArity(field, typ string, requested, declared int, variadic bool) {
	switch {
	case requested <= 0:
	case variadic && requested < declared:
		v.add(field, ErrInvalidArity, "type %q needs at least %d ports, got %d", typ, declared, requested)
	case !variadic && requested != declared:
		v.add(field, ErrInvalidArity, "type %q has exactly %d ports, got %d", typ, declared, requested)
	}
}

// portCount returns the effective port count, or false when the node or its
// type is unknown (already reported).
func (v *validator) portCount(id ir.NodeID, side ir.Side) (int, bool) {
	def, ok := v.defs[id]
	if !ok {
		return 0, false
	}
	n := v.nodes[id]
	if side == ir.SideOutput {
		return def.OutputCount(n.OutputCount), true
	}
	return def.InputCount(n.InputCount), true
}

func (v *validator) checkWires() {
	wiredInputs := map[ir.PortRef]string{}
	for i, w := range v.board.Wires {
		field := fmt.Sprintf("wires[%d]", i)
		for _, end := range []struct {
			name string
			ref  ir.PortRef
		}{{"from", w.Source}, {"to", w.Target}} {
			if _, ok := v.nodes[end.ref.NodeID]; !ok {
				v.add(field+"."+end.name, ErrUnknownWireNode, "no node %q", end.ref.NodeID)
				continue
			}
			count, ok := v.portCount(end.ref.NodeID, end.ref.Side)
			if ok && (end.ref.Port < 0 || end.ref.Port >= count) {
				v.add(field+"."+end.name, ErrPortOutOfRange,
					"%s has %d %s ports, got index %d", end.ref.NodeID, count, end.ref.Side, end.ref.Port)
			}
		}

		// E204: one wire per input
		if prev, dup := wiredInputs[w.Target]; dup {
			v.add(field+".to", ErrInputMultiplyWired, "input %s already driven by wire %s", w.Target, prev)
			continue
		}
		wiredInputs[w.Target] = w.ID
	}
}

func (v *validator) checkConstants() {
	keys := make([]string, 0, len(v.board.Constants))
	for k := range v.board.Constants {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		field := fmt.Sprintf("constants[%q]", k)
		id, port, err := ir.ParseConstantKey(k)
		if err != nil {
			v.add(field, ErrInvalidConstant, "%v", err)
			continue
		}
		if _, ok := v.nodes[id]; !ok {
			v.add(field, ErrInvalidConstant, "no node %q", id)
			continue
		}
		if count, ok := v.portCount(id, ir.SideInput); ok && port >= count {
			v.add(field, ErrInvalidConstant, "%s has %d input ports, got index %d", id, count, port)
		}
	}
}

func (v *validator) checkBoundaries() {
	for _, group := range []struct {
		name  string
		nodes []*ir.NodeInstance
	}{{"input", v.board.InputNodes()}, {"output", v.board.OutputNodes()}} {
		seen := map[int]ir.NodeID{}
		for _, n := range group.nodes {
			idx, ok := n.Boundary()
			if !ok {
				continue
			}
			if other, dup := seen[idx]; dup {
				v.add(fmt.Sprintf("nodes[%d].index", v.board.Index(n.ID)), ErrBoundaryIndex,
					"%s index %d already used by %q", group.name, idx, other)
				continue
			}
			seen[idx] = n.ID
			if idx >= len(group.nodes) {
				v.add(fmt.Sprintf("nodes[%d].index", v.board.Index(n.ID)), ErrBoundaryIndex,
					"%s index %d outside [0,%d)", group.name, idx, len(group.nodes))
			}
		}
	}
}

func loopMessage(err error) string {
	var b strings.Builder
	b.WriteString("combinational loop")
	var ee *engine.EvalError
	if errors.As(err, &ee) && len(ee.Loops) > 0 {
		for _, loop := range ee.Loops {
			ids := make([]string, len(loop))
			for i, id := range loop {
				ids[i] = string(id)
			}
			fmt.Fprintf(&b, " [%s]", strings.Join(ids, " -> "))
		}
		return b.String()
	}
	return err.Error()
}
