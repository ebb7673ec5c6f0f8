package node

import "fmt"

// Kind tells the scheduler whether a chip's outputs depend on same-tick inputs.
type Kind int

const (
	// Combinational chips compute outputs from current inputs and params only.
	Combinational Kind = iota
	// Sequential chips compute outputs from state carried from earlier ticks.
	Sequential
)

func (k Kind) String() string {
	switch k {
	case Combinational:
		return "combinational"
	case Sequential:
		return "sequential"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Boundary marks the two reserved interface types.
type Boundary int

const (
	BoundaryNone Boundary = iota
	BoundaryInput
	BoundaryOutput
)

// PortSpec names one declared port.
type PortSpec struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ParamSpec describes one tunable parameter.
// Labels, when present, name the integer values 0..len-1 (e.g. mix modes).
type ParamSpec struct {
	Key     string   `json:"key"`
	Default float64  `json:"default"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Step    float64  `json:"step,omitempty"`
	Labels  []string `json:"labels,omitempty"`
}

// Contains reports whether v lies within [Min, Max].
func (p ParamSpec) Contains(v float64) bool {
	return v >= p.Min && v <= p.Max
}

// Params holds concrete parameter values for one node instance.
type Params map[string]float64

// Context is the argument to Evaluate and Peek.
//
// Inputs has one entry per input port of the instance. Outputs is the number
// of values the call must return. State points at the instance's private
// slot; combinational chips must not touch it.
type Context struct {
	Inputs  []float64
	Params  Params
	State   *any
	Tick    int
	Outputs int
}

// EvalFunc computes one tick of a chip.
type EvalFunc func(ctx *Context) []float64

// Definition is the registered description of a chip type.
type Definition struct {
	Type        string
	Description string
	Kind        Kind
	Boundary    Boundary

	Inputs  []PortSpec
	Outputs []PortSpec
	Params  []ParamSpec

	// Variadic arity: instances may declare more ports than listed.
	VariadicInputs  bool
	VariadicOutputs bool

	// Evaluate runs once per tick. Nil only for boundary types.
	Evaluate EvalFunc

	// Peek returns the outputs for the current tick from state only,
	// without mutating it. Required for sequential chips.
	Peek EvalFunc
}

// Param looks up a parameter spec by key.
func (d *Definition) Param(key string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Key == key {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// ResolveParams merges instance values over the declared defaults.
// Keys the definition does not declare are dropped.
func (d *Definition) ResolveParams(values map[string]float64) Params {
	out := make(Params, len(d.Params))
	for _, p := range d.Params {
		v, ok := values[p.Key]
		if !ok {
			v = p.Default
		}
		out[p.Key] = v
	}
	return out
}

// InputCount returns the effective input arity for a requested count.
// Zero means the declared count.
func (d *Definition) InputCount(requested int) int {
	if requested <= 0 {
		return len(d.Inputs)
	}
	return requested
}

// OutputCount returns the effective output arity for a requested count.
func (d *Definition) OutputCount(requested int) int {
	if requested <= 0 {
		return len(d.Outputs)
	}
	return requested
}
