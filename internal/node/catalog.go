package node

import (
	"math"

	"github.com/roach88/chipwire/internal/ir"
)

// Builtin type names.
const (
	TypeInvert    = "invert"
	TypeMix       = "mix"
	TypeMultiply  = "multiply"
	TypeScale     = "scale"
	TypeOffset    = "offset"
	TypeThreshold = "threshold"
	TypeDelay     = "delay"
	TypeSplit     = "split"
	TypeShifter   = "shifter"
	TypeRectify   = "rectify"
	TypeConstant  = "constant"
)

// Mix modes, stored in the "mode" param.
const (
	MixAdd = iota
	MixSubtract
	MixAverage
	MixMax
	MixMin
)

var mixLabels = []string{"add", "subtract", "average", "max", "min"}

// Builtins returns fresh copies of every builtin definition.
func Builtins() []*Definition {
	return []*Definition{
		connectionInput(),
		connectionOutput(),
		invert(),
		mix(),
		multiply(),
		scale(),
		offset(),
		threshold(),
		delay(),
		split(),
		shifter(),
		rectify(),
		constant(),
	}
}

func connectionInput() *Definition {
	return &Definition{
		Type:        ir.TypeConnectionInput,
		Description: "Puzzle input driven by an external waveform",
		Boundary:    BoundaryInput,
		Outputs:     []PortSpec{{Name: "out"}},
	}
}

func connectionOutput() *Definition {
	return &Definition{
		Type:        ir.TypeConnectionOutput,
		Description: "Puzzle output recorded into the result buffer",
		Boundary:    BoundaryOutput,
		Inputs:      []PortSpec{{Name: "in"}},
	}
}

func invert() *Definition {
	return &Definition{
		Type:        TypeInvert,
		Description: "Negates the input",
		Inputs:      []PortSpec{{Name: "in"}},
		Outputs:     []PortSpec{{Name: "out"}},
		Evaluate: func(ctx *Context) []float64 {
			return fill(ctx.Outputs, Clamp(-ctx.Inputs[0]))
		},
	}
}

func mix() *Definition {
	return &Definition{
		Type:           TypeMix,
		Description:    "Combines inputs with the selected mode",
		Inputs:         []PortSpec{{Name: "a"}, {Name: "b"}},
		Outputs:        []PortSpec{{Name: "out"}},
		VariadicInputs: true,
		Params: []ParamSpec{
			{Key: "mode", Default: MixAdd, Min: 0, Max: float64(len(mixLabels) - 1), Step: 1, Labels: mixLabels},
		},
		Evaluate: func(ctx *Context) []float64 {
			return fill(ctx.Outputs, Clamp(mixValues(int(ctx.Params["mode"]), ctx.Inputs)))
		},
	}
}

// mixValues folds inputs left to right. Subtract is a - b - c ...
func mixValues(mode int, in []float64) float64 {
	if len(in) == 0 {
		return 0
	}
	acc := in[0]
	for _, v := range in[1:] {
		switch mode {
		case MixSubtract:
			acc -= v
		case MixMax:
			acc = math.Max(acc, v)
		case MixMin:
			acc = math.Min(acc, v)
		default:
			acc += v
		}
	}
	if mode == MixAverage {
		acc /= float64(len(in))
	}
	return acc
}

func multiply() *Definition {
	return &Definition{
		Type:        TypeMultiply,
		Description: "Product of both inputs, rescaled to the signal range",
		Inputs:      []PortSpec{{Name: "a"}, {Name: "b"}},
		Outputs:     []PortSpec{{Name: "out"}},
		Evaluate: func(ctx *Context) []float64 {
			return fill(ctx.Outputs, Clamp(ctx.Inputs[0]*ctx.Inputs[1]/100))
		},
	}
}

func scale() *Definition {
	return &Definition{
		Type:        TypeScale,
		Description: "Multiplies the input by factor percent",
		Inputs:      []PortSpec{{Name: "in"}},
		Outputs:     []PortSpec{{Name: "out"}},
		Params:      []ParamSpec{{Key: "factor", Default: 100, Min: -200, Max: 200, Step: 5}},
		Evaluate: func(ctx *Context) []float64 {
			return fill(ctx.Outputs, Clamp(ctx.Inputs[0]*ctx.Params["factor"]/100))
		},
	}
}

func offset() *Definition {
	return &Definition{
		Type:        TypeOffset,
		Description: "Adds a fixed amount to the input",
		Inputs:      []PortSpec{{Name: "in"}},
		Outputs:     []PortSpec{{Name: "out"}},
		Params:      []ParamSpec{{Key: "amount", Default: 0, Min: -100, Max: 100, Step: 5}},
		Evaluate: func(ctx *Context) []float64 {
			return fill(ctx.Outputs, Clamp(ctx.Inputs[0]+ctx.Params["amount"]))
		},
	}
}

func threshold() *Definition {
	return &Definition{
		Type:        TypeThreshold,
		Description: "Full high when the input exceeds level, full low otherwise",
		Inputs:      []PortSpec{{Name: "in"}},
		Outputs:     []PortSpec{{Name: "out"}},
		Params:      []ParamSpec{{Key: "level", Default: 0, Min: -100, Max: 100, Step: 5}},
		Evaluate: func(ctx *Context) []float64 {
			if ctx.Inputs[0] > ctx.Params["level"] {
				return fill(ctx.Outputs, SignalMax)
			}
			return fill(ctx.Outputs, SignalMin)
		},
	}
}

// delayLine is the state of a delay chip: a ring of past inputs.
// buf[pos] holds the input captured len(buf) ticks ago.
type delayLine struct {
	buf []float64
	pos int
}

func delayState(ctx *Context) *delayLine {
	if d, ok := (*ctx.State).(*delayLine); ok {
		return d
	}
	steps := int(ctx.Params["steps"])
	if steps < 1 {
		steps = 1
	}
	// Pre-history reads as zero.
	d := &delayLine{buf: make([]float64, steps*TicksPerStep)}
	*ctx.State = d
	return d
}

func delay() *Definition {
	return &Definition{
		Type:        TypeDelay,
		Description: "Outputs the input from steps*16 ticks earlier",
		Kind:        Sequential,
		Inputs:      []PortSpec{{Name: "in"}},
		Outputs:     []PortSpec{{Name: "out"}},
		Params:      []ParamSpec{{Key: "steps", Default: 1, Min: 1, Max: 8, Step: 1}},
		Peek: func(ctx *Context) []float64 {
			d := delayState(ctx)
			return fill(ctx.Outputs, d.buf[d.pos])
		},
		Evaluate: func(ctx *Context) []float64 {
			d := delayState(ctx)
			out := d.buf[d.pos]
			d.buf[d.pos] = Clamp(ctx.Inputs[0])
			d.pos = (d.pos + 1) % len(d.buf)
			return fill(ctx.Outputs, out)
		},
	}
}

func split() *Definition {
	return &Definition{
		Type:            TypeSplit,
		Description:     "Copies the input to every output",
		Inputs:          []PortSpec{{Name: "in"}},
		Outputs:         []PortSpec{{Name: "a"}, {Name: "b"}},
		VariadicOutputs: true,
		Evaluate: func(ctx *Context) []float64 {
			return fill(ctx.Outputs, Clamp(ctx.Inputs[0]))
		},
	}
}

func shifter() *Definition {
	return &Definition{
		Type:        TypeShifter,
		Description: "Shifts the input by a knob value in steps of 25",
		Inputs:      []PortSpec{{Name: "in"}},
		Outputs:     []PortSpec{{Name: "out"}},
		Params:      []ParamSpec{{Key: "shift", Default: 0, Min: -100, Max: 100, Step: 25}},
		Evaluate: func(ctx *Context) []float64 {
			return fill(ctx.Outputs, Clamp(ctx.Inputs[0]+ctx.Params["shift"]))
		},
	}
}

func rectify() *Definition {
	return &Definition{
		Type:        TypeRectify,
		Description: "Absolute value of the input",
		Inputs:      []PortSpec{{Name: "in"}},
		Outputs:     []PortSpec{{Name: "out"}},
		Evaluate: func(ctx *Context) []float64 {
			return fill(ctx.Outputs, Clamp(math.Abs(ctx.Inputs[0])))
		},
	}
}

func constant() *Definition {
	return &Definition{
		Type:        TypeConstant,
		Description: "Emits a fixed knob value",
		Outputs:     []PortSpec{{Name: "out"}},
		Params:      []ParamSpec{{Key: "value", Default: 0, Min: -100, Max: 100, Step: 5}},
		Evaluate: func(ctx *Context) []float64 {
			return fill(ctx.Outputs, Clamp(ctx.Params["value"]))
		},
	}
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
