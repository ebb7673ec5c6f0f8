package waveform

import (
	"fmt"
	"math"

	"github.com/roach88/chipwire/internal/engine"
	"github.com/roach88/chipwire/internal/node"
)

// Shape names a periodic function.
type Shape string

const (
	Sine     Shape = "sine"
	Square   Shape = "square"
	Triangle Shape = "triangle"
	Sawtooth Shape = "sawtooth"
	Constant Shape = "constant"
)

// Shapes lists every supported shape.
var Shapes = []Shape{Sine, Square, Triangle, Sawtooth, Constant}

// DefaultPeriod is one full cycle across a default evaluation.
const DefaultPeriod = engine.DefaultCycleCount

// Spec is one periodic signal.
type Spec struct {
	Shape     Shape   `yaml:"shape" json:"shape"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Period    float64 `yaml:"period" json:"period"`
	Phase     float64 `yaml:"phase,omitempty" json:"phase,omitempty"`
	Offset    float64 `yaml:"offset,omitempty" json:"offset,omitempty"`
}

// Validate reports an unknown shape or a non-positive period.
func (s Spec) Validate() error {
	if _, err := shapeFunc(s.Shape); err != nil {
		return err
	}
	if s.Shape != Constant && !(s.Period > 0) {
		return fmt.Errorf("waveform %s: period must be positive, got %g", s.Shape, s.Period)
	}
	return nil
}

// Sample returns the value at tick t.
func (s Spec) Sample(t int) float64 {
	f, err := shapeFunc(s.Shape)
	if err != nil {
		return 0
	}
	x := 0.0
	if s.Period > 0 {
		x = (float64(t) + s.Phase) / s.Period
	}
	return node.Clamp(s.Offset + s.Amplitude*f(x))
}

// Samples returns Sample(0) .. Sample(n-1).
func (s Spec) Samples(n int) []float64 {
	out := make([]float64, n)
	for t := range out {
		out[t] = s.Sample(t)
	}
	return out
}

// String renders the waveform in Parse form.
func (s Spec) String() string {
	str := fmt.Sprintf("%s:%g:%g", s.Shape, s.Amplitude, s.Period)
	switch {
	case s.Offset != 0:
		str += fmt.Sprintf(":%g:%g", s.Phase, s.Offset)
	case s.Phase != 0:
		str += fmt.Sprintf(":%g", s.Phase)
	}
	return str
}

// Generator feeds specs[i] to boundary input i.
func Generator(specs ...Spec) engine.InputGenerator {
	return func(tick int) []float64 {
		out := make([]float64, len(specs))
		for i, s := range specs {
			out[i] = s.Sample(tick)
		}
		return out
	}
}

func shapeFunc(s Shape) (func(float64) float64, error) {
	switch s {
	case Sine:
		return func(x float64) float64 { return math.Sin(2 * math.Pi * x) }, nil
	case Square:
		return func(x float64) float64 {
			if frac(x) < 0.5 {
				return 1
			}
			return -1
		}, nil
	case Triangle:
		// 0 at x=0, peak at a quarter period.
		return func(x float64) float64 { return 4*math.Abs(frac(x-0.25)-0.5) - 1 }, nil
	case Sawtooth:
		// 0 at x=0, rising to the top at half a period, then wrapping.
		return func(x float64) float64 { return 2*frac(x+0.5) - 1 }, nil
	case Constant:
		return func(float64) float64 { return 1 }, nil
	default:
		return nil, fmt.Errorf("unknown waveform shape %q", s)
	}
}

// frac returns x - floor(x), always in [0, 1).
func frac(x float64) float64 {
	return x - math.Floor(x)
}
