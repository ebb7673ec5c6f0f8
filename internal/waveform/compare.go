package waveform

import (
	"fmt"
	"math"

	"github.com/roach88/chipwire/internal/engine"
)

// DefaultTolerance is how far a sample may stray from its target and still
// count as a match, in signal units.
const DefaultTolerance = 5.0

// Mismatch is one tick where output and target disagree.
type Mismatch struct {
	Tick   int     `json:"tick"`
	Got    float64 `json:"got"`
	Want   float64 `json:"want"`
	Column int     `json:"column"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("output %d tick %d: got %g, want %g", m.Column, m.Tick, m.Got, m.Want)
}

// Compare checks one output column against target and returns every tick
// whose difference exceeds tolerance. A negative tolerance means the default.
func Compare(res *engine.CycleResults, column int, target Spec, tolerance float64) []Mismatch {
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}
	var out []Mismatch
	for tick, got := range res.Column(column) {
		want := target.Sample(tick)
		if math.Abs(got-want) > tolerance {
			out = append(out, Mismatch{Tick: tick, Got: got, Want: want, Column: column})
		}
	}
	return out
}

// CompareAll checks every target in column order. Columns without a target
// are ignored.
func CompareAll(res *engine.CycleResults, targets []Spec, tolerance float64) []Mismatch {
	var out []Mismatch
	for col, target := range targets {
		out = append(out, Compare(res, col, target, tolerance)...)
	}
	return out
}

// MatchRatio is the fraction of ticks within tolerance, in [0, 1].
func MatchRatio(res *engine.CycleResults, column int, target Spec, tolerance float64) float64 {
	n := res.Cycles()
	if n == 0 {
		return 1
	}
	return 1 - float64(len(Compare(res, column, target, tolerance)))/float64(n)
}
