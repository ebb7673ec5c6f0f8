package engine

import "github.com/roach88/chipwire/internal/ir"

// InputGenerator supplies boundary input values for a tick, one per
// connection-input in boundary index order. Missing values read as 0.
type InputGenerator func(tick int) []float64

// CycleResults holds the samples produced by one run.
type CycleResults struct {
	// OutputValues is indexed [tick][boundary output index].
	OutputValues [][]float64 `json:"output_values"`

	// Order is the schedule the run followed.
	Order []ir.NodeID `json:"order"`

	// Trace holds each node's outputs per tick, indexed [tick][port].
	// Only populated with WithTrace.
	Trace map[ir.NodeID][][]float64 `json:"trace,omitempty"`
}

// Cycles returns the number of ticks in the result.
func (r *CycleResults) Cycles() int {
	return len(r.OutputValues)
}

// Column returns the samples of one boundary output across all ticks.
func (r *CycleResults) Column(output int) []float64 {
	col := make([]float64, len(r.OutputValues))
	for t, row := range r.OutputValues {
		if output < len(row) {
			col[t] = row[output]
		}
	}
	return col
}
