package harness

import (
	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/waveform"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: the expected outcome occurred and
	// every assertion held.
	Pass bool `json:"pass"`

	Scenario  string      `json:"scenario"`
	BoardName string      `json:"board_name"`
	BoardHash string      `json:"board_hash"`
	Order     []ir.NodeID `json:"order,omitempty"`

	// ErrorCode is the engine error code, empty when the board ran.
	ErrorCode string        `json:"error_code,omitempty"`
	Loops     [][]ir.NodeID `json:"loops,omitempty"`

	Outputs     [][]float64 `json:"outputs,omitempty"`
	OutputsHash string      `json:"outputs_hash,omitempty"`

	// RunID is the id the run was recorded under.
	RunID string `json:"run_id"`

	Mismatches []waveform.Mismatch `json:"mismatches,omitempty"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Pass:     true,
		Scenario: scenario,
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
