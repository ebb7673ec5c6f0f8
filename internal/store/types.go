package store

// Run statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// BoardRecord is a stored board document.
type BoardRecord struct {
	Hash      string `json:"hash"`
	Name      string `json:"name"`
	Document  string `json:"document"`
	IRVersion string `json:"ir_version"`
}

// Run is one stored evaluation.
type Run struct {
	ID            string      `json:"id"`
	Seq           int64       `json:"seq"`
	BoardHash     string      `json:"board_hash"`
	CycleCount    int         `json:"cycle_count"`
	Inputs        []string    `json:"inputs"`
	Status        string      `json:"status"`
	ErrorCode     string      `json:"error_code,omitempty"`
	ErrorMessage  string      `json:"error_message,omitempty"`
	Outputs       [][]float64 `json:"outputs"`
	OutputsHash   string      `json:"outputs_hash,omitempty"`
	EngineVersion string      `json:"engine_version"`
}

// Failed reports whether the run ended in an engine error.
func (r Run) Failed() bool {
	return r.Status == StatusError
}
