package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/chipwire/internal/engine"
	"github.com/roach88/chipwire/internal/waveform"
)

// Scenario defines one puzzle check.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Board is the path to a CUE board file, relative to the scenario file.
	Board string `yaml:"board"`

	// BoardName picks a board when the file defines several.
	BoardName string `yaml:"board_name,omitempty"`

	// Cycles overrides the tick count (default 256).
	Cycles int `yaml:"cycles,omitempty"`

	// Inputs are waveform specs, one per boundary input in index order.
	Inputs []string `yaml:"inputs,omitempty"`

	// Expect is the required outcome.
	Expect Expect `yaml:"expect"`

	// Assertions are extra checks on the outcome.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect is either an error code or target output waveforms.
type Expect struct {
	// Error is the engine error code the board must fail with.
	Error string `yaml:"error,omitempty"`

	// Outputs are target waveform specs, one per boundary output.
	Outputs []string `yaml:"outputs,omitempty"`

	// Tolerance overrides waveform.DefaultTolerance.
	Tolerance *float64 `yaml:"tolerance,omitempty"`
}

// Assertion is one extra check.
type Assertion struct {
	// Type is one of sample, range, order, loop.
	Type string `yaml:"type"`

	// Output is the boundary output column (sample, range).
	Output int `yaml:"output,omitempty"`

	// Tick is the sample index (sample).
	Tick int `yaml:"tick,omitempty"`

	// Value is the expected sample (sample).
	Value float64 `yaml:"value,omitempty"`

	// Min and Max bound every sample (range).
	Min float64 `yaml:"min,omitempty"`
	Max float64 `yaml:"max,omitempty"`

	// Nodes lists node ids (order, loop).
	Nodes []string `yaml:"nodes,omitempty"`
}

// Assertion type constants.
const (
	AssertSample = "sample"
	AssertRange  = "range"
	AssertOrder  = "order"
	AssertLoop   = "loop"
)

var knownErrorCodes = map[string]bool{
	string(engine.ErrCodeUnknownNodeType):      true,
	string(engine.ErrCodeInvalidPortReference): true,
	string(engine.ErrCodeCombinationalCycle):   true,
	string(engine.ErrCodeInvalidBoundary):      true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The board path is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if s.Board != "" && !filepath.IsAbs(s.Board) {
		s.Board = filepath.Join(filepath.Dir(path), s.Board)
	}
	return s, nil
}

// ParseScenario parses scenario YAML without resolving the board path.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Board == "" {
		return fmt.Errorf("board is required")
	}
	if s.Cycles < 0 {
		return fmt.Errorf("cycles must be positive, got %d", s.Cycles)
	}
	if _, err := waveform.ParseAll(s.Inputs); err != nil {
		return fmt.Errorf("inputs: %w", err)
	}
	if _, err := waveform.ParseAll(s.Expect.Outputs); err != nil {
		return fmt.Errorf("expect.outputs: %w", err)
	}

	switch {
	case s.Expect.Error != "" && len(s.Expect.Outputs) > 0:
		return fmt.Errorf("expect: error and outputs are mutually exclusive")
	case s.Expect.Error != "" && !knownErrorCodes[s.Expect.Error]:
		return fmt.Errorf("expect.error: unknown code %q", s.Expect.Error)
	case s.Expect.Error == "" && len(s.Expect.Outputs) == 0 && len(s.Assertions) == 0:
		return fmt.Errorf("expect needs error or outputs, or at least one assertion")
	}
	if t := s.Expect.Tolerance; t != nil && *t < 0 {
		return fmt.Errorf("expect.tolerance must not be negative")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertSample:
		if a.Tick < 0 || a.Output < 0 {
			return fmt.Errorf("sample: tick and output must not be negative")
		}
	case AssertRange:
		if a.Min > a.Max {
			return fmt.Errorf("range: min %g above max %g", a.Min, a.Max)
		}
	case AssertOrder:
		if len(a.Nodes) < 2 {
			return fmt.Errorf("order: needs at least two nodes")
		}
	case AssertLoop:
		if len(a.Nodes) == 0 {
			return fmt.Errorf("loop: needs nodes")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// tolerance returns the comparison tolerance for this scenario.
func (s *Scenario) tolerance() float64 {
	if s.Expect.Tolerance != nil {
		return *s.Expect.Tolerance
	}
	return waveform.DefaultTolerance
}
