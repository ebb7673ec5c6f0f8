package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/chipwire/internal/ir"
)

// Snapshot is the canonical JSON form of a result used for golden files.
// It holds what the engine decided, not how the harness judged it.
func Snapshot(r *Result) ([]byte, error) {
	m := map[string]any{
		"scenario": r.Scenario,
		"board":    r.BoardName,
	}
	if r.ErrorCode != "" {
		m["error_code"] = r.ErrorCode
		loops := make([]any, len(r.Loops))
		for i, loop := range r.Loops {
			loops[i] = idStrings(loop)
		}
		m["loops"] = loops
	} else {
		m["order"] = idStrings(r.Order)
		m["outputs"] = r.Outputs
	}
	return ir.MarshalCanonical(m)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file
// without re-running.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}

func idStrings(ids []ir.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
