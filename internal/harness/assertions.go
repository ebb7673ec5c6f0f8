package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/chipwire/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Order    []ir.NodeID // Evaluation order for context, when the board ran
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Order) > 0 {
		ids := make([]string, len(e.Order))
		for i, id := range e.Order {
			ids[i] = string(id)
		}
		fmt.Fprintf(&buf, "\nEvaluation order: %s\n", strings.Join(ids, " "))
	}

	return buf.String()
}

// assertSample checks one output sample.
func assertSample(r *Result, a Assertion, tolerance float64) error {
	fail := func(actual string) error {
		return &AssertionError{
			Type:     AssertSample,
			Expected: fmt.Sprintf("output %d at tick %d = %g (±%g)", a.Output, a.Tick, a.Value, tolerance),
			Actual:   actual,
			Order:    r.Order,
		}
	}
	if r.ErrorCode != "" {
		return fail("board rejected with " + r.ErrorCode)
	}
	if a.Tick >= len(r.Outputs) {
		return fail(fmt.Sprintf("only %d ticks", len(r.Outputs)))
	}
	row := r.Outputs[a.Tick]
	if a.Output >= len(row) {
		return fail(fmt.Sprintf("only %d outputs", len(row)))
	}
	if got := row[a.Output]; math.Abs(got-a.Value) > tolerance {
		return fail(fmt.Sprintf("%g", got))
	}
	return nil
}

// assertRange checks that every sample of a column lies in [Min, Max].
func assertRange(r *Result, a Assertion) error {
	for tick, row := range r.Outputs {
		if a.Output >= len(row) {
			break
		}
		if v := row[a.Output]; v < a.Min || v > a.Max {
			return &AssertionError{
				Type:     AssertRange,
				Expected: fmt.Sprintf("output %d within [%g, %g]", a.Output, a.Min, a.Max),
				Actual:   fmt.Sprintf("%g at tick %d", v, tick),
				Order:    r.Order,
			}
		}
	}
	if r.ErrorCode != "" {
		return &AssertionError{
			Type:     AssertRange,
			Expected: fmt.Sprintf("output %d within [%g, %g]", a.Output, a.Min, a.Max),
			Actual:   "board rejected with " + r.ErrorCode,
		}
	}
	return nil
}

// assertOrder checks that nodes appear in the evaluation order in the given
// sequence. They don't need to be adjacent.
func assertOrder(r *Result, a Assertion) error {
	positions := make(map[string]int, len(r.Order))
	for i, id := range r.Order {
		positions[string(id)] = i
	}

	for _, id := range a.Nodes {
		if _, ok := positions[id]; !ok {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("all nodes scheduled: %v", a.Nodes),
				Actual:   fmt.Sprintf("missing node: %s", id),
				Order:    r.Order,
			}
		}
	}

	for i := 1; i < len(a.Nodes); i++ {
		prev, curr := a.Nodes[i-1], a.Nodes[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("nodes in order: %v", a.Nodes),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Order: r.Order,
			}
		}
	}
	return nil
}

// assertLoop checks that one reported loop has exactly the given members.
func assertLoop(r *Result, a Assertion) error {
	want := slices.Clone(a.Nodes)
	slices.Sort(want)
	for _, loop := range r.Loops {
		got := make([]string, len(loop))
		for i, id := range loop {
			got[i] = string(id)
		}
		slices.Sort(got)
		if slices.Equal(got, want) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertLoop,
		Expected: fmt.Sprintf("loop %v", a.Nodes),
		Actual:   fmt.Sprintf("loops %v", r.Loops),
	}
}

// EvaluateAssertions runs every assertion and returns failure messages.
func EvaluateAssertions(r *Result, assertions []Assertion, tolerance float64) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertSample:
			err = assertSample(r, a, tolerance)
		case AssertRange:
			err = assertRange(r, a)
		case AssertOrder:
			err = assertOrder(r, a)
		case AssertLoop:
			err = assertLoop(r, a)
		default:
			err = fmt.Errorf("unknown assertion type: %s", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
