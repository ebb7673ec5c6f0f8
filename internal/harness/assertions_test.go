package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipwire/internal/ir"
)

func ranResult() *Result {
	r := NewResult("unit")
	r.Order = []ir.NodeID{"in", "d", "x", "out"}
	r.Outputs = [][]float64{{0, 10}, {5, -10}, {10, 30}}
	return r
}

func rejectedResult() *Result {
	r := NewResult("unit")
	r.ErrorCode = "COMBINATIONAL_CYCLE"
	r.Loops = [][]ir.NodeID{{"a", "b"}, {"p"}}
	return r
}

func TestAssertSample(t *testing.T) {
	r := ranResult()

	assert.NoError(t, assertSample(r, Assertion{Type: AssertSample, Output: 1, Tick: 2, Value: 30}, 0))
	assert.NoError(t, assertSample(r, Assertion{Type: AssertSample, Output: 0, Tick: 1, Value: 4}, 1))

	err := assertSample(r, Assertion{Type: AssertSample, Output: 0, Tick: 1, Value: 4}, 0.5)
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "5", ae.Actual)
	assert.Contains(t, err.Error(), "Evaluation order: in d x out")

	err = assertSample(r, Assertion{Type: AssertSample, Tick: 3}, 0)
	assert.ErrorContains(t, err, "only 3 ticks")

	err = assertSample(r, Assertion{Type: AssertSample, Output: 2}, 0)
	assert.ErrorContains(t, err, "only 2 outputs")

	err = assertSample(rejectedResult(), Assertion{Type: AssertSample}, 0)
	assert.ErrorContains(t, err, "board rejected with COMBINATIONAL_CYCLE")
}

func TestAssertRange(t *testing.T) {
	r := ranResult()

	assert.NoError(t, assertRange(r, Assertion{Type: AssertRange, Output: 0, Min: 0, Max: 10}))

	err := assertRange(r, Assertion{Type: AssertRange, Output: 1, Min: -10, Max: 20})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "30 at tick 2")

	err = assertRange(rejectedResult(), Assertion{Type: AssertRange, Min: -1, Max: 1})
	assert.ErrorContains(t, err, "board rejected")
}

func TestAssertOrder(t *testing.T) {
	r := ranResult()

	assert.NoError(t, assertOrder(r, Assertion{Type: AssertOrder, Nodes: []string{"in", "x"}}))
	assert.NoError(t, assertOrder(r, Assertion{Type: AssertOrder, Nodes: []string{"in", "d", "out"}}))

	err := assertOrder(r, Assertion{Type: AssertOrder, Nodes: []string{"x", "d"}})
	assert.ErrorContains(t, err, "x (pos 2) should be before d (pos 1)")

	err = assertOrder(r, Assertion{Type: AssertOrder, Nodes: []string{"in", "ghost"}})
	assert.ErrorContains(t, err, "missing node: ghost")
}

func TestAssertLoop(t *testing.T) {
	r := rejectedResult()

	assert.NoError(t, assertLoop(r, Assertion{Type: AssertLoop, Nodes: []string{"b", "a"}}))
	assert.NoError(t, assertLoop(r, Assertion{Type: AssertLoop, Nodes: []string{"p"}}))

	err := assertLoop(r, Assertion{Type: AssertLoop, Nodes: []string{"a"}})
	assert.ErrorContains(t, err, "Expected: loop [a]")

	err = assertLoop(ranResult(), Assertion{Type: AssertLoop, Nodes: []string{"a", "b"}})
	assert.Error(t, err)
}

func TestEvaluateAssertions_CollectsEveryFailure(t *testing.T) {
	r := ranResult()
	msgs := EvaluateAssertions(r, []Assertion{
		{Type: AssertSample, Output: 0, Tick: 0, Value: 0},
		{Type: AssertSample, Output: 0, Tick: 0, Value: 99},
		{Type: AssertOrder, Nodes: []string{"out", "in"}},
		{Type: "vibes"},
	}, 0)

	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "Assertion failed: sample")
	assert.Contains(t, msgs[1], "Assertion failed: order")
	assert.Equal(t, "unknown assertion type: vibes", msgs[2])
}

func TestResult_AddError(t *testing.T) {
	r := NewResult("unit")
	assert.True(t, r.Pass)
	assert.Empty(t, r.Errors)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
