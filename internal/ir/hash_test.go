package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBoard() *Board {
	return &Board{
		Nodes: []*NodeInstance{
			{ID: "in", Type: TypeConnectionInput, BoundaryIndex: At(0)},
			{ID: "inv", Type: "invert"},
			{ID: "out", Type: TypeConnectionOutput, BoundaryIndex: At(0)},
		},
		Wires: []Wire{
			{ID: "w0", Source: Out("in", 0), Target: In("inv", 0)},
			{ID: "w1", Source: Out("inv", 0), Target: In("out", 0)},
		},
	}
}

func TestBoardHash_Stable(t *testing.T) {
	h1, err := BoardHash(sampleBoard())
	require.NoError(t, err)
	h2, err := BoardHash(sampleBoard())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestBoardHash_SensitiveToParams(t *testing.T) {
	a := sampleBoard()
	b := sampleBoard()
	b.Nodes[1].Params = map[string]float64{"unused": 1}

	assert.NotEqual(t, MustBoardHash(a), MustBoardHash(b))
}

func TestBoardHash_SensitiveToNodeOrder(t *testing.T) {
	a := sampleBoard()
	b := sampleBoard()
	b.Nodes[0], b.Nodes[2] = b.Nodes[2], b.Nodes[0]

	assert.NotEqual(t, MustBoardHash(a), MustBoardHash(b))
}

func TestOutputsHash_DomainSeparated(t *testing.T) {
	values := [][]float64{{1, 2}, {3, 4}}
	h, err := OutputsHash(values)
	require.NoError(t, err)

	canonical, err := MarshalCanonical(values)
	require.NoError(t, err)
	assert.NotEqual(t, hashWithDomain(DomainBoard, canonical), h)
	assert.Equal(t, hashWithDomain(DomainOutputs, canonical), h)
}
