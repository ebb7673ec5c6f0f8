package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipwire/internal/ir"
)

func compileString(t *testing.T, src, path string) (*ir.Board, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return CompileBoard(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileBoardBasic(t *testing.T) {
	b, err := compileString(t, `
		board: offset: {
			nodes: [
				{id: "in", type: "connection-input"},
				{id: "off", type: "offset", params: amount: 50},
				{id: "out", type: "connection-output"},
			]
			wires: [{from: "in:0", to: "off:0"}, {id: "last", from: "off:0", to: "out:0"}]
			constants: "off:1": 10
		}
	`, "board.offset")
	require.NoError(t, err)

	assert.Equal(t, "offset", b.Name)
	require.Len(t, b.Nodes, 3)
	assert.Equal(t, ir.NodeID("off"), b.Nodes[1].ID)
	assert.Equal(t, "offset", b.Nodes[1].Type)
	assert.Equal(t, map[string]float64{"amount": 50}, b.Nodes[1].Params)

	require.Len(t, b.Wires, 2)
	assert.Equal(t, "w1", b.Wires[0].ID)
	assert.Equal(t, ir.Out("in", 0), b.Wires[0].Source)
	assert.Equal(t, ir.In("off", 0), b.Wires[0].Target)
	assert.Equal(t, "last", b.Wires[1].ID)

	assert.Equal(t, ir.PortConstants{"off:1": 10}, b.Constants)
}

func TestCompileBoardAssignsBoundaryIndices(t *testing.T) {
	b, err := compileString(t, `
		board: two: nodes: [
			{id: "a", type: "connection-input"},
			{id: "b", type: "connection-input", index: 0},
			{id: "o", type: "connection-output"},
		]
	`, "board.two")
	require.NoError(t, err)

	assert.Equal(t, ir.At(1), b.Nodes[0].BoundaryIndex)
	assert.Equal(t, ir.At(0), b.Nodes[1].BoundaryIndex)
	assert.Equal(t, ir.At(0), b.Nodes[2].BoundaryIndex)
}

func TestCompileBoardPortOverrides(t *testing.T) {
	b, err := compileString(t, `
		board: wide: nodes: [{id: "m", type: "mix", inputs: 4, outputs: 1}]
	`, "board.wide")
	require.NoError(t, err)
	assert.Equal(t, 4, b.Nodes[0].InputCount)
	assert.Equal(t, 1, b.Nodes[0].OutputCount)
	assert.Nil(t, b.Nodes[0].BoundaryIndex)
}

func TestCompileBoardQuotedName(t *testing.T) {
	b, err := compileString(t, `
		board: "level-3": nodes: []
	`, `board."level-3"`)
	require.NoError(t, err)
	assert.Equal(t, "level-3", b.Name)
}

func TestCompileBoardSchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing nodes", `board: x: {wires: []}`},
		{"unknown field", `board: x: {nodes: [], extra: 1}`},
		{"node without type", `board: x: nodes: [{id: "a"}]`},
		{"empty id", `board: x: nodes: [{id: "", type: "invert"}]`},
		{"string param", `board: x: nodes: [{id: "a", type: "offset", params: amount: "high"}]`},
		{"negative inputs", `board: x: nodes: [{id: "a", type: "mix", inputs: -1}]`},
		{"malformed wire", `board: x: {nodes: [], wires: [{from: "a", to: "b:0"}]}`},
		{"string constant", `board: x: {nodes: [], constants: "a:0": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileString(t, tt.src, "board.x")
			require.Error(t, err)
		})
	}
}

func TestCompileBoardErrorHasPosition(t *testing.T) {
	v := cuecontext.New().CompileString(`board: x: {
	nodes: [{id: "a", type: 3}]
}`, cue.Filename("bad.cue"))
	require.NoError(t, v.Err())

	_, err := CompileBoard(v.LookupPath(cue.ParsePath("board.x")))
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Pos.IsValid())
	assert.Contains(t, ce.Error(), "bad.cue")
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "wires.from", Message: "bad ref"}
	assert.Equal(t, "wires.from: bad ref", err.Error())
}
