package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/roach88/chipwire/internal/ir"
)

const twoBoards = `package puzzles

board: pass: {
	nodes: [
		{id: "in", type: "connection-input"},
		{id: "out", type: "connection-output"},
	]
	wires: [{from: "in:0", to: "out:0"}]
}

board: inverted: {
	nodes: [
		{id: "in", type: "connection-input"},
		{id: "x", type: "invert"},
		{id: "out", type: "connection-output"},
	]
	wires: [{from: "in:0", to: "x:0"}, {from: "x:0", to: "out:0"}]
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBoardsFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "boards.cue", twoBoards)

	res, err := LoadBoards(path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FileCount)
	require.Len(t, res.Boards, 2)
	assert.Equal(t, "pass", res.Boards[0].Name)
	assert.Equal(t, "inverted", res.Boards[1].Name)

	b, err := res.Board("inverted")
	require.NoError(t, err)
	assert.Len(t, b.Nodes, 3)

	_, err = res.Board("")
	assert.ErrorContains(t, err, "pick one")
	_, err = res.Board("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestLoadBoardsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cue", "package puzzles\n\nboard: one: nodes: [{id: \"c\", type: \"constant\"}]\n")
	writeFile(t, dir, "b.cue", "package puzzles\n\nboard: two: nodes: []\n")

	res, err := LoadBoards(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, res.FileCount)
	assert.Len(t, res.Boards, 2)
}

func TestLoadBoardsSingleBoardDefault(t *testing.T) {
	path := writeFile(t, t.TempDir(), "one.cue", "board: solo: nodes: []\n")

	res, err := LoadBoards(path)
	require.NoError(t, err)
	b, err := res.Board("")
	require.NoError(t, err)
	assert.Equal(t, "solo", b.Name)
}

func TestLoadBoardsCollectsErrors(t *testing.T) {
	path := writeFile(t, t.TempDir(), "mixed.cue", `
board: good: nodes: []
board: bad1: nodes: [{id: "a"}]
board: bad2: {nodes: [], junk: true}
`)

	res, err := LoadBoards(path)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	require.Len(t, res.Boards, 1)
	assert.Equal(t, "good", res.Boards[0].Name)
}

func TestLoadBoardsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadBoards(filepath.Join(dir, "nope.cue"))
	assert.Error(t, err)

	_, err = LoadBoards(dir)
	assert.ErrorContains(t, err, "no CUE files")

	_, err = LoadBoards(writeFile(t, dir, "empty.cue", "other: 1\n"))
	assert.ErrorContains(t, err, "no boards")

	_, err = LoadBoards(writeFile(t, dir, "syntax.cue", "board: {\n"))
	assert.Error(t, err)
}

func TestFindCUEFilesSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.cue", "")
	writeFile(t, dir, "a.cue", "")
	writeFile(t, dir, "notes.txt", "")

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.cue"), filepath.Join(dir, "b.cue")}, files)
}

func TestCompileDocumentRoundTrip(t *testing.T) {
	res, err := LoadBoards(writeFile(t, t.TempDir(), "boards.cue", twoBoards))
	require.NoError(t, err)
	b, err := res.Board("inverted")
	require.NoError(t, err)
	b.Constants[ir.ConstantKey("x", 0)] = 25
	b.Nodes[1].Params = map[string]float64{"amount": 12.5}

	doc, err := ir.MarshalCanonical(b.CanonicalMap())
	require.NoError(t, err)

	back, err := CompileDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "inverted", back.Name)
	assert.Equal(t, ir.MustBoardHash(b), ir.MustBoardHash(back))
}

func TestCompileDocumentRejectsGarbage(t *testing.T) {
	_, err := CompileDocument([]byte(`{"nodes": "nope"}`))
	assert.Error(t, err)
}
