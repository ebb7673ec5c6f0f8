package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipwire/internal/compiler"
	"github.com/roach88/chipwire/internal/ir"
)

func TestCompileValidBoards(t *testing.T) {
	output, err := execute(t, NewCompileCommand, "text", boardsDir)
	require.NoError(t, err)

	assert.Contains(t, output, "✓ Compiled 3 board(s)")
	assert.Contains(t, output, "  echo: 5 node(s), 4 wire(s)")
	assert.Contains(t, output, "  offset: 3 node(s), 2 wire(s)")
	assert.Contains(t, output, "  counter: 4 node(s), 4 wire(s)")
}

func TestCompileValidBoardsJSON(t *testing.T) {
	output, err := execute(t, NewCompileCommand, "json", boardsDir, "--board", "echo")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Boards, 1)

	compiled := resp.Data.Boards[0]
	assert.Equal(t, "echo", compiled.Name)
	assert.Len(t, compiled.Hash, 64)

	b, err := LoadBoard(boardsDir, "echo")
	require.NoError(t, err)
	want, err := ir.BoardHash(b)
	require.NoError(t, err)
	assert.Equal(t, want, compiled.Hash)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "echo.json")

	output, err := execute(t, NewCompileCommand, "text", boardsDir, "--board", "echo", "-o", outputFile)
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote canonical board to "+outputFile)

	doc, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	// The written document compiles back to the same board.
	rebuilt, err := compiler.CompileDocument(doc)
	require.NoError(t, err)
	original, err := LoadBoard(boardsDir, "echo")
	require.NoError(t, err)

	wantHash, err := ir.BoardHash(original)
	require.NoError(t, err)
	gotHash, err := ir.BoardHash(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, wantHash, gotHash)
	assert.Equal(t, "echo", rebuilt.Name)
}

func TestCompileOutputNeedsOneBoard(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "all.json")

	output, err := execute(t, NewCompileCommand, "text", boardsDir, "-o", outputFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "Error [E008]")
	assert.Contains(t, output, "found 3")

	_, statErr := os.Stat(outputFile)
	assert.True(t, os.IsNotExist(statErr), "nothing written")
}

func TestCompileUnknownBoard(t *testing.T) {
	output, err := execute(t, NewCompileCommand, "text", boardsDir, "--board", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, `board "nope" not found`)
}

func TestCompileMissingPath(t *testing.T) {
	output, err := execute(t, NewCompileCommand, "json", filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestCompileEmptyDirectory(t *testing.T) {
	output, err := execute(t, NewCompileCommand, "text", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, output, "Error [E003]")
}

func TestCompileSchemaError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
board: broken: {
	nodes: [{id: "a", type: "invert"}]
	wires: [{from: "a", to: "a:0"}]
}
`), 0o644))

	output, err := execute(t, NewCompileCommand, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "✗ Compilation failed")
}

func TestCompileSchemaErrorJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`board: broken: {nodes: [{id: "a"}]}`), 0o644))

	output, err := execute(t, NewCompileCommand, "json", path)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   []CLIError `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, resp.Data[0].Code, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)
}
