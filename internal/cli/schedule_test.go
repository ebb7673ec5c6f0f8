package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipwire/internal/ir"
)

func TestScheduleText(t *testing.T) {
	output, err := execute(t, NewScheduleCommand, "text", filepath.Join(boardsDir, "echo.cue"))
	require.NoError(t, err)

	assert.Contains(t, output, "✓ echo: 5 node(s)")
	assert.Contains(t, output, "   1. in (connection-input)")
	assert.Contains(t, output, "   2. d (delay)")
	assert.Contains(t, output, "   5. echo (connection-output)")
	assert.Contains(t, output, "Deferred wires (read last tick's value):")
	assert.Contains(t, output, "  w2: d:0 → x:0")
}

func TestScheduleJSON(t *testing.T) {
	output, err := execute(t, NewScheduleCommand, "json", boardsDir, "--board", "echo")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   ScheduleResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "echo", resp.Data.Board)
	assert.Equal(t, []ir.NodeID{"in", "d", "x", "direct", "echo"}, resp.Data.Order)
	assert.Equal(t, []string{"w2"}, resp.Data.Deferred)
}

func TestScheduleNeedsBoardName(t *testing.T) {
	output, err := execute(t, NewScheduleCommand, "text", boardsDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "Error [E008]")
	assert.Contains(t, output, "pick one by name")
}

func TestScheduleLoop(t *testing.T) {
	output, err := execute(t, NewScheduleCommand, "text", invalidDir, "--board", "loop")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, output, "✗ loop: combinational loop")
	assert.Contains(t, output, "  loop: a → b → a")
	assert.Contains(t, output, "  blocked: out")
	assert.Contains(t, output, "Put a delay somewhere in each loop.")
}

func TestScheduleLoopJSON(t *testing.T) {
	output, err := execute(t, NewScheduleCommand, "json", invalidDir, "--board", "loop")
	require.Error(t, err)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string      `json:"code"`
			Details LoopDetails `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "COMBINATIONAL_CYCLE", resp.Error.Code)
	assert.Equal(t, "loop", resp.Error.Details.Board)
	assert.Equal(t, [][]ir.NodeID{{"a", "b"}}, resp.Error.Details.Loops)
	assert.ElementsMatch(t, []ir.NodeID{"a", "b", "out"}, resp.Error.Details.Nodes)
}

func TestScheduleUnknownType(t *testing.T) {
	output, err := execute(t, NewScheduleCommand, "json", invalidDir, "--board", "mystery")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "UNKNOWN_NODE_TYPE", resp.Error.Code)
}
