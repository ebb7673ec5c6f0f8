package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipwire/internal/ir"
)

func TestTraceText(t *testing.T) {
	output, err := execute(t, NewTraceCommand, "text",
		filepath.Join(boardsDir, "echo.cue"), "--input", "square:50:32", "--from", "14", "--to", "17")
	require.NoError(t, err)

	assert.Contains(t, output, "Trace: echo, ticks 14..17")
	assert.Contains(t, output, "  tick        in         d         x    direct      echo")
	assert.Contains(t, output, "    15        50         0         0        50         0")
	assert.Contains(t, output, "    16       -50        50       -50       -50       -50")
}

func TestTraceJSON(t *testing.T) {
	output, err := execute(t, NewTraceCommand, "json",
		filepath.Join(boardsDir, "echo.cue"), "--input", "square:50:32",
		"--from", "14", "--to", "17", "--node", "d", "--node", "echo")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 14, resp.Data.From)
	assert.Equal(t, 17, resp.Data.To)
	require.Len(t, resp.Data.Nodes, 2)

	d := resp.Data.Nodes[0]
	assert.Equal(t, ir.NodeID("d"), d.Node)
	assert.Equal(t, "delay", d.Type)
	assert.Equal(t, [][]float64{{0}, {0}, {50}, {50}}, d.Values)

	echo := resp.Data.Nodes[1]
	assert.Equal(t, ir.NodeID("echo"), echo.Node)
	assert.Equal(t, [][]float64{{0}, {0}, {-50}, {-50}}, echo.Values)
}

func TestTraceBadRange(t *testing.T) {
	for _, args := range [][]string{
		{"--from", "5", "--to", "4"},
		{"--from", "-1"},
	} {
		output, err := execute(t, NewTraceCommand, "text",
			append([]string{filepath.Join(boardsDir, "echo.cue")}, args...)...)
		require.Error(t, err, args)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, output, "invalid tick range")
	}
}

func TestTraceUnknownNode(t *testing.T) {
	output, err := execute(t, NewTraceCommand, "text",
		filepath.Join(boardsDir, "echo.cue"), "--node", "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "--node ghost: no such node in echo")
}

func TestTraceLoop(t *testing.T) {
	output, err := execute(t, NewTraceCommand, "text", invalidDir, "--board", "loop")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ loop: combinational loop")
}
