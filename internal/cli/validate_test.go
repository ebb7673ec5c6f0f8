package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidBoards(t *testing.T) {
	output, err := execute(t, NewValidateCommand, "text", boardsDir)
	require.NoError(t, err)

	assert.Contains(t, output, "✓ echo")
	assert.Contains(t, output, "✓ offset")
	assert.Contains(t, output, "✓ counter")
	assert.Contains(t, output, "✓ All 3 board(s) valid")
}

func TestValidateInvalidBoards(t *testing.T) {
	output, err := execute(t, NewValidateCommand, "text", invalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, output, "✗ loop")
	assert.Contains(t, output, "[E210] wires:")
	assert.Contains(t, output, "✗ mystery")
	assert.Contains(t, output, `[E200] nodes[1].type: unknown node type "flux-capacitor"`)
	assert.Contains(t, output, "2 board(s) invalid, 0 load error(s)")
}

func TestValidateInvalidBoardsJSON(t *testing.T) {
	output, err := execute(t, NewValidateCommand, "json", invalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_INVALID", resp.Error.Code)
	assert.False(t, resp.Data.Valid)

	codes := map[string][]string{}
	for _, bv := range resp.Data.Boards {
		assert.False(t, bv.Valid, bv.Board)
		for _, e := range bv.Errors {
			codes[bv.Board] = append(codes[bv.Board], e.Code)
		}
	}
	assert.Equal(t, []string{"E210"}, codes["loop"])
	assert.Equal(t, []string{"E200"}, codes["mystery"])
}

func TestValidateSingleFile(t *testing.T) {
	output, err := execute(t, NewValidateCommand, "json", boardsDir+"/offset.cue")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Boards, 1)
	assert.Equal(t, "offset", resp.Data.Boards[0].Board)
}

func TestValidateMissingPath(t *testing.T) {
	output, err := execute(t, NewValidateCommand, "text", "does-not-exist")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "Error [E005]")
}
