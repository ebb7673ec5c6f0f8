package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipwire/internal/queryir"
)

func TestCompileSelectAll(t *testing.T) {
	sql, params, err := Compile(queryir.Select{From: queryir.TableRuns, Columns: []string{"id", "seq"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, seq FROM runs ORDER BY seq ASC, id COLLATE BINARY ASC", sql)
	assert.Empty(t, params)
}

func TestCompileFilters(t *testing.T) {
	tests := []struct {
		name       string
		filter     queryir.Predicate
		wantWhere  string
		wantParams []any
	}{
		{
			name:       "equals",
			filter:     queryir.Equals{Field: "board_hash", Value: "abc"},
			wantWhere:  "board_hash = ?",
			wantParams: []any{"abc"},
		},
		{
			name:       "equals pointer with int",
			filter:     &queryir.Equals{Field: "cycle_count", Value: 64},
			wantWhere:  "cycle_count = ?",
			wantParams: []any{int64(64)},
		},
		{
			name:       "at least",
			filter:     queryir.AtLeast{Field: "seq", Value: 5},
			wantWhere:  "seq >= ?",
			wantParams: []any{int64(5)},
		},
		{
			name: "and",
			filter: queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: "status", Value: "error"},
				&queryir.Equals{Field: "error_code", Value: "COMBINATIONAL_CYCLE"},
				queryir.AtLeast{Field: "seq", Value: 2},
			}},
			wantWhere:  "status = ? AND error_code = ? AND seq >= ?",
			wantParams: []any{"error", "COMBINATIONAL_CYCLE", int64(2)},
		},
		{
			name:      "empty and",
			filter:    queryir.And{},
			wantWhere: "1 = 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := Compile(&queryir.Select{
				From:    queryir.TableRuns,
				Columns: []string{"id"},
				Filter:  tt.filter,
			})
			require.NoError(t, err)
			assert.Equal(t, "SELECT id FROM runs WHERE "+tt.wantWhere+" ORDER BY seq ASC, id COLLATE BINARY ASC", sql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestCompileNeverInterpolates(t *testing.T) {
	sql, params, err := Compile(queryir.Select{
		From:    queryir.TableBoards,
		Columns: []string{"hash"},
		Filter:  queryir.Equals{Field: "name", Value: "x'; DROP TABLE runs; --"},
	})
	require.NoError(t, err)
	assert.NotContains(t, sql, "DROP")
	assert.Equal(t, "SELECT hash FROM boards WHERE name = ? ORDER BY hash COLLATE BINARY ASC", sql)
	assert.Equal(t, []any{"x'; DROP TABLE runs; --"}, params)
}

func TestCompileRejectsInvalidQueries(t *testing.T) {
	_, _, err := Compile(queryir.Select{From: queryir.TableRuns, Columns: []string{"id; DELETE FROM runs"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query")

	_, _, err = Compile(nil)
	require.Error(t, err)
}
