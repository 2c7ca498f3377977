package sim

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/alloc"
	"github.com/joshuapare/memsim/memory/placement"
)

const dynamicScenario = `
name: dynamic-best-fit
variants:
  - {variant: dynamic, total_size: 10}
steps:
  - {op: alloc, pid: 1, size: 4}
  - {op: alloc, pid: 2, size: 4, strategy: first_fit}
  - {op: free, pid: 1}
  - {op: alloc, pid: 3, size: 3, strategy: best_fit}
`

func TestParseScenario(t *testing.T) {
	sc, err := ParseScenario(strings.NewReader(dynamicScenario))
	require.NoError(t, err)

	assert.Equal(t, "dynamic-best-fit", sc.Name)
	require.Len(t, sc.Variants, 1)
	assert.Equal(t, alloc.KindDynamic, sc.Variants[0].Variant)
	require.Len(t, sc.Steps, 4)
	assert.Equal(t, Step{Op: OpAlloc, PID: 1, Size: 4, Strategy: placement.FirstFit}, sc.Steps[0])
	assert.Equal(t, Step{Op: OpFree, PID: 1}, sc.Steps[2])
	assert.Equal(t, placement.BestFit, sc.Steps[3].Strategy)
}

func TestParseScenario_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"unknown key", "name: x\ncolour: red\nvariants: [{variant: dynamic, total_size: 4}]\n"},
		{"no variants", "name: x\nsteps: [{op: free, pid: 1}]\n"},
		{"unknown variant", "variants: [{variant: slab, total_size: 4}]\n"},
		{"unknown strategy", "variants: [{variant: dynamic, total_size: 4}]\nsteps: [{op: alloc, pid: 1, size: 1, strategy: worst_fit}]\n"},
		{"unknown op", "variants: [{variant: dynamic, total_size: 4}]\nsteps: [{op: compact, pid: 1}]\n"},
		{"misconfigured variant", "variants: [{variant: buddy, total_size: 12}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestRun_ReferenceScenarios(t *testing.T) {
	doc := `
name: reference
variants:
  - {variant: fixed, total_size: 100, partition_size: 20}
  - {variant: paging, total_size: 16, page_size: 4}
  - {variant: buddy, total_size: 16, legacy_buddy: true}
  - {variant: unequal, total_size: 100, partition_sizes: "10,20,30,40"}
steps:
  - {op: alloc, pid: 1, size: 10}
  - {op: alloc, pid: 2, size: 25}
`
	sc, err := ParseScenario(strings.NewReader(doc))
	require.NoError(t, err)

	cmp := NewComparison()
	results, err := Run(context.Background(), sc, cmp)
	require.NoError(t, err)
	require.Len(t, results, 4)

	fixed := results[0]
	assert.Equal(t, "fixed(100/20)", fixed.Label)
	assert.True(t, fixed.Steps[0].OK)
	assert.False(t, fixed.Steps[1].OK)
	assert.ErrorIs(t, fixed.Steps[1].Err, alloc.ErrCapacityExceeded)
	assert.NotEmpty(t, fixed.Steps[1].Error)
	assert.Equal(t, 10, fixed.InternalWaste)
	assert.Equal(t, Tally{Attempted: 2, Succeeded: 1}, fixed.Tally)

	// 10 cells take three 4-cell pages; 25 cells need more pages than exist.
	paged := results[1]
	assert.True(t, paged.Steps[0].OK)
	assert.ErrorIs(t, paged.Steps[1].Err, alloc.ErrCapacityExceeded)
	assert.Equal(t, 12, paged.Report.TotalCells-paged.Report.FreeCells)

	buddy := results[2]
	assert.True(t, buddy.Steps[0].OK)
	assert.False(t, buddy.Steps[1].OK)

	unequal := results[3]
	assert.Equal(t, "unequal(100:10,20,30,40)", unequal.Label)
	assert.True(t, unequal.Steps[0].OK)
	assert.True(t, unequal.Steps[1].OK)
	assert.Equal(t, Tally{Attempted: 2, Succeeded: 2}, unequal.Tally)

	rows := cmp.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, "buddy-legacy(16)", rows[2].Label)
	assert.InDelta(t, 50, rows[2].Efficiency, 1e-9)
}

func TestRun_DynamicBestFit(t *testing.T) {
	sc, err := ParseScenario(strings.NewReader(dynamicScenario))
	require.NoError(t, err)

	results, err := Run(context.Background(), sc, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Empty(t, results[0].Violation)
	for _, sr := range results[0].Steps {
		assert.True(t, sr.OK, "step %d (%s): %v", sr.Index, sr.Step, sr.Err)
	}
	results[0].Session.With(func(a alloc.Allocator) {
		assert.Equal(t, []memory.Range{{Start: 0, End: 3}}, a.Space().RangesOf(3))
	})
}

func TestRun_Cancelled(t *testing.T) {
	sc, err := ParseScenario(strings.NewReader(dynamicScenario))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, sc, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dynamicScenario), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, sc.Steps, 4)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
