package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/verify"
)

// newTestAllocators builds one allocator of every variant over a 64-cell space.
func newTestAllocators(t testing.TB) map[string]Allocator {
	t.Helper()

	fixed, err := NewFixed(64, 8)
	require.NoError(t, err)
	unequal, err := NewUnequal(64, []int{4, 8, 12, 16, 24})
	require.NoError(t, err)
	dynamic, err := NewDynamic(64)
	require.NoError(t, err)
	buddy, err := NewBuddy(64)
	require.NoError(t, err)
	legacy, err := NewBuddy(64, WithLegacyBuddy())
	require.NoError(t, err)
	paged, err := NewPaged(64, 4)
	require.NoError(t, err)

	return map[string]Allocator{
		"fixed":        fixed,
		"unequal":      unequal,
		"dynamic":      dynamic,
		"buddy":        buddy,
		"buddy-legacy": legacy,
		"paged":        paged,
	}
}

// assertInvariants fails the test if the space violates any invariant.
func assertInvariants(t testing.TB, a Allocator) {
	t.Helper()
	require.NoError(t, verify.All(a.Space()))
}

// assertAllFree fails the test unless every cell is free and the table is empty.
func assertAllFree(t testing.TB, a Allocator) {
	t.Helper()
	s := a.Space()
	require.Equal(t, s.Len(), s.FreeCells(), "all cells should be free")
	require.Empty(t, s.Owners(), "process table should be empty")
}

// ownedBy returns the cells owned by pid.
func ownedBy(s *memory.Space, pid memory.PID) []int {
	var cells []int
	for i := range s.Len() {
		if c := s.Cell(i); c.Used && c.Owner == pid {
			cells = append(cells, i)
		}
	}
	return cells
}

// cellRange returns the integers in [start, end).
func cellRange(start, end int) []int {
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}
