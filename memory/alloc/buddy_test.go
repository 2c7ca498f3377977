package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memsim/memory/placement"
)

// TestBuddy_Scenario: the whole space is taken, so even a 1-cell request
// fails, in both modes.
func TestBuddy_Scenario(t *testing.T) {
	for _, legacy := range []bool{false, true} {
		var opts []BuddyOption
		if legacy {
			opts = append(opts, WithLegacyBuddy())
		}
		b, err := NewBuddy(16, opts...)
		require.NoError(t, err)

		require.NoError(t, b.Allocate(1, 16, placement.FirstFit))
		err = b.Allocate(2, 1, placement.BestFit)
		assert.ErrorIs(t, err, ErrNoFit, "legacy=%v", legacy)
		assertInvariants(t, b)
	}
}

func TestBuddy_SplitsLargerBlock(t *testing.T) {
	b, err := NewBuddy(16)
	require.NoError(t, err)

	require.NoError(t, b.Allocate(1, 3, placement.FirstFit))
	assert.Equal(t, cellRange(0, 3), ownedBy(b.Space(), 1))
	assert.Equal(t, map[int][]int{4: {4}, 8: {8}}, b.FreeBlocks())
	assert.Equal(t, 1, b.InternalWaste())

	require.NoError(t, b.Allocate(2, 4, placement.FirstFit))
	assert.Equal(t, cellRange(4, 8), ownedBy(b.Space(), 2))
	assert.Equal(t, map[int][]int{8: {8}}, b.FreeBlocks())

	require.NoError(t, b.Allocate(3, 1, placement.FirstFit))
	assert.Equal(t, []int{8}, ownedBy(b.Space(), 3))
	assert.Equal(t, map[int][]int{1: {9}, 2: {10}, 4: {12}}, b.FreeBlocks())
	assertInvariants(t, b)
}

func TestBuddy_MergesOnFree(t *testing.T) {
	b, err := NewBuddy(16)
	require.NoError(t, err)

	require.NoError(t, b.Allocate(1, 4, placement.FirstFit))
	require.NoError(t, b.Allocate(2, 4, placement.FirstFit))
	require.NoError(t, b.Allocate(3, 8, placement.FirstFit))

	require.NoError(t, b.Deallocate(1))
	assert.Equal(t, map[int][]int{4: {0}}, b.FreeBlocks(), "buddy at 4 still held")

	require.NoError(t, b.Deallocate(2))
	assert.Equal(t, map[int][]int{8: {0}}, b.FreeBlocks())

	require.NoError(t, b.Deallocate(3))
	assert.Equal(t, map[int][]int{16: {0}}, b.FreeBlocks())
	assertAllFree(t, b)

	require.NoError(t, b.Allocate(4, 16, placement.FirstFit), "whole space available again")
}

func TestBuddy_LegacyDoublesOnce(t *testing.T) {
	b, err := NewBuddy(16, WithLegacyBuddy())
	require.NoError(t, err)

	// 5 rounds to 8, no 8 block, doubling finds the 16 block.
	require.NoError(t, b.Allocate(1, 5, placement.FirstFit))
	assert.Equal(t, cellRange(0, 5), ownedBy(b.Space(), 1))
	assert.Empty(t, b.FreeBlocks())

	// Freed span re-registered under its requested length, not 16.
	require.NoError(t, b.Deallocate(1))
	assert.Equal(t, map[int][]int{5: {0}}, b.FreeBlocks())

	// 5 rounds to 8 again; neither 8 nor 16 is registered.
	assert.ErrorIs(t, b.Allocate(2, 5, placement.FirstFit), ErrNoFit)
	assertAllFree(t, b)
}

func TestBuddy_LegacyNoSplit(t *testing.T) {
	b, err := NewBuddy(64, WithLegacyBuddy())
	require.NoError(t, err)

	// 2 rounds to 2, doubling gives 4; only a 64 block exists.
	assert.ErrorIs(t, b.Allocate(1, 2, placement.FirstFit), ErrNoFit)
	assertAllFree(t, b)
}

func TestBuddy_Misconfigured(t *testing.T) {
	for _, size := range []int{0, -4, 12, 100} {
		_, err := NewBuddy(size)
		assert.ErrorIs(t, err, ErrMisconfigured, "size %d", size)
	}
}

func TestNextPow2(t *testing.T) {
	tests := map[int]int{1: 1, 2: 2, 3: 4, 5: 8, 8: 8, 9: 16, 1000: 1024}
	for in, want := range tests {
		assert.Equal(t, want, nextPow2(in), "nextPow2(%d)", in)
	}
}
