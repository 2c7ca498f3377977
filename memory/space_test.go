package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpace_AllFree(t *testing.T) {
	s := NewSpace(8)

	assert.Equal(t, 8, s.Len())
	assert.Equal(t, 8, s.FreeCells())
	assert.Equal(t, 0, s.OwnedCells())
	assert.True(t, s.IsRangeFree(0, 8))
	assert.Empty(t, s.Owners())
}

func TestMark_RecordsRangeAndOwnsCells(t *testing.T) {
	s := NewSpace(10)
	s.Mark(7, 2, 5)

	for i := range 10 {
		if i >= 2 && i < 5 {
			assert.Equal(t, Cell{Owner: 7, Used: true}, s.Cell(i), "cell %d", i)
		} else {
			assert.True(t, s.IsFree(i), "cell %d", i)
		}
	}
	assert.Equal(t, []Range{{2, 5}}, s.RangesOf(7))
	assert.Equal(t, 3, s.OwnedCells())
}

func TestMark_RepeatExtendsEntry(t *testing.T) {
	s := NewSpace(10)
	s.Mark(1, 0, 2)
	s.Mark(1, 6, 8)

	assert.Equal(t, []Range{{0, 2}, {6, 8}}, s.RangesOf(1))
	assert.Equal(t, []PID{1}, s.Owners())
}

func TestMark_OutOfRangePanics(t *testing.T) {
	s := NewSpace(4)
	assert.Panics(t, func() { s.Mark(1, 2, 5) })
	assert.Panics(t, func() { s.Clear(-1, 2) })
}

func TestIsRangeFree(t *testing.T) {
	s := NewSpace(6)
	s.Mark(1, 3, 4)

	tests := []struct {
		name       string
		start, end int
		want       bool
	}{
		{"prefix", 0, 3, true},
		{"covers owned", 2, 5, false},
		{"suffix", 4, 6, true},
		{"empty", 2, 2, true},
		{"past end", 4, 7, false},
		{"negative", -1, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsRangeFree(tt.start, tt.end))
		})
	}
}

func TestRelease(t *testing.T) {
	s := NewSpace(8)
	s.Mark(1, 0, 2)
	s.Mark(2, 2, 4)
	s.Mark(1, 5, 8)

	ranges, ok := s.Release(1)
	require.True(t, ok)
	assert.Equal(t, []Range{{0, 2}, {5, 8}}, ranges)
	assert.True(t, s.IsRangeFree(0, 2))
	assert.True(t, s.IsRangeFree(5, 8))
	assert.False(t, s.IsRangeFree(2, 4))
	assert.Equal(t, []PID{2}, s.Owners())

	_, ok = s.Release(1)
	assert.False(t, ok, "second release of the same pid")
}

func TestFreeRuns(t *testing.T) {
	s := NewSpace(10)
	assert.Equal(t, []Range{{0, 10}}, s.FreeRuns())

	s.Mark(1, 0, 2)
	s.Mark(2, 4, 5)
	s.Mark(3, 9, 10)
	assert.Equal(t, []Range{{2, 4}, {5, 9}}, s.FreeRuns())

	s.Mark(4, 2, 4)
	s.Mark(4, 5, 9)
	assert.Empty(t, s.FreeRuns())
}

func TestDump(t *testing.T) {
	s := NewSpace(3)
	s.Mark(42, 1, 2)

	want := "Memory Allocation:\n[0]: Free\n[1]: Process 42\n[2]: Free\n"
	assert.Equal(t, want, s.Dump())
}

func TestRange(t *testing.T) {
	r := Range{Start: 2, End: 5}
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(5))
	assert.True(t, r.Overlaps(Range{4, 9}))
	assert.False(t, r.Overlaps(Range{5, 9}))
	assert.Equal(t, "[2,5)", r.String())
}
