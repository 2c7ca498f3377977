package sim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/alloc"
	"github.com/joshuapare/memsim/memory/placement"
	"github.com/joshuapare/memsim/memory/verify"
)

func TestTally(t *testing.T) {
	var tl Tally
	assert.Zero(t, tl.Efficiency())

	tl.Record(true)
	tl.Record(false)
	tl.Record(true)
	tl.Record(true)
	assert.Equal(t, Tally{Attempted: 4, Succeeded: 3}, tl)
	assert.InDelta(t, 75, tl.Efficiency(), 1e-9)
}

func TestSession_TalliesAllocations(t *testing.T) {
	s, err := NewSession(Config{Variant: alloc.KindFixed, TotalSize: 100, PartitionSize: 20})
	require.NoError(t, err)

	require.NoError(t, s.Allocate(1, 10, placement.FirstFit))
	require.ErrorIs(t, s.Allocate(2, 25, placement.FirstFit), alloc.ErrCapacityExceeded)
	require.NoError(t, s.Deallocate(1))
	require.ErrorIs(t, s.Deallocate(1), alloc.ErrUnknownProcess)

	assert.Equal(t, Tally{Attempted: 2, Succeeded: 1}, s.Tally())
	assert.Equal(t, 1, s.Stats().FreeFailed)
	assert.Equal(t, "fixed(100/20)", s.Label())
	assert.InDelta(t, 100, s.Fragmentation(), 1e-9)
	assert.Equal(t, 100, s.Report().LargestFreeRun)
	assert.Zero(t, s.InternalWaste())
}

func TestSession_Cells(t *testing.T) {
	s, err := NewSession(Config{Variant: alloc.KindDynamic, TotalSize: 10})
	require.NoError(t, err)
	require.NoError(t, s.Allocate(3, 4, placement.FirstFit))

	cells := s.Cells()
	require.Len(t, cells, 10)
	for i, c := range cells {
		if i < 4 {
			assert.Equal(t, memory.Cell{Owner: 3, Used: true}, c, "cell %d", i)
		} else {
			assert.True(t, c.Free(), "cell %d", i)
		}
	}
	assert.Contains(t, s.Dump(), "[0]: Process 3")
}

func TestSession_ConcurrentUse(t *testing.T) {
	s, err := NewSession(Config{Variant: alloc.KindDynamic, TotalSize: 1024})
	require.NoError(t, err)

	const workers = 8
	const perWorker = 16

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				pid := memory.PID(w*perWorker + i + 1)
				if s.Allocate(pid, 4, placement.Strategies[i%3]) == nil && i%2 == 0 {
					_ = s.Deallocate(pid)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, s.Tally().Attempted)
	assert.Equal(t, workers*perWorker, s.Tally().Succeeded)
	s.With(func(a alloc.Allocator) {
		require.NoError(t, verify.All(a.Space()))
		assert.Equal(t, workers*perWorker/2*4, a.Space().OwnedCells())
	})
}

func TestComparison(t *testing.T) {
	c := NewComparison()
	c.Record("dynamic(10)", true)
	c.Record("fixed(100/20)", false)
	c.Record("dynamic(10)", false)
	c.Add("fixed(100/20)", Tally{Attempted: 3, Succeeded: 3})

	rows := c.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "dynamic(10)", rows[0].Label)
	assert.Equal(t, Tally{Attempted: 2, Succeeded: 1}, rows[0].Tally)
	assert.InDelta(t, 50, rows[0].Efficiency, 1e-9)
	assert.Equal(t, "fixed(100/20)", rows[1].Label)
	assert.Equal(t, Tally{Attempted: 4, Succeeded: 3}, rows[1].Tally)

	c.Reset()
	assert.Empty(t, c.Rows())
}

func TestSession_Verify(t *testing.T) {
	s, err := NewSession(Config{Variant: alloc.KindPaged, TotalSize: 16, PageSize: 4})
	require.NoError(t, err)
	require.NoError(t, s.Allocate(1, 5, placement.BestFit))
	assert.NoError(t, s.Verify())
}
