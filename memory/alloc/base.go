package alloc

import (
	"fmt"

	"github.com/joshuapare/memsim/internal/logger"
	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/frag"
	"github.com/joshuapare/memsim/memory/placement"
)

// base carries the state and bookkeeping common to every variant.
type base struct {
	kind   Kind
	space  *memory.Space
	policy placement.Policy
	stats  Stats
	waste  map[memory.PID]int
}

func newBase(kind Kind, totalSize int) base {
	return base{
		kind:  kind,
		space: memory.NewSpace(totalSize),
		waste: make(map[memory.PID]int),
	}
}

func (b *base) Kind() Kind             { return b.kind }
func (b *base) Space() *memory.Space   { return b.space }
func (b *base) Stats() Stats           { return b.stats }
func (b *base) Dump() string           { return b.space.Dump() }
func (b *base) Fragmentation() float64 { return frag.Legacy(b.space) }

func (b *base) InternalWaste() int {
	total := 0
	for _, w := range b.waste {
		total += w
	}
	return total
}

// begin counts the call and rejects malformed requests.
func (b *base) begin(pid memory.PID, size int, s placement.Strategy) error {
	b.stats.AllocCalls++
	if size <= 0 {
		return b.fail(pid, size, s, fmt.Errorf("%w: got %d", ErrInvalidSize, size))
	}
	if !s.Valid() {
		return b.fail(pid, size, s, fmt.Errorf("%w: %s", ErrUnsupportedStrategy, s))
	}
	return nil
}

func (b *base) fail(pid memory.PID, size int, s placement.Strategy, err error) error {
	b.stats.AllocFailed++
	logger.Debug("allocation failed",
		"variant", b.kind.String(), "pid", int(pid), "size", size, "strategy", s.String(), "error", err)
	return err
}

func (b *base) succeed(pid memory.PID, size int, s placement.Strategy, start, waste int) {
	b.stats.AllocOK++
	b.stats.CellsAllocated += size
	if waste > 0 {
		b.waste[pid] += waste
	}
	logger.Debug("allocated",
		"variant", b.kind.String(), "pid", int(pid), "size", size, "strategy", s.String(), "start", start)
}

// release drops pid from the space and returns the ranges it held.
func (b *base) release(pid memory.PID) ([]memory.Range, error) {
	b.stats.FreeCalls++
	ranges, ok := b.space.Release(pid)
	if !ok {
		b.stats.FreeFailed++
		logger.Debug("deallocation of unknown process", "variant", b.kind.String(), "pid", int(pid))
		return nil, fmt.Errorf("%w: %d", ErrUnknownProcess, pid)
	}
	for _, r := range ranges {
		b.stats.CellsFreed += r.Len()
	}
	delete(b.waste, pid)
	logger.Debug("deallocated", "variant", b.kind.String(), "pid", int(pid), "ranges", len(ranges))
	return ranges, nil
}
