package alloc

import (
	"fmt"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/placement"
)

// Unequal divides the space into partitions of declared sizes laid out
// back to back from offset 0.
type Unequal struct {
	base
	slots slotTable
}

// NewUnequal creates an unequal-partition allocator. The partitions must fit
// inside totalSize.
func NewUnequal(totalSize int, sizes []int) (*Unequal, error) {
	if totalSize <= 0 {
		return nil, fmt.Errorf("%w: total size must be positive, got %d", ErrMisconfigured, totalSize)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no partitions declared", ErrMisconfigured)
	}
	sum := 0
	for i, sz := range sizes {
		if sz <= 0 {
			return nil, fmt.Errorf("%w: partition %d has size %d", ErrMisconfigured, i, sz)
		}
		sum += sz
	}
	if sum > totalSize {
		return nil, fmt.Errorf("%w: partitions need %d cells, space has %d", ErrMisconfigured, sum, totalSize)
	}

	return &Unequal{
		base:  newBase(KindUnequal, totalSize),
		slots: newSlotTable(sizes),
	}, nil
}

// Partitions returns a snapshot of the partition slots.
func (u *Unequal) Partitions() []Slot { return u.slots.snapshot() }

// Allocate places size cells at the start of a free partition of at least
// size cells chosen by s.
func (u *Unequal) Allocate(pid memory.PID, size int, s placement.Strategy) error {
	if err := u.begin(pid, size, s); err != nil {
		return err
	}
	if largest := u.slots.largest(); size > largest {
		return u.fail(pid, size, s, fmt.Errorf("%w: process %d needs %d cells, largest partition holds %d",
			ErrCapacityExceeded, pid, size, largest))
	}

	r, err := u.policy.Select(s, u.slots.free(), size)
	if err != nil {
		return u.fail(pid, size, s, err)
	}

	u.slots.assign(r.Index, pid)
	u.space.Mark(pid, r.Offset, r.Offset+size)
	u.policy.Advance(r.End())
	u.succeed(pid, size, s, r.Offset, r.Capacity-size)
	return nil
}

// Deallocate frees every partition held by pid.
func (u *Unequal) Deallocate(pid memory.PID) error {
	ranges, err := u.release(pid)
	if err != nil {
		return err
	}
	for _, r := range ranges {
		if i, ok := u.slots.indexAt(r.Start); ok {
			u.slots.release(i)
		}
	}
	return nil
}
