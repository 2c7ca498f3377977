package alloc

import (
	"fmt"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/placement"
)

// Fixed divides the space into equal partitions of partitionSize cells.
// A trailing remainder smaller than one partition is never handed out.
//
// Only the requested cells of a partition are owned; the rest of the
// partition is internal waste until the owner is deallocated.
type Fixed struct {
	base
	partitionSize int
	slots         slotTable
}

// NewFixed creates a fixed-partition allocator.
func NewFixed(totalSize, partitionSize int) (*Fixed, error) {
	if totalSize <= 0 {
		return nil, fmt.Errorf("%w: total size must be positive, got %d", ErrMisconfigured, totalSize)
	}
	if partitionSize <= 0 || partitionSize > totalSize {
		return nil, fmt.Errorf("%w: partition size %d not in 1..%d", ErrMisconfigured, partitionSize, totalSize)
	}

	sizes := make([]int, totalSize/partitionSize)
	for i := range sizes {
		sizes[i] = partitionSize
	}

	return &Fixed{
		base:          newBase(KindFixed, totalSize),
		partitionSize: partitionSize,
		slots:         newSlotTable(sizes),
	}, nil
}

// PartitionSize returns the size of every partition.
func (f *Fixed) PartitionSize() int { return f.partitionSize }

// Partitions returns a snapshot of the partition slots.
func (f *Fixed) Partitions() []Slot { return f.slots.snapshot() }

// Allocate places size cells at the start of a free partition chosen by s.
func (f *Fixed) Allocate(pid memory.PID, size int, s placement.Strategy) error {
	if err := f.begin(pid, size, s); err != nil {
		return err
	}
	if size > f.partitionSize {
		return f.fail(pid, size, s, fmt.Errorf("%w: process %d needs %d cells, partitions hold %d",
			ErrCapacityExceeded, pid, size, f.partitionSize))
	}

	r, err := f.policy.Select(s, f.slots.free(), size)
	if err != nil {
		return f.fail(pid, size, s, err)
	}

	f.slots.assign(r.Index, pid)
	f.space.Mark(pid, r.Offset, r.Offset+size)
	f.policy.Advance(r.End())
	f.succeed(pid, size, s, r.Offset, f.partitionSize-size)
	return nil
}

// Deallocate frees every partition held by pid.
func (f *Fixed) Deallocate(pid memory.PID) error {
	ranges, err := f.release(pid)
	if err != nil {
		return err
	}
	for _, r := range ranges {
		f.slots.release(r.Start / f.partitionSize)
	}
	return nil
}
