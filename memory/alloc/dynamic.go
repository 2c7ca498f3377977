package alloc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/placement"
)

// Dynamic places each request directly over the cells, carving exactly size
// cells out of a free run. Free space is implicit in cell state, so freeing
// needs no merging.
type Dynamic struct {
	base
}

// NewDynamic creates a dynamic-partitioning allocator.
func NewDynamic(totalSize int) (*Dynamic, error) {
	if totalSize <= 0 {
		return nil, fmt.Errorf("%w: total size must be positive, got %d", ErrMisconfigured, totalSize)
	}
	return &Dynamic{base: newBase(KindDynamic, totalSize)}, nil
}

// Allocate places size cells in a free run chosen by s:
//   - FirstFit: the leftmost run that fits
//   - BestFit: the shortest run that fits, at its start
//   - NextFit: the first fit at or after the end of the previous allocation, wrapping once
func (d *Dynamic) Allocate(pid memory.PID, size int, s placement.Strategy) error {
	if err := d.begin(pid, size, s); err != nil {
		return err
	}
	if size > d.space.Len() {
		return d.fail(pid, size, s, fmt.Errorf("%w: process %d needs %d cells, space has %d",
			ErrCapacityExceeded, pid, size, d.space.Len()))
	}

	regions := runRegions(d.space.FreeRuns())
	var r placement.Region
	var err error
	if s == placement.NextFit {
		r, err = d.nextFit(regions, size)
	} else {
		r, err = d.policy.Select(s, regions, size)
	}
	if err != nil {
		return d.fail(pid, size, s, err)
	}

	d.space.Mark(pid, r.Offset, r.Offset+size)
	d.policy.Advance(r.Offset + size)
	d.succeed(pid, size, s, r.Offset, 0)
	return nil
}

// nextFit resumes at the cursor, splitting the run that contains it. The
// wrap pass scans the whole runs again, so a run straddling the cursor is
// still usable when neither half fits.
func (d *Dynamic) nextFit(regions []placement.Region, size int) (placement.Region, error) {
	r, err := d.policy.Select(placement.NextFit, placement.SplitAt(regions, d.policy.Cursor()), size)
	if !errors.Is(err, placement.ErrNoFit) {
		return r, err
	}
	return d.policy.Select(placement.FirstFit, regions, size)
}

// Deallocate frees exactly the ranges recorded for pid.
func (d *Dynamic) Deallocate(pid memory.PID) error {
	_, err := d.release(pid)
	return err
}

func runRegions(runs []memory.Range) []placement.Region {
	regions := make([]placement.Region, len(runs))
	for i, r := range runs {
		regions[i] = placement.Region{Index: -1, Offset: r.Start, Capacity: r.Len()}
	}
	return regions
}
