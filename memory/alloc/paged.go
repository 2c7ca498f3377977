package alloc

import (
	"fmt"
	"slices"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/placement"
)

// Paged splits the space into pages of pageSize cells and gives each
// process whole pages, not necessarily contiguous.
//
// Strategy selects which free pages are used:
//   - FirstFit: the lowest-numbered free pages
//   - BestFit: the shortest run of consecutive free pages that holds the
//     whole request, or FirstFit pages when no single run is long enough
//   - NextFit: free pages starting after the previous allocation, wrapping once
type Paged struct {
	base
	pageSize int
	pages    int
	table    map[memory.PID][]int
}

// NewPaged creates a paging allocator. pageSize must divide totalSize.
func NewPaged(totalSize, pageSize int) (*Paged, error) {
	if totalSize <= 0 {
		return nil, fmt.Errorf("%w: total size must be positive, got %d", ErrMisconfigured, totalSize)
	}
	if pageSize <= 0 || totalSize%pageSize != 0 {
		return nil, fmt.Errorf("%w: page size %d does not divide total size %d", ErrMisconfigured, pageSize, totalSize)
	}
	return &Paged{
		base:     newBase(KindPaged, totalSize),
		pageSize: pageSize,
		pages:    totalSize / pageSize,
		table:    make(map[memory.PID][]int),
	}, nil
}

// PageSize returns the number of cells per page.
func (p *Paged) PageSize() int { return p.pageSize }

// PagesOf returns the pages held by pid in allocation order.
func (p *Paged) PagesOf(pid memory.PID) []int { return slices.Clone(p.table[pid]) }

// PageTable returns a copy of the page table.
func (p *Paged) PageTable() map[memory.PID][]int {
	out := make(map[memory.PID][]int, len(p.table))
	for pid, pages := range p.table {
		out[pid] = slices.Clone(pages)
	}
	return out
}

// FreePages returns every page whose cells are all free, ascending.
func (p *Paged) FreePages() []int {
	var free []int
	for pg := range p.pages {
		if p.space.IsRangeFree(pg*p.pageSize, (pg+1)*p.pageSize) {
			free = append(free, pg)
		}
	}
	return free
}

// Allocate gives pid ceil(size/pageSize) pages.
func (p *Paged) Allocate(pid memory.PID, size int, s placement.Strategy) error {
	if err := p.begin(pid, size, s); err != nil {
		return err
	}
	need := (size + p.pageSize - 1) / p.pageSize
	if need > p.pages {
		return p.fail(pid, size, s, fmt.Errorf("%w: process %d needs %d pages, space has %d",
			ErrCapacityExceeded, pid, need, p.pages))
	}

	free := p.FreePages()
	if len(free) < need {
		return p.fail(pid, size, s, fmt.Errorf("%w: process %d needs %d pages, %d free",
			ErrNoFit, pid, need, len(free)))
	}

	chosen, err := p.choose(s, free, need)
	if err != nil {
		return p.fail(pid, size, s, err)
	}

	for _, pg := range chosen {
		p.space.Mark(pid, pg*p.pageSize, (pg+1)*p.pageSize)
	}
	p.table[pid] = append(p.table[pid], chosen...)
	p.policy.Advance((chosen[len(chosen)-1] + 1) * p.pageSize)
	p.succeed(pid, size, s, chosen[0]*p.pageSize, need*p.pageSize-size)
	return nil
}

// choose picks need pages out of free (ascending, len(free) >= need).
func (p *Paged) choose(s placement.Strategy, free []int, need int) ([]int, error) {
	switch s {
	case placement.BestFit:
		r, err := p.policy.Select(placement.BestFit, pageRuns(free), need)
		if err == nil {
			pages := make([]int, need)
			for i := range pages {
				pages[i] = r.Offset + i
			}
			return pages, nil
		}
		return slices.Clone(free[:need]), nil

	case placement.FirstFit, placement.NextFit:
		// Every free page is a one-page region; the policy picks where to start.
		regions := make([]placement.Region, len(free))
		for i, pg := range free {
			regions[i] = placement.Region{Index: i, Offset: pg * p.pageSize, Capacity: 1}
		}
		r, err := p.policy.Select(s, regions, 1)
		if err != nil {
			return nil, err
		}
		pages := make([]int, 0, need)
		for i := range need {
			pages = append(pages, free[(r.Index+i)%len(free)])
		}
		return pages, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedStrategy, s)
}

// Deallocate frees every page held by pid.
func (p *Paged) Deallocate(pid memory.PID) error {
	if _, err := p.release(pid); err != nil {
		return err
	}
	delete(p.table, pid)
	return nil
}

// pageRuns groups ascending page numbers into runs of consecutive pages.
// Offsets and capacities are in pages.
func pageRuns(free []int) []placement.Region {
	var runs []placement.Region
	for _, pg := range free {
		if n := len(runs); n > 0 && runs[n-1].End() == pg {
			runs[n-1].Capacity++
			continue
		}
		runs = append(runs, placement.Region{Index: -1, Offset: pg, Capacity: 1})
	}
	return runs
}
