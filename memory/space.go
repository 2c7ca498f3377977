package memory

import (
	"fmt"
	"io"
	"strings"
)

// Space is a contiguous, zero-indexed address space of cells plus the
// process table describing who owns them.
type Space struct {
	cells []Cell
	procs Table
	owned int
}

// NewSpace creates a space of size cells, all free.
func NewSpace(size int) *Space {
	if size < 0 {
		panic(fmt.Sprintf("memory: negative space size %d", size))
	}
	return &Space{
		cells: make([]Cell, size),
		procs: newTable(),
	}
}

// Len returns the total number of cells.
func (s *Space) Len() int { return len(s.cells) }

// Cell returns the cell at index i.
func (s *Space) Cell(i int) Cell { return s.cells[i] }

// IsFree reports whether cell i is free.
func (s *Space) IsFree(i int) bool { return !s.cells[i].Used }

// Table returns the process table. The table must not be modified by callers.
func (s *Space) Table() *Table { return &s.procs }

// OwnedCells returns the number of owned cells.
func (s *Space) OwnedCells() int { return s.owned }

// FreeCells returns the number of free cells.
func (s *Space) FreeCells() int { return len(s.cells) - s.owned }

// Owners returns every process that owns at least one range, sorted ascending.
func (s *Space) Owners() []PID { return s.procs.PIDs() }

// RangesOf returns a copy of the ranges recorded for pid.
func (s *Space) RangesOf(pid PID) []Range { return s.procs.Ranges(pid) }

// IsRangeFree reports whether every cell of [start, end) is free.
// Ranges that fall outside the space are never free.
func (s *Space) IsRangeFree(start, end int) bool {
	if start < 0 || end > len(s.cells) || start > end {
		return false
	}
	for _, c := range s.cells[start:end] {
		if c.Used {
			return false
		}
	}
	return true
}

// Mark assigns cells [start, end) to pid and records the range in the
// process table. The range must lie inside the space.
func (s *Space) Mark(pid PID, start, end int) {
	s.checkRange(start, end)
	for i := start; i < end; i++ {
		if !s.cells[i].Used {
			s.owned++
		}
		s.cells[i] = Cell{Owner: pid, Used: true}
	}
	s.procs.add(pid, Range{Start: start, End: end})
}

// Clear frees cells [start, end). The process table is not touched.
func (s *Space) Clear(start, end int) {
	s.checkRange(start, end)
	for i := start; i < end; i++ {
		if s.cells[i].Used {
			s.owned--
		}
		s.cells[i] = Cell{}
	}
}

// Release removes pid from the process table and frees every range it held.
// It returns the removed ranges and false if pid had no entry.
func (s *Space) Release(pid PID) ([]Range, bool) {
	ranges, ok := s.procs.remove(pid)
	if !ok {
		return nil, false
	}
	for _, r := range ranges {
		s.Clear(r.Start, r.End)
	}
	return ranges, true
}

// FreeRuns returns the maximal runs of free cells in ascending order.
func (s *Space) FreeRuns() []Range {
	var runs []Range
	start := -1
	for i, c := range s.cells {
		switch {
		case !c.Used && start < 0:
			start = i
		case c.Used && start >= 0:
			runs = append(runs, Range{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Range{Start: start, End: len(s.cells)})
	}
	return runs
}

// Dump renders one line per cell naming its owner or "Free".
func (s *Space) Dump() string {
	var b strings.Builder
	_ = s.WriteDump(&b)
	return b.String()
}

// WriteDump writes the Dump rendering to w.
func (s *Space) WriteDump(w io.Writer) error {
	if _, err := io.WriteString(w, "Memory Allocation:\n"); err != nil {
		return err
	}
	for i, c := range s.cells {
		var err error
		if c.Used {
			_, err = fmt.Fprintf(w, "[%d]: Process %d\n", i, c.Owner)
		} else {
			_, err = fmt.Fprintf(w, "[%d]: Free\n", i)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Space) checkRange(start, end int) {
	if start < 0 || end > len(s.cells) || start > end {
		panic(fmt.Sprintf("memory: range [%d,%d) outside space of %d cells", start, end, len(s.cells)))
	}
}
