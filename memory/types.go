package memory

import "fmt"

// PID identifies a simulated process.
type PID int

// Range is a half-open cell range [Start, End).
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Len returns the number of cells covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether cell i lies inside r.
func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// Overlaps reports whether r and o share at least one cell.
func (r Range) Overlaps(o Range) bool { return r.Start < o.End && o.Start < r.End }

func (r Range) String() string { return fmt.Sprintf("[%d,%d)", r.Start, r.End) }

// Cell is one unit of address space.
type Cell struct {
	Owner PID
	Used  bool
}

// Free reports whether the cell has no owner.
func (c Cell) Free() bool { return !c.Used }
