// Package verify checks the invariants tying a memory.Space's cells to its
// process table. Scenario runs check it after replaying every step.
package verify

import (
	"fmt"
	"sort"

	"github.com/joshuapare/memsim/memory"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int // cell index, -1 if not applicable
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at cell %d: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// All validates every invariant in one call and returns the first failure.
func All(s *memory.Space) error {
	if err := Ranges(s); err != nil {
		return err
	}
	if err := Disjoint(s); err != nil {
		return err
	}
	return Ownership(s)
}

// Ranges checks that every recorded range is non-empty and inside the space.
func Ranges(s *memory.Space) error {
	t := s.Table()
	for _, pid := range t.PIDs() {
		for _, r := range t.Ranges(pid) {
			if r.Start >= r.End {
				return &ValidationError{
					Type:    "Ranges",
					Message: fmt.Sprintf("empty or inverted range %s for process %d", r, pid),
					Offset:  r.Start,
				}
			}
			if r.Start < 0 || r.End > s.Len() {
				return &ValidationError{
					Type:    "Ranges",
					Message: fmt.Sprintf("range %s for process %d outside %d cells", r, pid, s.Len()),
					Offset:  -1,
					Details: map[string]interface{}{"pid": pid, "size": s.Len()},
				}
			}
		}
	}
	return nil
}

// Disjoint checks that no two recorded ranges share a cell, across all processes.
func Disjoint(s *memory.Space) error {
	type owned struct {
		memory.Range
		pid memory.PID
	}
	t := s.Table()
	var all []owned
	for _, pid := range t.PIDs() {
		for _, r := range t.Ranges(pid) {
			all = append(all, owned{Range: r, pid: pid})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })

	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.Overlaps(cur.Range) {
			return &ValidationError{
				Type: "Disjoint",
				Message: fmt.Sprintf("range %s of process %d overlaps %s of process %d",
					prev.Range, prev.pid, cur.Range, cur.pid),
				Offset:  cur.Start,
				Details: map[string]interface{}{"first": prev.pid, "second": cur.pid},
			}
		}
	}
	return nil
}

// Ownership checks that cells and table agree: every owned cell is covered
// by one of its owner's ranges and every recorded range is owned by its pid.
func Ownership(s *memory.Space) error {
	covered := make([]bool, s.Len())
	t := s.Table()
	for _, pid := range t.PIDs() {
		for _, r := range t.Ranges(pid) {
			for i := r.Start; i < r.End; i++ {
				c := s.Cell(i)
				if !c.Used || c.Owner != pid {
					return &ValidationError{
						Type:    "Ownership",
						Message: fmt.Sprintf("cell in range %s of process %d is not owned by it", r, pid),
						Offset:  i,
					}
				}
				covered[i] = true
			}
		}
	}
	for i := range s.Len() {
		if c := s.Cell(i); c.Used && !covered[i] {
			return &ValidationError{
				Type:    "Ownership",
				Message: fmt.Sprintf("cell owned by process %d outside any recorded range", c.Owner),
				Offset:  i,
			}
		}
	}
	return nil
}
