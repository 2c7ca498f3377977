package memory

import "sort"

// Table maps each process to the ranges it currently owns.
type Table struct {
	entries map[PID][]Range
}

func newTable() Table {
	return Table{entries: make(map[PID][]Range)}
}

func (t *Table) add(pid PID, r Range) {
	t.entries[pid] = append(t.entries[pid], r)
}

func (t *Table) remove(pid PID) ([]Range, bool) {
	ranges, ok := t.entries[pid]
	if ok {
		delete(t.entries, pid)
	}
	return ranges, ok
}

// Has reports whether pid has an entry.
func (t *Table) Has(pid PID) bool {
	_, ok := t.entries[pid]
	return ok
}

// Ranges returns a copy of the ranges recorded for pid, in allocation order.
func (t *Table) Ranges(pid PID) []Range {
	ranges := t.entries[pid]
	if ranges == nil {
		return nil
	}
	out := make([]Range, len(ranges))
	copy(out, ranges)
	return out
}

// PIDs returns every process with an entry, sorted ascending.
func (t *Table) PIDs() []PID {
	pids := make([]PID, 0, len(t.entries))
	for pid := range t.entries {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}

// Len returns the number of processes with an entry.
func (t *Table) Len() int { return len(t.entries) }
