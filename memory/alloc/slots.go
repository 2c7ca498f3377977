package alloc

import (
	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/placement"
)

// slot is one static partition.
type slot struct {
	offset int
	size   int
	owner  memory.PID
	used   bool
}

// slotTable is the partition descriptor list shared by Fixed and Unequal.
type slotTable []slot

func newSlotTable(sizes []int) slotTable {
	t := make(slotTable, len(sizes))
	off := 0
	for i, sz := range sizes {
		t[i] = slot{offset: off, size: sz}
		off += sz
	}
	return t
}

// free returns unassigned slots as placement regions, in offset order.
func (t slotTable) free() []placement.Region {
	regions := make([]placement.Region, 0, len(t))
	for i, s := range t {
		if !s.used {
			regions = append(regions, placement.Region{Index: i, Offset: s.offset, Capacity: s.size})
		}
	}
	return regions
}

func (t slotTable) assign(i int, pid memory.PID) {
	t[i].owner = pid
	t[i].used = true
}

func (t slotTable) release(i int) {
	t[i] = slot{offset: t[i].offset, size: t[i].size}
}

// indexAt returns the slot starting at offset.
func (t slotTable) indexAt(offset int) (int, bool) {
	for i, s := range t {
		if s.offset == offset {
			return i, true
		}
	}
	return -1, false
}

func (t slotTable) largest() int {
	largest := 0
	for _, s := range t {
		largest = max(largest, s.size)
	}
	return largest
}

// Slot describes a partition for display.
type Slot struct {
	Offset int        `json:"offset"`
	Size   int        `json:"size"`
	Owner  memory.PID `json:"owner,omitempty"`
	Used   bool       `json:"used"`
}

func (t slotTable) snapshot() []Slot {
	out := make([]Slot, len(t))
	for i, s := range t {
		out[i] = Slot{Offset: s.offset, Size: s.size, Owner: s.owner, Used: s.used}
	}
	return out
}
