package alloc

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/placement"
)

// Buddy hands out power-of-two blocks from a free-block registry keyed by
// block size. Placement strategies are accepted but have no effect.
//
// By default it behaves as a classic buddy allocator: a larger block is
// halved until it matches the request, each unused upper half is registered
// as free, and freed blocks merge with their buddy (offset XOR size) while
// the buddy is free.
//
// WithLegacyBuddy selects the simplified scheme instead: exact-size lookup
// with a single doubling, no splitting and no merging. Freed ranges are
// re-registered under their requested span, not the rounded block size.
type Buddy struct {
	base
	legacy bool
	free   map[int][]int
	blocks map[memory.PID][]block
}

// block is a buddy block held by a process.
type block struct {
	off  int
	size int
}

// BuddyOption configures a Buddy allocator.
type BuddyOption func(*Buddy)

// WithLegacyBuddy disables splitting and merging.
func WithLegacyBuddy() BuddyOption {
	return func(b *Buddy) { b.legacy = true }
}

// NewBuddy creates a buddy allocator over totalSize cells, which must be a
// power of two.
func NewBuddy(totalSize int, opts ...BuddyOption) (*Buddy, error) {
	if totalSize <= 0 || totalSize&(totalSize-1) != 0 {
		return nil, fmt.Errorf("%w: buddy total size must be a power of two, got %d", ErrMisconfigured, totalSize)
	}

	b := &Buddy{
		base:   newBase(KindBuddy, totalSize),
		free:   map[int][]int{totalSize: {0}},
		blocks: make(map[memory.PID][]block),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Legacy reports whether splitting and merging are disabled.
func (b *Buddy) Legacy() bool { return b.legacy }

// FreeBlocks returns a copy of the registry: block size to free offsets.
func (b *Buddy) FreeBlocks() map[int][]int {
	out := make(map[int][]int, len(b.free))
	for sz, offs := range b.free {
		out[sz] = slices.Clone(offs)
	}
	return out
}

// Allocate reserves a block for size cells. Only the requested cells are
// owned; the rest of the block is internal waste.
func (b *Buddy) Allocate(pid memory.PID, size int, s placement.Strategy) error {
	if err := b.begin(pid, size, s); err != nil {
		return err
	}
	if size > b.space.Len() {
		return b.fail(pid, size, s, fmt.Errorf("%w: process %d needs %d cells, space has %d",
			ErrCapacityExceeded, pid, size, b.space.Len()))
	}

	want := nextPow2(size)
	var (
		blk block
		ok  bool
	)
	if b.legacy {
		blk, ok = b.takeLegacy(want)
	} else {
		blk, ok = b.takeSplit(want)
	}
	if !ok {
		return b.fail(pid, size, s, fmt.Errorf("%w: no free block of %d cells", ErrNoFit, want))
	}

	b.space.Mark(pid, blk.off, blk.off+size)
	b.blocks[pid] = append(b.blocks[pid], blk)
	b.succeed(pid, size, s, blk.off, blk.size-size)
	return nil
}

// Deallocate returns every block held by pid to the registry.
func (b *Buddy) Deallocate(pid memory.PID) error {
	ranges, err := b.release(pid)
	if err != nil {
		return err
	}
	held := b.blocks[pid]
	delete(b.blocks, pid)

	if b.legacy {
		for _, r := range ranges {
			b.push(r.Len(), r.Start)
		}
		return nil
	}
	for _, blk := range held {
		b.merge(blk)
	}
	return nil
}

// takeLegacy looks for a block of exactly want cells, then of 2*want.
func (b *Buddy) takeLegacy(want int) (block, bool) {
	size := want
	if len(b.free[size]) == 0 {
		size *= 2
	}
	off, ok := b.pop(size)
	if !ok {
		return block{}, false
	}
	return block{off: off, size: size}, true
}

// takeSplit finds the smallest free block of at least want cells and halves
// it down to want, registering each upper half.
func (b *Buddy) takeSplit(want int) (block, bool) {
	size := want
	for ; size <= b.space.Len(); size *= 2 {
		if len(b.free[size]) > 0 {
			break
		}
	}
	off, ok := b.pop(size)
	if !ok {
		return block{}, false
	}
	for size > want {
		size /= 2
		b.push(size, off+size)
	}
	return block{off: off, size: size}, true
}

// merge frees blk, coalescing with its buddy up the size hierarchy.
func (b *Buddy) merge(blk block) {
	off, size := blk.off, blk.size
	for size < b.space.Len() {
		buddy := off ^ size
		if !b.remove(size, buddy) {
			break
		}
		off = min(off, buddy)
		size *= 2
	}
	b.push(size, off)
}

// pop removes the first offset registered for size.
func (b *Buddy) pop(size int) (int, bool) {
	offs := b.free[size]
	if len(offs) == 0 {
		return 0, false
	}
	off := offs[0]
	if len(offs) == 1 {
		delete(b.free, size)
	} else {
		b.free[size] = offs[1:]
	}
	return off, true
}

// push registers off under size. Classic mode keeps offsets sorted so the
// lowest block is reused first; legacy mode appends.
func (b *Buddy) push(size, off int) {
	offs := b.free[size]
	if b.legacy {
		b.free[size] = append(offs, off)
		return
	}
	i, _ := slices.BinarySearch(offs, off)
	b.free[size] = slices.Insert(offs, i, off)
}

func (b *Buddy) remove(size, off int) bool {
	offs := b.free[size]
	i, found := slices.BinarySearch(offs, off)
	if !found {
		return false
	}
	offs = slices.Delete(offs, i, i+1)
	if len(offs) == 0 {
		delete(b.free, size)
	} else {
		b.free[size] = offs
	}
	return true
}

// nextPow2 rounds n up to a power of two (n >= 1).
func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
