package placement

import "fmt"

// Region is a candidate free extent.
type Region struct {
	Index    int // slot or page index; -1 for raw cell extents
	Offset   int // first cell of the region
	Capacity int // cells available starting at Offset
}

// End returns the first cell past the region.
func (r Region) End() int { return r.Offset + r.Capacity }

// Policy applies a Strategy to a list of regions. The zero value is ready to
// use with the NextFit cursor at offset 0.
type Policy struct {
	cursor int
}

// Cursor returns the offset NextFit resumes from.
func (p *Policy) Cursor() int { return p.cursor }

// Advance moves the NextFit cursor to end. Variants call it after every
// successful allocation, whatever the strategy used.
func (p *Policy) Advance(end int) { p.cursor = end }

// Reset moves the NextFit cursor back to the start of the space.
func (p *Policy) Reset() { p.cursor = 0 }

// Select picks the region that satisfies size under s. Regions must be
// sorted by ascending Offset.
func (p *Policy) Select(s Strategy, regions []Region, size int) (Region, error) {
	var (
		idx int
		ok  bool
	)
	switch s {
	case FirstFit:
		idx, ok = firstFit(regions, size, 0)
	case BestFit:
		idx, ok = bestFit(regions, size)
	case NextFit:
		idx, ok = nextFit(regions, size, p.cursor)
	default:
		return Region{}, fmt.Errorf("%w: %s", ErrUnsupportedStrategy, s)
	}
	if !ok {
		return Region{}, fmt.Errorf("%w: %d cells under %s", ErrNoFit, size, s)
	}
	return regions[idx], nil
}

func firstFit(regions []Region, size, from int) (int, bool) {
	for i := from; i < len(regions); i++ {
		if regions[i].Capacity >= size {
			return i, true
		}
	}
	return -1, false
}

func bestFit(regions []Region, size int) (int, bool) {
	best := -1
	for i, r := range regions {
		if r.Capacity < size {
			continue
		}
		if best < 0 || r.Capacity-size < regions[best].Capacity-size {
			best = i
		}
	}
	return best, best >= 0
}

func nextFit(regions []Region, size, cursor int) (int, bool) {
	start := len(regions)
	for i, r := range regions {
		if r.Offset >= cursor {
			start = i
			break
		}
	}
	if i, ok := firstFit(regions, size, start); ok {
		return i, true
	}
	for i := 0; i < start; i++ {
		if regions[i].Capacity >= size {
			return i, true
		}
	}
	return -1, false
}

// SplitAt splits the region straddling cursor into two regions so that
// NextFit can resume in the middle of a free extent. Only meaningful for raw
// cell extents; slot regions must never be split.
func SplitAt(regions []Region, cursor int) []Region {
	for i, r := range regions {
		if r.Offset < cursor && cursor < r.End() {
			out := make([]Region, 0, len(regions)+1)
			out = append(out, regions[:i]...)
			out = append(out,
				Region{Index: r.Index, Offset: r.Offset, Capacity: cursor - r.Offset},
				Region{Index: r.Index, Offset: cursor, Capacity: r.End() - cursor},
			)
			return append(out, regions[i+1:]...)
		}
	}
	return regions
}
