package alloc

import (
	"fmt"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/placement"
)

// Kind identifies an allocator variant.
type Kind uint8

const (
	KindFixed Kind = iota + 1
	KindUnequal
	KindDynamic
	KindBuddy
	KindPaged
)

// Kinds lists every variant in display order.
var Kinds = []Kind{KindFixed, KindUnequal, KindDynamic, KindBuddy, KindPaged}

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindUnequal:
		return "unequal"
	case KindDynamic:
		return "dynamic"
	case KindBuddy:
		return "buddy"
	case KindPaged:
		return "paging"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a variant name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "fixed":
		return KindFixed, nil
	case "unequal":
		return KindUnequal, nil
	case "dynamic":
		return KindDynamic, nil
	case "buddy":
		return KindBuddy, nil
	case "paging", "paged":
		return KindPaged, nil
	}
	return 0, fmt.Errorf("%w: unknown variant %q", ErrMisconfigured, name)
}

// Valid reports whether k is one of the known variants.
func (k Kind) Valid() bool {
	return k >= KindFixed && k <= KindPaged
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: unknown variant %d", ErrMisconfigured, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Allocator is the contract shared by every variant.
//
// Implementations:
//   - Fixed: equal-size partitions
//   - Unequal: partitions of declared sizes
//   - Dynamic: variable-size placement directly over cells
//   - Buddy: power-of-two blocks
//   - Paged: fixed-size pages, non-contiguous
//
// Every failed call leaves the allocator unchanged.
type Allocator interface {
	// Allocate reserves size cells for pid under strategy s.
	Allocate(pid memory.PID, size int, s placement.Strategy) error

	// Deallocate releases everything pid holds. Unknown pids yield ErrUnknownProcess.
	Deallocate(pid memory.PID) error

	// Dump renders the space one cell per line.
	Dump() string

	// Fragmentation returns the legacy fragmentation percentage.
	Fragmentation() float64

	// InternalWaste returns cells reserved by allocations but not owned by them.
	InternalWaste() int

	Kind() Kind
	Space() *memory.Space
	Stats() Stats
}

// Stats holds allocator counters.
type Stats struct {
	AllocCalls     int `json:"alloc_calls"`
	AllocOK        int `json:"alloc_ok"`
	AllocFailed    int `json:"alloc_failed"`
	FreeCalls      int `json:"free_calls"`
	FreeFailed     int `json:"free_failed"`
	CellsAllocated int `json:"cells_allocated"`
	CellsFreed     int `json:"cells_freed"`
}

// Efficiency returns successful allocations as a percentage of attempts.
func (s Stats) Efficiency() float64 {
	if s.AllocCalls == 0 {
		return 0
	}
	return float64(s.AllocOK) / float64(s.AllocCalls) * 100
}
