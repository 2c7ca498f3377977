package alloc

import (
	"errors"

	"github.com/joshuapare/memsim/memory/placement"
)

var (
	// ErrCapacityExceeded indicates the request is larger than the biggest unit
	// the variant can ever hand out (a partition, a block, the whole space).
	ErrCapacityExceeded = errors.New("alloc: request exceeds capacity")

	// ErrNoFit indicates no free region satisfies the request right now.
	ErrNoFit = placement.ErrNoFit

	// ErrUnknownProcess indicates a deallocation for a process with no allocations.
	ErrUnknownProcess = errors.New("alloc: unknown process")

	// ErrMisconfigured indicates construction parameters that violate the
	// variant's invariants.
	ErrMisconfigured = errors.New("alloc: misconfigured")

	// ErrInvalidSize indicates a non-positive request size.
	ErrInvalidSize = errors.New("alloc: size must be positive")

	// ErrUnsupportedStrategy indicates a strategy outside the known set.
	ErrUnsupportedStrategy = placement.ErrUnsupportedStrategy
)
