// Package placement selects which free region satisfies an allocation request.
//
// Three strategies are supported:
//   - FirstFit: lowest-offset region large enough for the request
//   - BestFit: region leaving the least spare capacity (ties go to the lowest offset)
//   - NextFit: like FirstFit, but resumes after the previous allocation and wraps once
//
// A Policy carries the NextFit cursor between calls. Regions are passed in
// ascending offset order; the policy never mutates them.
package placement

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedStrategy indicates a strategy value outside the known set.
	ErrUnsupportedStrategy = errors.New("placement: unsupported strategy")

	// ErrNoFit indicates that no candidate region can hold the request.
	ErrNoFit = errors.New("placement: no fitting region")
)

// Strategy is a placement rule.
type Strategy uint8

const (
	FirstFit Strategy = iota + 1
	BestFit
	NextFit
)

// Strategies lists every supported strategy in display order.
var Strategies = []Strategy{FirstFit, BestFit, NextFit}

// String returns the canonical tag ("first_fit", "best_fit", "next_fit").
func (s Strategy) String() string {
	switch s {
	case FirstFit:
		return "first_fit"
	case BestFit:
		return "best_fit"
	case NextFit:
		return "next_fit"
	default:
		return fmt.Sprintf("strategy(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the supported strategies.
func (s Strategy) Valid() bool {
	return s >= FirstFit && s <= NextFit
}

// ParseStrategy maps a tag to a Strategy. An empty tag selects FirstFit.
func ParseStrategy(tag string) (Strategy, error) {
	switch tag {
	case "", "first_fit", "first":
		return FirstFit, nil
	case "best_fit", "best":
		return BestFit, nil
	case "next_fit", "next":
		return NextFit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedStrategy, tag)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedStrategy, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
