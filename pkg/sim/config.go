// Package sim is the context object that drives allocator variants.
//
// It owns everything the allocator core deliberately knows nothing about:
// which variant to build and how, per-configuration efficiency tallies, and
// scripted scenarios loaded from YAML. Callers construct a Session per
// variant configuration and feed it allocate/deallocate requests; a
// Comparison aggregates tallies across sessions.
package sim

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/memsim/memory/alloc"
)

// Config selects and parameterises one allocator variant.
type Config struct {
	Variant        alloc.Kind `yaml:"variant"                   json:"variant"`
	TotalSize      int        `yaml:"total_size"                json:"total_size"`
	PartitionSize  int        `yaml:"partition_size,omitempty"  json:"partition_size,omitempty"`
	PartitionSizes Sizes      `yaml:"partition_sizes,omitempty" json:"partition_sizes,omitempty"`
	PageSize       int        `yaml:"page_size,omitempty"       json:"page_size,omitempty"`
	LegacyBuddy    bool       `yaml:"legacy_buddy,omitempty"    json:"legacy_buddy,omitempty"`
}

// Label names the configuration for comparison tables, e.g. "fixed(100/20)".
func (c Config) Label() string {
	switch c.Variant {
	case alloc.KindFixed:
		return fmt.Sprintf("fixed(%d/%d)", c.TotalSize, c.PartitionSize)
	case alloc.KindUnequal:
		return fmt.Sprintf("unequal(%d:%s)", c.TotalSize, c.PartitionSizes)
	case alloc.KindBuddy:
		if c.LegacyBuddy {
			return fmt.Sprintf("buddy-legacy(%d)", c.TotalSize)
		}
		return fmt.Sprintf("buddy(%d)", c.TotalSize)
	case alloc.KindPaged:
		return fmt.Sprintf("paging(%d/%d)", c.TotalSize, c.PageSize)
	default:
		return fmt.Sprintf("%s(%d)", c.Variant, c.TotalSize)
	}
}

// Validate reports whether New would accept c.
func (c Config) Validate() error {
	_, err := New(c)
	return err
}

// New builds the allocator described by c. Misconfiguration is reported with
// alloc.ErrMisconfigured.
func New(c Config) (alloc.Allocator, error) {
	switch c.Variant {
	case alloc.KindFixed:
		return built(alloc.NewFixed(c.TotalSize, c.PartitionSize))
	case alloc.KindUnequal:
		return built(alloc.NewUnequal(c.TotalSize, c.PartitionSizes))
	case alloc.KindDynamic:
		return built(alloc.NewDynamic(c.TotalSize))
	case alloc.KindBuddy:
		var opts []alloc.BuddyOption
		if c.LegacyBuddy {
			opts = append(opts, alloc.WithLegacyBuddy())
		}
		return built(alloc.NewBuddy(c.TotalSize, opts...))
	case alloc.KindPaged:
		return built(alloc.NewPaged(c.TotalSize, c.PageSize))
	}
	return nil, fmt.Errorf("%w: variant %s", alloc.ErrMisconfigured, c.Variant)
}

// built keeps a failed constructor's typed nil out of the interface.
func built[A alloc.Allocator](a A, err error) (alloc.Allocator, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Sizes is a list of partition sizes. In YAML it may be written either as a
// sequence or as a comma-separated string ("10,20,30").
type Sizes []int

func (s Sizes) String() string {
	parts := make([]string, len(s))
	for i, n := range s {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Sizes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParsePartitionSizes(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*s = parsed
		return nil
	}
	var list []int
	if err := node.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}

// ParsePartitionSizes parses a comma-separated list of positive sizes.
func ParsePartitionSizes(text string) (Sizes, error) {
	fields := strings.Split(text, ",")
	sizes := make(Sizes, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: partition size %q", alloc.ErrMisconfigured, f)
		}
		if n <= 0 {
			return nil, fmt.Errorf("%w: partition size %d", alloc.ErrMisconfigured, n)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no partition sizes", alloc.ErrMisconfigured)
	}
	return sizes, nil
}
