package sim

import (
	"sync"

	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/alloc"
	"github.com/joshuapare/memsim/memory/frag"
	"github.com/joshuapare/memsim/memory/placement"
	"github.com/joshuapare/memsim/memory/verify"
)

// Tally counts allocation attempts and successes for one configuration.
type Tally struct {
	Attempted int `json:"attempted" yaml:"attempted"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
}

// Record adds one attempt.
func (t *Tally) Record(ok bool) {
	t.Attempted++
	if ok {
		t.Succeeded++
	}
}

// Efficiency returns Succeeded/Attempted as a percentage, 0 when nothing was attempted.
func (t Tally) Efficiency() float64 {
	if t.Attempted == 0 {
		return 0
	}
	return float64(t.Succeeded) / float64(t.Attempted) * 100
}

// Session wraps one allocator together with its tally. All methods are safe
// for concurrent use; the allocator is held under a single mutex.
type Session struct {
	mu    sync.Mutex
	cfg   Config
	a     alloc.Allocator
	tally Tally
}

// NewSession builds the allocator described by cfg.
func NewSession(cfg Config) (*Session, error) {
	a, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, a: a}, nil
}

// Config returns the configuration the session was built from.
func (s *Session) Config() Config { return s.cfg }

// Label is shorthand for Config().Label().
func (s *Session) Label() string { return s.cfg.Label() }

// Allocate forwards to the allocator and records the outcome.
func (s *Session) Allocate(pid memory.PID, size int, strategy placement.Strategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.a.Allocate(pid, size, strategy)
	s.tally.Record(err == nil)
	return err
}

// Deallocate forwards to the allocator.
func (s *Session) Deallocate(pid memory.PID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Deallocate(pid)
}

func (s *Session) Dump() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Dump()
}

func (s *Session) Fragmentation() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Fragmentation()
}

// Report returns the full fragmentation report.
func (s *Session) Report() frag.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return frag.Analyze(s.a.Space())
}

// Cells copies the current cell states.
func (s *Session) Cells() []memory.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := s.a.Space()
	cells := make([]memory.Cell, sp.Len())
	for i := range cells {
		cells[i] = sp.Cell(i)
	}
	return cells
}

func (s *Session) Stats() alloc.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Stats()
}

func (s *Session) InternalWaste() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.InternalWaste()
}

func (s *Session) Tally() Tally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally
}

// Verify checks the allocator's space invariants.
func (s *Session) Verify() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return verify.All(s.a.Space())
}

// With runs fn with exclusive access to the allocator. fn must not retain it.
func (s *Session) With(fn func(alloc.Allocator)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.a)
}

// Comparison aggregates tallies across configurations, keyed by label, in
// first-seen order.
type Comparison struct {
	mu      sync.Mutex
	order   []string
	tallies map[string]Tally
}

// Row is one line of a comparison.
type Row struct {
	Label string `json:"label"`
	Tally
	Efficiency float64 `json:"efficiency"`
}

func NewComparison() *Comparison {
	return &Comparison{tallies: make(map[string]Tally)}
}

// Record adds one attempt under label.
func (c *Comparison) Record(label string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.entry(label)
	t.Record(ok)
	c.tallies[label] = t
}

// Add merges a whole tally under label.
func (c *Comparison) Add(label string, t Tally) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur := c.entry(label)
	cur.Attempted += t.Attempted
	cur.Succeeded += t.Succeeded
	c.tallies[label] = cur
}

func (c *Comparison) entry(label string) Tally {
	t, ok := c.tallies[label]
	if !ok {
		c.order = append(c.order, label)
	}
	return t
}

// Rows returns the tallies in first-seen order.
func (c *Comparison) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := make([]Row, 0, len(c.order))
	for _, label := range c.order {
		t := c.tallies[label]
		rows = append(rows, Row{Label: label, Tally: t, Efficiency: t.Efficiency()})
	}
	return rows
}

// Reset forgets every tally.
func (c *Comparison) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = nil
	c.tallies = make(map[string]Tally)
}
