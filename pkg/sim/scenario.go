package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/memsim/internal/logger"
	"github.com/joshuapare/memsim/memory"
	"github.com/joshuapare/memsim/memory/alloc"
	"github.com/joshuapare/memsim/memory/frag"
	"github.com/joshuapare/memsim/memory/placement"
)

// ErrInvalidScenario is returned for structurally broken scenario files.
var ErrInvalidScenario = errors.New("sim: invalid scenario")

// Op is a scenario step operation.
type Op string

const (
	OpAlloc Op = "alloc"
	OpFree  Op = "free"
)

// Step is one scripted request.
type Step struct {
	Op       Op                 `yaml:"op"                 json:"op"`
	PID      memory.PID         `yaml:"pid"                json:"pid"`
	Size     int                `yaml:"size,omitempty"     json:"size,omitempty"`
	Strategy placement.Strategy `yaml:"strategy,omitempty" json:"strategy,omitempty"`
}

func (s Step) String() string {
	if s.Op == OpFree {
		return fmt.Sprintf("free pid=%d", s.PID)
	}
	return fmt.Sprintf("alloc pid=%d size=%d %s", s.PID, s.Size, s.Strategy)
}

// Scenario is a list of variant configurations and the steps replayed
// against each of them.
type Scenario struct {
	Name     string   `yaml:"name"     json:"name"`
	Variants []Config `yaml:"variants" json:"variants"`
	Steps    []Step   `yaml:"steps"    json:"steps"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()
	return ParseScenario(f)
}

// ParseScenario decodes a YAML scenario. Unknown keys are rejected and
// alloc steps without a strategy default to first_fit.
func ParseScenario(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	for i := range sc.Steps {
		if sc.Steps[i].Op == OpAlloc && sc.Steps[i].Strategy == 0 {
			sc.Steps[i].Strategy = placement.FirstFit
		}
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the step list and that every variant can be constructed.
// Allocation sizes are not checked here; a bad size is a failed attempt.
func (sc *Scenario) Validate() error {
	if len(sc.Variants) == 0 {
		return fmt.Errorf("%w: no variants", ErrInvalidScenario)
	}
	var errs []error
	for i, v := range sc.Variants {
		if err := v.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("variant %d (%s): %w", i, v.Label(), err))
		}
	}
	for i, st := range sc.Steps {
		switch st.Op {
		case OpAlloc, OpFree:
		default:
			errs = append(errs, fmt.Errorf("%w: step %d: unknown op %q", ErrInvalidScenario, i, st.Op))
		}
	}
	return errors.Join(errs...)
}

// StepResult is the outcome of one step against one variant.
type StepResult struct {
	Index int    `json:"index"`
	Step  Step   `json:"step"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

// Result summarises one variant after replaying every step.
type Result struct {
	Label         string       `json:"label"`
	Config        Config       `json:"config"`
	Steps         []StepResult `json:"steps"`
	Tally         Tally        `json:"tally"`
	Stats         alloc.Stats  `json:"stats"`
	Report        frag.Report  `json:"fragmentation"`
	InternalWaste int          `json:"internal_waste"`
	Violation     string       `json:"invariant_violation,omitempty"`

	Session *Session `json:"-"`
}

// Run replays the scenario against a fresh session per variant. Tallies are
// added to cmp when it is non-nil. A failed step does not stop the run.
func Run(ctx context.Context, sc *Scenario, cmp *Comparison) ([]Result, error) {
	results := make([]Result, 0, len(sc.Variants))
	for _, cfg := range sc.Variants {
		sess, err := NewSession(cfg)
		if err != nil {
			return results, fmt.Errorf("variant %s: %w", cfg.Label(), err)
		}
		logger.Info("running scenario", "name", sc.Name, "variant", sess.Label(), "steps", len(sc.Steps))

		res := Result{Label: sess.Label(), Config: cfg, Session: sess}
		for i, st := range sc.Steps {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			sr := StepResult{Index: i, Step: st}
			switch st.Op {
			case OpAlloc:
				sr.Err = sess.Allocate(st.PID, st.Size, st.Strategy)
			case OpFree:
				sr.Err = sess.Deallocate(st.PID)
			default:
				sr.Err = fmt.Errorf("%w: unknown op %q", ErrInvalidScenario, st.Op)
			}
			sr.OK = sr.Err == nil
			if sr.Err != nil {
				sr.Error = sr.Err.Error()
			}
			res.Steps = append(res.Steps, sr)
		}

		res.Tally = sess.Tally()
		res.Stats = sess.Stats()
		res.Report = sess.Report()
		res.InternalWaste = sess.InternalWaste()
		if err := sess.Verify(); err != nil {
			logger.Error("invariant violated", "variant", res.Label, "error", err)
			res.Violation = err.Error()
		}
		if cmp != nil {
			cmp.Add(res.Label, res.Tally)
		}
		results = append(results, res)
	}
	return results, nil
}
