package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memsim/memory/alloc"
	"github.com/joshuapare/memsim/memory/placement"
	"github.com/joshuapare/memsim/pkg/sim"
)

var (
	runDumpCells bool
	runStrategy  string
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runDumpCells, "dump", false, "Print the cell-by-cell dump after each variant")
	cmd.Flags().StringVar(&runStrategy, "strategy", "", "Override the strategy of every alloc step (first_fit, best_fit, next_fit)")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay a scenario against each configured variant",
		Long: `The run command replays the steps of a scenario file against a fresh
allocator for every variant it lists, printing the outcome of each step,
a bar of owned and free cells, and the fragmentation figures.

Example:
  memsim run demo.yaml
  memsim run demo.yaml --strategy best_fit --dump
  memsim run demo.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), args)
		},
	}
}

// loadScenario reads the scenario and applies --strategy.
func loadScenario(path, strategy string) (*sim.Scenario, error) {
	printVerbose("Loading scenario: %s\n", path)
	sc, err := sim.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	if strategy == "" {
		return sc, nil
	}
	s, err := placement.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	for i := range sc.Steps {
		if sc.Steps[i].Op == sim.OpAlloc {
			sc.Steps[i].Strategy = s
		}
	}
	return sc, nil
}

func runRun(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sc, err := loadScenario(args[0], runStrategy)
	if err != nil {
		return err
	}

	results, err := sim.Run(ctx, sc, nil)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]interface{}{
			"scenario": sc.Name,
			"results":  results,
		})
	}

	r := newRenderer()
	printInfo("Scenario: %s\n", sc.Name)
	for _, res := range results {
		printInfo("\n== %s ==\n", res.Label)
		for _, sr := range res.Steps {
			if sr.OK {
				printVerbose("  %3d  %-36s ok\n", sr.Index, sr.Step)
			} else {
				printInfo("  %3d  %-36s FAILED: %v\n", sr.Index, sr.Step, sr.Err)
			}
		}
		printInfo("  %s\n", r.Bar(res.Session.Cells()))
		printInfo("  %s\n", r.Legend(res.Report))
		printInfo("  allocations %d/%d (%s), internal waste %s cells\n",
			res.Tally.Succeeded, res.Tally.Attempted, r.Percent(res.Tally.Efficiency()), r.Number(res.InternalWaste))
		printVerbose("  %s\n", describeVariant(res.Session))
		if res.Violation != "" {
			printInfo("  invariant violated: %s\n", res.Violation)
		}

		if runDumpCells {
			printInfo("\n%s", res.Session.Dump())
		}
	}
	return nil
}

// describeVariant reports the variant-specific bookkeeping for --verbose.
func describeVariant(s *sim.Session) string {
	var desc string
	s.With(func(a alloc.Allocator) {
		switch v := a.(type) {
		case *alloc.Fixed:
			desc = fmt.Sprintf("partitions: %s", slotSummary(v.Partitions()))
		case *alloc.Unequal:
			desc = fmt.Sprintf("partitions: %s", slotSummary(v.Partitions()))
		case *alloc.Buddy:
			desc = fmt.Sprintf("free blocks: %v", v.FreeBlocks())
		case *alloc.Paged:
			desc = fmt.Sprintf("free pages: %v, page table: %v", v.FreePages(), v.PageTable())
		default:
			desc = fmt.Sprintf("free runs: %v", a.Space().FreeRuns())
		}
	})
	return desc
}

func slotSummary(slots []alloc.Slot) string {
	var b strings.Builder
	for i, sl := range slots {
		if i > 0 {
			b.WriteByte(' ')
		}
		if sl.Used {
			fmt.Fprintf(&b, "%d:%d=P%d", sl.Offset, sl.Size, sl.Owner)
		} else {
			fmt.Fprintf(&b, "%d:%d=free", sl.Offset, sl.Size)
		}
	}
	return b.String()
}
