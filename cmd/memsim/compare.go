package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memsim/pkg/sim"
)

var compareStrategy string

func init() {
	cmd := newCompareCmd()
	cmd.Flags().StringVar(&compareStrategy, "strategy", "", "Override the strategy of every alloc step (first_fit, best_fit, next_fit)")
	rootCmd.AddCommand(cmd)
}

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <scenario.yaml>",
		Short: "Compare allocation efficiency across variants",
		Long: `The compare command replays a scenario against every variant it lists
and prints, per variant configuration, how many allocations were attempted,
how many succeeded, and the resulting efficiency.

Example:
  memsim compare demo.yaml
  memsim compare demo.yaml --strategy next_fit --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), args)
		},
	}
}

func runCompare(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sc, err := loadScenario(args[0], compareStrategy)
	if err != nil {
		return err
	}

	cmp := sim.NewComparison()
	if _, err := sim.Run(ctx, sc, cmp); err != nil {
		return err
	}
	rows := cmp.Rows()

	if jsonOut {
		return printJSON(map[string]interface{}{
			"scenario": sc.Name,
			"rows":     rows,
		})
	}

	printInfo("Scenario: %s\n\n", sc.Name)
	printInfo("%s", newRenderer().Efficiency(rows))
	return nil
}
