package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/memsim/pkg/sim"
)

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Check a scenario file without running it",
		Long: `The validate command parses a scenario file, checks every step, and
constructs each listed variant to report misconfiguration such as a buddy
size that is not a power of two or partitions larger than the space.

Example:
  memsim validate demo.yaml
  memsim validate demo.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args)
		},
	}
}

func runValidate(args []string) error {
	path := args[0]

	printVerbose("Validating scenario: %s\n", path)

	sc, err := sim.LoadScenario(path)

	result := map[string]interface{}{
		"file":  path,
		"valid": err == nil,
	}
	if err != nil {
		result["error"] = err.Error()
	} else {
		labels := make([]string, len(sc.Variants))
		for i, v := range sc.Variants {
			labels[i] = v.Label()
		}
		result["name"] = sc.Name
		result["variants"] = labels
		result["steps"] = len(sc.Steps)
	}

	if jsonOut {
		if jerr := printJSON(result); jerr != nil {
			return jerr
		}
		return err
	}

	printInfo("\nValidating %s...\n\n", path)
	if err != nil {
		printInfo("  ✗ %v\n", err)
		printInfo("\nResult: ✗ INVALID\n")
		return err
	}

	for _, v := range sc.Variants {
		printInfo("  ✓ %s\n", v.Label())
	}
	printInfo("  ✓ %d steps\n", len(sc.Steps))
	printInfo("\nResult: ✓ VALID\n")
	return nil
}
