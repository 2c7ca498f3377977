package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/joshuapare/memsim/internal/logger"
	"github.com/joshuapare/memsim/internal/render"
)

const (
	envPrefix = "MEMSIM"
	keyConfig = "config"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	noColor bool
	debug   bool
	logDir  string
	cfgFile string
	width   int
)

var rootCmd = &cobra.Command{
	Use:   "memsim",
	Short: "Simulate memory allocation strategies",
	Long: `memsim replays scripted allocate/deallocate requests against fixed,
unequal, dynamic, buddy and paging allocators and reports placement,
fragmentation and allocation efficiency.

Every flag can also be set through a config file (--config) or an
environment variable prefixed with MEMSIM_, e.g. MEMSIM_NO_COLOR=true.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(cmd); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}
		return initLogging()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs to stderr (or --log-dir)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for daily debug log files")
	rootCmd.PersistentFlags().StringVar(&cfgFile, keyConfig, "", "Config file (yaml, json or toml)")
	rootCmd.PersistentFlags().IntVar(&width, "width", 64, "Maximum width of the memory bar, 0 for one character per cell")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// initializeConfig reads the config file and MEMSIM_* environment variables
// and applies them to every flag not set on the command line.
func initializeConfig(cmd *cobra.Command) error {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := bindFlags(cmd, v); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// bindFlags binds each cobra flag to its viper key (config file and environment variable).
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == keyConfig {
			return
		}

		// Environment variables can't have dashes: --no-color binds to MEMSIM_NO_COLOR
		if strings.Contains(f.Name, "-") {
			envVar := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name, envVar); err != nil {
				errs = append(errs, fmt.Errorf("binding env to flag %q: %w", f.Name, err))
				return
			}
		}

		if !f.Changed && v.IsSet(f.Name) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				errs = append(errs, fmt.Errorf("setting flag %q value: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

func initLogging() error {
	return logger.Init(logger.Options{
		Enabled: debug,
		LogDir:  logDir,
		Level:   slog.LevelDebug,
		JSON:    jsonOut,
	})
}

// newRenderer builds a renderer honouring --no-color and --width.
func newRenderer() *render.Renderer {
	return render.New(render.Options{Color: !noColor, Width: width})
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
