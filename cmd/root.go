// =============================================================================
// txgen - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (txgen)             runs 'generate' with the configured defaults
//   ├── generateCmd (txgen generate)
//   ├── verifyCmd   (txgen verify FILE)
//   ├── ledgerCmd   (txgen ledger FILE)
//   └── versionCmd  (txgen version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the YAML configuration before any command runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txgen/internal/config"
	"github.com/ginjaninja78/txgen/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose forces debug logging when set to true.
var verbose bool

// appConfig and logger are set up by loadRuntime before any command runs.
var (
	appConfig *config.Config
	logger    *logging.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "txgen",
	Short: "txgen - Random financial transaction CSV generator",
	Long: `txgen writes a CSV file of randomly generated financial transactions
(deposit, withdrawal, dispute, resolve, chargeback) for load-testing and
exercising transaction-processing engines.

Key Features:
  - One million rows by default, streamed through a buffered writer
  - Reproducible runs with --seed
  - Verification of generated files with optional XLSX report
  - Ledger replay producing final client account states

Example Usage:
  txgen                                 # Write transactions.csv with defaults
  txgen generate --count 1000 --seed 42 # Small reproducible file
  txgen verify transactions.csv         # Check a file and print the distribution
  txgen ledger transactions.csv         # Replay a file and print account states`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadRuntime()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},

	// A bare invocation behaves like 'txgen generate'.
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runGenerate(appConfig, logger, generateParams{}, cmd.OutOrStdout())
		return err
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: Path to the YAML configuration file. A missing file
	// means defaults.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"txgen.yaml",
		"Path to the configuration file",
	)

	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// loadRuntime loads the configuration and builds the logger.
func loadRuntime() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	log, err := logging.New(logging.Config{
		Level:    level,
		Format:   cfg.LogFormat,
		FilePath: cfg.LogFile,
	})
	if err != nil {
		return err
	}

	appConfig = cfg
	logger = log
	return nil
}
