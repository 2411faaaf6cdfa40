// =============================================================================
// txgen - Generate Command
// =============================================================================
//
// This file defines the 'generate' command, which writes the random
// transaction file. It is also what a bare 'txgen' runs.
//
// COMMAND USAGE:
//   txgen generate [flags]
//
// FLAGS:
//   --output   : Output path, may contain {uuid}, {timestamp}, {date}, {seed}
//   --count    : Number of data rows
//   --seed     : Generator seed, 0 for a random one
//   --summary  : Print a per-kind table after the run
//
// PIPELINE:
//   1. Merge flags over the configuration
//   2. Seed the generator and resolve the output path
//   3. Stream the header and records to the file
//   4. Log the run and optionally write a summary file
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txgen/internal/config"
	"github.com/ginjaninja78/txgen/internal/csvwriter"
	"github.com/ginjaninja78/txgen/internal/generator"
	"github.com/ginjaninja78/txgen/internal/types"
	"github.com/ginjaninja78/txgen/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	genOutput  string
	genCount   int
	genSeed    uint64
	genSummary bool
)

// generateParams holds the flag values that were set explicitly. Nil or
// empty fields fall back to the configuration.
type generateParams struct {
	Output  string
	Count   *int
	Seed    *uint64
	Summary bool
}

// =============================================================================
// GENERATE COMMAND DEFINITION
// =============================================================================

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a CSV file of random transactions",
	Long: `The generate command writes a header row followed by random transaction
records. Each record has a uniformly chosen type, a client id and a tx id.
Deposits and withdrawals carry a positive amount; every other type has 0.

An existing output file is truncated. On failure the file may be incomplete
and should be discarded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var params generateParams
		if cmd.Flags().Changed("output") {
			params.Output = genOutput
		}
		if cmd.Flags().Changed("count") {
			params.Count = &genCount
		}
		if cmd.Flags().Changed("seed") {
			params.Seed = &genSeed
		}
		params.Summary = genSummary

		_, err := runGenerate(appConfig, logger, params, cmd.OutOrStdout())
		return err
	},
}

// init registers the generate command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file path (default from config)")
	generateCmd.Flags().IntVarP(&genCount, "count", "n", csvwriter.DefaultCount, "Number of records to generate")
	generateCmd.Flags().Uint64Var(&genSeed, "seed", 0, "Random seed, 0 picks one")
	generateCmd.Flags().BoolVar(&genSummary, "summary", false, "Print a per-type summary table")
}

// =============================================================================
// MAIN GENERATION FUNCTION
// =============================================================================

// runGenerate writes one transaction file.
//
// PARAMETERS:
//   - cfg: The loaded configuration.
//   - log: Receives progress and the final run line.
//   - params: Explicit flag values overriding cfg.
//   - out: Where the --summary table goes.
//
// RETURNS:
//   - The writer stats.
//   - An error if the bounds are invalid or the file cannot be written.
func runGenerate(cfg *config.Config, log logrus.FieldLogger, params generateParams, out io.Writer) (csvwriter.Stats, error) {
	startTime := time.Now()
	runID := uuid.New().String()

	count := cfg.Count()
	if params.Count != nil {
		count = *params.Count
	}
	seed := cfg.Seed
	if params.Seed != nil {
		seed = *params.Seed
	}
	pattern := cfg.OutputPath
	if params.Output != "" {
		pattern = params.Output
	}

	bounds := cfg.Bounds()
	if err := bounds.Validate(); err != nil {
		return csvwriter.Stats{}, err
	}

	gen := generator.NewSeeded(seed, bounds)

	path := utils.ResolveOutputPath(pattern, map[string]string{
		"uuid": runID,
		"seed": strconv.FormatUint(gen.Seed(), 10),
	})
	if err := utils.EnsureParentDir(path); err != nil {
		return csvwriter.Stats{}, err
	}

	runLog := log.WithFields(logrus.Fields{
		"run_id": runID,
		"output": path,
		"seed":   gen.Seed(),
	})
	runLog.WithField("count", count).Debug("generating transactions")

	opts := csvwriter.DefaultOptions()
	opts.ProgressEvery = cfg.ProgressInterval
	opts.Progress = func(rows int) {
		runLog.WithField("rows", rows).Debug("progress")
	}

	stats, err := csvwriter.Write(path, count, gen, opts)
	if err != nil {
		return stats, fmt.Errorf("failed to generate %s: %w", path, err)
	}

	runLog.WithFields(logrus.Fields{
		"rows":    stats.Rows,
		"elapsed": stats.Elapsed.Round(time.Millisecond).String(),
	}).Info("transactions written")

	if cfg.SummaryDir != "" {
		summaryPath, err := utils.WriteSummaryLog(utils.RunSummary{
			RunID:       runID,
			StartTime:   startTime,
			EndTime:     time.Now(),
			OutputFile:  path,
			Seed:        gen.Seed(),
			Rows:        stats.Rows,
			KindCounts:  kindCountsByName(stats.KindCounts),
			AmountTotal: stats.AmountTotal,
		}, cfg.SummaryDir)
		if err != nil {
			return stats, err
		}
		runLog.WithField("summary", summaryPath).Debug("run summary written")
	}

	if params.Summary {
		renderKindTable(out, stats.Rows, stats.KindCounts, nil)
	}

	return stats, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func kindCountsByName(counts map[types.Kind]int) map[string]int {
	byName := make(map[string]int, len(counts))
	for kind, n := range counts {
		byName[string(kind)] = n
	}
	return byName
}

// renderKindTable prints one row per kind with its count and share of rows.
// Amount totals are shown when given.
func renderKindTable(out io.Writer, rows int, counts map[types.Kind]int, amounts map[types.Kind]float64) {
	table := tablewriter.NewWriter(out)

	headers := []string{"Type", "Rows", "Share"}
	if amounts != nil {
		headers = append(headers, "Amount Total")
	}
	table.SetHeader(headers)

	for _, kind := range types.Kinds {
		var share float64
		if rows > 0 {
			share = float64(counts[kind]) / float64(rows) * 100
		}

		row := []string{string(kind), strconv.Itoa(counts[kind]), fmt.Sprintf("%.2f%%", share)}
		if amounts != nil {
			row = append(row, fmt.Sprintf("%.2f", amounts[kind]))
		}
		table.Append(row)
	}

	table.Render()
}
