// =============================================================================
// txgen - Ledger Command
// =============================================================================
//
// This file defines the 'ledger' command, which replays a transaction file
// through the account ledger and writes the final state of every client.
//
// COMMAND USAGE:
//   txgen ledger FILE [flags]
//
// FLAGS:
//   --output : Destination file (default: stdout)
//   --format : csv or xml
//
// Rejected transactions (insufficient funds, unknown references, locked
// accounts, ...) are counted and logged at debug level; they do not fail the
// command. A malformed row does.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txgen/internal/csvparser"
	"github.com/ginjaninja78/txgen/internal/ledger"
	"github.com/ginjaninja78/txgen/internal/xmlwriter"
)

// Output formats.
const (
	formatCSV = "csv"
	formatXML = "xml"
)

var (
	ledgerOutput string
	ledgerFormat string
)

type ledgerParams struct {
	File   string
	Output string
	Format string
}

// =============================================================================
// LEDGER COMMAND DEFINITION
// =============================================================================

var ledgerCmd = &cobra.Command{
	Use:   "ledger FILE",
	Short: "Replay a transaction file and print client account states",
	Long: `The ledger command applies every transaction in FILE, in order, to a set of
client accounts and writes one line per client with its available, held and
total funds and whether the account is locked.

Amounts are printed with at most four decimal places.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runLedger(logger, ledgerParams{
			File:   args[0],
			Output: ledgerOutput,
			Format: ledgerFormat,
		}, cmd.OutOrStdout())
		return err
	},
}

// init registers the ledger command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(ledgerCmd)

	ledgerCmd.Flags().StringVarP(&ledgerOutput, "output", "o", "", "Write account states to this file instead of stdout")
	ledgerCmd.Flags().StringVar(&ledgerFormat, "format", formatCSV, "Output format: csv or xml")
}

// =============================================================================
// MAIN REPLAY FUNCTION
// =============================================================================

// runLedger replays params.File and writes the account states to
// params.Output, or to stdout when it is empty.
func runLedger(log logrus.FieldLogger, params ledgerParams, stdout io.Writer) (ledger.Stats, error) {
	format := strings.ToLower(params.Format)
	if format == "" {
		format = formatCSV
	}
	if format != formatCSV && format != formatXML {
		return ledger.Stats{}, fmt.Errorf("unknown format %q (expected csv or xml)", params.Format)
	}

	parser, err := csvparser.NewStreamingParser(params.File)
	if err != nil {
		return ledger.Stats{}, fmt.Errorf("failed to read %s: %w", params.File, err)
	}
	defer parser.Close()

	fileLog := log.WithField("file", params.File)

	l := ledger.New(fileLog)
	if err := l.Replay(parser); err != nil {
		return l.Stats(), fmt.Errorf("failed to replay %s: %w", params.File, err)
	}

	stats := l.Stats()
	fileLog.WithFields(logrus.Fields{
		"applied":  stats.Applied,
		"rejected": stats.Rejected,
	}).Info("replay finished")
	for reason, n := range stats.Reasons {
		fileLog.WithFields(logrus.Fields{"reason": reason, "count": n}).Debug("rejections")
	}

	if err := writeSnapshots(l.Snapshots(), format, params.Output, stdout); err != nil {
		return stats, err
	}

	return stats, nil
}

// writeSnapshots renders the account states in format to path or stdout.
func writeSnapshots(snapshots []ledger.Snapshot, format, path string, stdout io.Writer) (err error) {
	out := stdout
	if path != "" {
		var file *os.File
		file, err = os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", cerr)
			}
		}()
		out = file
	}

	if format == formatXML {
		doc, err := xmlwriter.Generate(snapshots)
		if err != nil {
			return err
		}
		if _, err := out.Write(doc); err != nil {
			return fmt.Errorf("failed to write statement: %w", err)
		}
		return nil
	}

	return ledger.WriteCSV(out, snapshots)
}
