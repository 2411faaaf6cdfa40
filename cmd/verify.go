// =============================================================================
// txgen - Verify Command
// =============================================================================
//
// This file defines the 'verify' command, which checks a transaction file
// against the generator's guarantees.
//
// COMMAND USAGE:
//   txgen verify FILE [flags]
//
// FLAGS:
//   --expect-rows : Required number of data rows (default: not checked)
//   --xlsx        : Also write an XLSX report to this path
//   --error-log   : Also write the problems to this text file
//
// CHECKS:
//   - Header is exactly type,client,tx,amount
//   - Every type is one of the five kinds
//   - client and tx are within the configured bounds
//   - amount is positive for deposit/withdrawal and 0 otherwise
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/txgen/internal/config"
	"github.com/ginjaninja78/txgen/internal/validation"
	"github.com/ginjaninja78/txgen/internal/xlsxreport"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	verifyExpectRows int
	verifyXLSX       string
	verifyErrorLog   string
)

// errInvalidFile is returned when verification finds at least one error.
var errInvalidFile = errors.New("file failed verification")

type verifyParams struct {
	File         string
	ExpectedRows int
	XLSXPath     string
	ErrorLogPath string
}

// =============================================================================
// VERIFY COMMAND DEFINITION
// =============================================================================

var verifyCmd = &cobra.Command{
	Use:   "verify FILE",
	Short: "Check a transaction file and print its type distribution",
	Long: `The verify command streams a transaction file, checks the header and every
row, and prints how the rows are distributed over the transaction types.

Bounds come from the configuration, so a file generated with custom
client_max/tx_max/amount_max must be verified with the same settings.
The command exits non-zero when any problem is found.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runVerify(appConfig, logger, verifyParams{
			File:         args[0],
			ExpectedRows: verifyExpectRows,
			XLSXPath:     verifyXLSX,
			ErrorLogPath: verifyErrorLog,
		}, cmd.OutOrStdout())
		return err
	},
}

// init registers the verify command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().IntVar(&verifyExpectRows, "expect-rows", -1, "Required number of data rows, negative to skip")
	verifyCmd.Flags().StringVar(&verifyXLSX, "xlsx", "", "Write an XLSX report to this path")
	verifyCmd.Flags().StringVar(&verifyErrorLog, "error-log", "", "Write problems to this text file")
}

// =============================================================================
// MAIN VERIFICATION FUNCTION
// =============================================================================

// runVerify validates one file and reports on it.
//
// RETURNS:
//   - The validation result, also when the file is invalid.
//   - errInvalidFile (wrapped) if any error-severity problem was found, or
//     the error that stopped the file from being read.
func runVerify(cfg *config.Config, log logrus.FieldLogger, params verifyParams, out io.Writer) (*validation.ValidationResult, error) {
	opts := validation.DefaultValidationOptions()
	opts.ClientMax = cfg.ClientMax
	opts.TxMax = cfg.TxMax
	opts.AmountMax = cfg.AmountMax
	opts.ExpectedRows = params.ExpectedRows

	validator := validation.NewValidatorWithOptions(opts)

	result, err := validator.ValidateFile(params.File)
	if err != nil {
		return nil, err
	}

	fileLog := log.WithField("file", params.File)

	renderKindTable(out, result.RowsValidated, result.KindCounts, result.AmountTotals)

	if result.ErrorCount+result.WarningCount > 0 {
		fmt.Fprint(out, validation.FormatErrors(result.Errors))
		if result.Truncated() {
			fmt.Fprintf(out, "  ... %d more not shown\n", result.ErrorCount+result.WarningCount-len(result.Errors))
		}
	}

	if params.ErrorLogPath != "" {
		if err := validation.WriteErrorLog(result, params.ErrorLogPath); err != nil {
			return result, err
		}
		fileLog.WithField("error_log", params.ErrorLogPath).Debug("error log written")
	}

	if params.XLSXPath != "" {
		err := xlsxreport.Write(params.XLSXPath, xlsxreport.Report{
			RunID:  uuid.New().String(),
			Result: result,
		})
		if err != nil {
			return result, err
		}
		fileLog.WithField("report", params.XLSXPath).Debug("XLSX report written")
	}

	fileLog.WithFields(logrus.Fields{
		"rows":     result.RowsValidated,
		"errors":   result.ErrorCount,
		"warnings": result.WarningCount,
	}).Info("verification finished")

	if !result.IsValid {
		return result, fmt.Errorf("%w: %s has %d error(s)", errInvalidFile, params.File, result.ErrorCount)
	}

	return result, nil
}
