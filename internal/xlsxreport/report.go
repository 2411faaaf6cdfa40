// =============================================================================
// txgen - XLSX Verification Report
// =============================================================================
//
// This module writes the result of `txgen verify` to a workbook so it can be
// shared without the terminal output.
//
// WORKBOOK STRUCTURE:
//   Summary  | Type | Rows | Share | Amount Total |   one row per kind + total
//   Run      | key/value pairs: file, run id, rows, errors, verdict
//   Errors   | Line | Field | Rule | Value | Message |   only when errors exist
//
// =============================================================================

package xlsxreport

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/txgen/internal/types"
	"github.com/ginjaninja78/txgen/internal/validation"
)

// Sheet names.
const (
	SummarySheet = "Summary"
	RunSheet     = "Run"
	ErrorsSheet  = "Errors"
)

// excelize built-in number formats.
const (
	numFmtThousands2 = 4  // #,##0.00
	numFmtPercent2   = 10 // 0.00%
)

// Report is the input of Write.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Result      *validation.ValidationResult

	// MaxErrorRows caps the Errors sheet; 0 means 500.
	MaxErrorRows int
}

// Write renders the report to an .xlsx file at path.
func Write(path string, report Report) error {
	if report.Result == nil {
		return fmt.Errorf("report has no validation result")
	}
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = time.Now()
	}
	if report.MaxErrorRows <= 0 {
		report.MaxErrorRows = 500
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	// The default sheet becomes the summary.
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := writeSummary(f, report.Result, styles); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", SummarySheet, err)
	}
	if err := writeRun(f, report, styles); err != nil {
		return fmt.Errorf("failed to write %s sheet: %w", RunSheet, err)
	}
	if len(report.Result.Errors) > 0 {
		if err := writeErrors(f, report.Result.Errors, report.MaxErrorRows, styles); err != nil {
			return fmt.Errorf("failed to write %s sheet: %w", ErrorsSheet, err)
		}
	}

	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

type styleSet struct {
	header  int
	percent int
	money   int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.percent, err = f.NewStyle(&excelize.Style{NumFmt: numFmtPercent2}); err != nil {
		return s, fmt.Errorf("failed to create percent style: %w", err)
	}
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: numFmtThousands2}); err != nil {
		return s, fmt.Errorf("failed to create amount style: %w", err)
	}

	return s, nil
}

// writeHeader writes a bold header row at A1.
func writeHeader(f *excelize.File, sheet string, headers []interface{}, styles styleSet) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, styles.header)
}

func writeSummary(f *excelize.File, result *validation.ValidationResult, styles styleSet) error {
	sheet := SummarySheet

	if err := writeHeader(f, sheet, []interface{}{"Type", "Rows", "Share", "Amount Total"}, styles); err != nil {
		return err
	}

	row := 2
	var counted int
	var amount float64
	for _, kind := range types.Kinds {
		count := result.KindCounts[kind]
		counted += count
		amount += result.AmountTotals[kind]

		values := []interface{}{string(kind), count, result.Share(kind), result.AmountTotals[kind]}
		if err := setRow(f, sheet, row, values); err != nil {
			return err
		}
		row++
	}

	var share float64
	if result.RowsValidated > 0 {
		share = float64(counted) / float64(result.RowsValidated)
	}
	if err := setRow(f, sheet, row, []interface{}{"total", counted, share, amount}); err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, "C2", fmt.Sprintf("C%d", row), styles.percent); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "D2", fmt.Sprintf("D%d", row), styles.money); err != nil {
		return err
	}

	return f.SetColWidth(sheet, "A", "D", 16)
}

func writeRun(f *excelize.File, report Report, styles styleSet) error {
	sheet := RunSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	result := report.Result
	verdict := "valid"
	if !result.IsValid {
		verdict = "invalid"
	}

	pairs := [][]interface{}{
		{"File", result.FilePath},
		{"Run ID", report.RunID},
		{"Generated", report.GeneratedAt.Format(time.RFC3339)},
		{"Header", fmt.Sprintf("%v", result.Header)},
		{"Rows", result.RowsValidated},
		{"Errors", result.ErrorCount},
		{"Warnings", result.WarningCount},
		{"Elapsed", result.Elapsed.String()},
		{"Verdict", verdict},
	}

	if err := writeHeader(f, sheet, []interface{}{"Key", "Value"}, styles); err != nil {
		return err
	}
	for i, pair := range pairs {
		if err := setRow(f, sheet, i+2, pair); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheet, "A", "B", 24)
}

func writeErrors(f *excelize.File, errs []*validation.ValidationError, limit int, styles styleSet) error {
	sheet := ErrorsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := writeHeader(f, sheet, []interface{}{"Line", "Field", "Rule", "Value", "Message"}, styles); err != nil {
		return err
	}

	for i, e := range errs {
		if i >= limit {
			break
		}
		if err := setRow(f, sheet, i+2, []interface{}{e.Line, e.Field, e.Rule, e.Value, e.Message}); err != nil {
			return err
		}
	}

	return f.SetColWidth(sheet, "E", "E", 60)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
