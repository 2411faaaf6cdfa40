// =============================================================================
// txgen - Validation Module
// =============================================================================
//
// This module checks transaction records and whole transaction files against
// the record rules:
//   - type is one of deposit, withdrawal, dispute, resolve, chargeback
//   - client is within [0, ClientMax] and tx within [0, TxMax]
//   - amount is zero exactly when type is dispute, resolve or chargeback
//   - amount is never negative (and below AmountMax when one is set)
//
// For files it also checks the header row and, optionally, the number of
// data rows.
//
// ERROR REPORTING:
//   Every violation becomes a ValidationError carrying the file line, the
//   field and the offending value. Validation never stops at the first bad
//   row unless StopOnFirstError is set; MaxErrors caps how many are kept.
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/txgen/internal/csvparser"
	"github.com/ginjaninja78/txgen/internal/types"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleHeader   = "header"
	RuleParse    = "parse"
	RuleKind     = "kind"
	RuleRange    = "range"
	RuleAmount   = "amount"
	RuleRowCount = "row_count"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	// Severity is "error" for violations and "warning" for oddities that do
	// not break the record rules.
	Severity string

	// Line is the 1-based line in the file, or 0 for a record checked on its
	// own.
	Line int

	// Field is the column name, empty for file-level problems.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the rule that was violated.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(strings.ToUpper(e.Severity))
	b.WriteString("]")
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field '%s'", e.Field)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validating a file.
type ValidationResult struct {
	// FilePath is the validated file.
	FilePath string

	// IsValid is true if no error-severity problems were found.
	IsValid bool

	// Errors holds the kept problems, at most MaxErrors of them.
	Errors []*ValidationError

	// ErrorCount and WarningCount count every problem, kept or not.
	ErrorCount   int
	WarningCount int

	// Header is the header row as read.
	Header []string

	// RowsValidated is the number of data rows read.
	RowsValidated int

	// KindCounts counts rows per kind. Rows with an unknown kind are not
	// counted.
	KindCounts map[types.Kind]int

	// AmountTotals sums amounts per kind.
	AmountTotals map[types.Kind]float64

	// Stopped is true when StopOnFirstError ended the run early.
	Stopped bool

	Elapsed time.Duration
}

// Truncated reports whether some problems were counted but not kept.
func (r *ValidationResult) Truncated() bool {
	return len(r.Errors) < r.ErrorCount+r.WarningCount
}

// Share returns the fraction of validated rows that have kind k.
func (r *ValidationResult) Share(k types.Kind) float64 {
	if r.RowsValidated == 0 {
		return 0
	}
	return float64(r.KindCounts[k]) / float64(r.RowsValidated)
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// ClientMax and TxMax are the inclusive id bounds.
	ClientMax int
	TxMax     int

	// AmountMax is the exclusive amount bound; 0 disables the check.
	AmountMax float64

	// StrictHeader requires the header to be exactly type,client,tx,amount.
	// Otherwise any column order is accepted.
	StrictHeader bool

	// ExpectedRows is the required number of data rows; negative disables
	// the check.
	ExpectedRows int

	// StopOnFirstError stops validation after the first error.
	StopOnFirstError bool

	// MaxErrors caps how many problems are kept in the result.
	MaxErrors int
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		ClientMax:    10_000,
		TxMax:        100_000,
		AmountMax:    100_000,
		StrictHeader: true,
		ExpectedRows: -1,
		MaxErrors:    1000,
	}
}

// Validator performs validation on records and files.
type Validator struct {
	options ValidationOptions
}

// NewValidator creates a new Validator with the default options.
func NewValidator() *Validator {
	return NewValidatorWithOptions(DefaultValidationOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// Options returns the validator options.
func (v *Validator) Options() ValidationOptions {
	return v.options
}

// =============================================================================
// RECORD VALIDATION
// =============================================================================

// ValidateRecord checks a single record against the record rules.
func ValidateRecord(rec types.Record, clientMax, txMax int) []*ValidationError {
	return checkRecord(rec, 0, clientMax, txMax, 0)
}

// ValidateRow checks one row read from a file.
func (v *Validator) ValidateRow(row types.Row) []*ValidationError {
	if row.Err != nil {
		return []*ValidationError{{
			Severity: SeverityError,
			Line:     row.Line,
			Rule:     RuleParse,
			Value:    strings.Join(row.Raw[:], ","),
			Message:  row.Err.Error(),
		}}
	}
	return checkRecord(row.Record, row.Line, v.options.ClientMax, v.options.TxMax, v.options.AmountMax)
}

func checkRecord(rec types.Record, line, clientMax, txMax int, amountMax float64) []*ValidationError {
	var errs []*ValidationError

	fail := func(field, value, rule, msg string) {
		errs = append(errs, &ValidationError{
			Severity: SeverityError,
			Line:     line,
			Field:    field,
			Value:    value,
			Rule:     rule,
			Message:  msg,
		})
	}

	if !rec.Type.Valid() {
		fail("type", string(rec.Type), RuleKind, "unknown transaction type")
	}

	if rec.Client < 0 || rec.Client > clientMax {
		fail("client", strconv.Itoa(rec.Client), RuleRange, fmt.Sprintf("client must be within [0, %d]", clientMax))
	}

	if rec.Tx < 0 || rec.Tx > txMax {
		fail("tx", strconv.Itoa(rec.Tx), RuleRange, fmt.Sprintf("tx must be within [0, %d]", txMax))
	}

	amount := types.FormatAmount(rec.Amount)
	switch {
	case rec.Amount < 0:
		fail("amount", amount, RuleAmount, "amount must not be negative")
	case rec.Type.CarriesAmount() && rec.Amount == 0:
		fail("amount", amount, RuleAmount, fmt.Sprintf("%s must carry a nonzero amount", rec.Type))
	case rec.Type.Valid() && !rec.Type.CarriesAmount() && rec.Amount != 0:
		fail("amount", amount, RuleAmount, fmt.Sprintf("%s must have a zero amount", rec.Type))
	case amountMax > 0 && rec.Amount >= amountMax:
		fail("amount", amount, RuleRange, fmt.Sprintf("amount must be below %s", types.FormatAmount(amountMax)))
	}

	return errs
}

// ValidateHeader checks the header row.
func (v *Validator) ValidateHeader(header []string) []*ValidationError {
	if !v.options.StrictHeader {
		// The parser has already resolved every required column.
		if len(header) > len(types.Header) {
			return []*ValidationError{{
				Severity: SeverityWarning,
				Line:     1,
				Rule:     RuleHeader,
				Value:    strings.Join(header, ","),
				Message:  fmt.Sprintf("%d extra column(s) ignored", len(header)-len(types.Header)),
			}}
		}
		return nil
	}

	if strings.Join(header, ",") == strings.Join(types.Header, ",") {
		return nil
	}

	return []*ValidationError{{
		Severity: SeverityError,
		Line:     1,
		Rule:     RuleHeader,
		Value:    strings.Join(header, ","),
		Message:  fmt.Sprintf("header must be %q", strings.Join(types.Header, ",")),
	}}
}

// =============================================================================
// FILE VALIDATION
// =============================================================================

// ValidateFile streams filePath and checks the header and every row.
//
// RETURNS:
//   - The validation result. Rule violations are reported here, not as an
//     error.
//   - An error if the file cannot be opened or read, or has no usable header.
func (v *Validator) ValidateFile(filePath string) (*ValidationResult, error) {
	start := time.Now()

	parser, err := csvparser.NewStreamingParser(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	defer parser.Close()

	result := &ValidationResult{
		FilePath:     filePath,
		Header:       append([]string(nil), parser.Header()...),
		KindCounts:   make(map[types.Kind]int, len(types.Kinds)),
		AmountTotals: make(map[types.Kind]float64, len(types.Kinds)),
	}

	v.collect(result, v.ValidateHeader(parser.Header()))

	for !result.Stopped && parser.Next() {
		row := parser.Row()
		result.RowsValidated++

		if row.Err == nil && row.Record.Type.Valid() {
			result.KindCounts[row.Record.Type]++
			result.AmountTotals[row.Record.Type] += row.Record.Amount
		}

		v.collect(result, v.ValidateRow(row))
	}

	if err := parser.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	if !result.Stopped && v.options.ExpectedRows >= 0 && result.RowsValidated != v.options.ExpectedRows {
		v.collect(result, []*ValidationError{{
			Severity: SeverityError,
			Rule:     RuleRowCount,
			Value:    strconv.Itoa(result.RowsValidated),
			Message:  fmt.Sprintf("expected %d data rows", v.options.ExpectedRows),
		}})
	}

	result.IsValid = result.ErrorCount == 0
	result.Elapsed = time.Since(start)

	return result, nil
}

// collect adds problems to the result, honouring MaxErrors and
// StopOnFirstError.
func (v *Validator) collect(result *ValidationResult, errs []*ValidationError) {
	for _, e := range errs {
		if e.Severity == SeverityWarning {
			result.WarningCount++
		} else {
			result.ErrorCount++
		}

		if v.options.MaxErrors <= 0 || len(result.Errors) < v.options.MaxErrors {
			result.Errors = append(result.Errors, e)
		}

		if v.options.StopOnFirstError && e.Severity == SeverityError {
			result.Stopped = true
		}
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats a list of validation errors, one per line.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation found %d error(s):\n", len(errors))
	for i, e := range errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, e.Error())
	}

	return b.String()
}

// WriteErrorLog writes the result's problems to filePath.
func WriteErrorLog(result *ValidationResult, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)

	fmt.Fprintf(w, "txgen - Validation Error Log\n"+
		"Generated: %s\n"+
		"File:      %s\n"+
		"Rows:      %d\n"+
		"Errors:    %d\n"+
		"Warnings:  %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		result.FilePath,
		result.RowsValidated,
		result.ErrorCount,
		result.WarningCount)

	for _, e := range result.Errors {
		fmt.Fprintln(w, e.Error())
	}

	if result.Truncated() {
		fmt.Fprintf(w, "\n... %d more not shown\n", result.ErrorCount+result.WarningCount-len(result.Errors))
	}

	fmt.Fprint(w, "\n================================================================================\n"+
		"End of Error Log\n")

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}

	return file.Close()
}
