// =============================================================================
// txgen - File Manager Utility
// =============================================================================
//
// This module provides file helpers shared by the commands:
//   - Output path resolution with placeholders
//   - Directory management
//   - Run summary logs
//   - Line counting
//
// OUTPUT PATHS:
//   The configured output path may contain placeholders so each run writes a
//   fresh file:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {seed}      - The generator seed
//   A path without placeholders is used as-is.
//
// =============================================================================

package utils

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OUTPUT PATHS
// =============================================================================

// ResolveOutputPath expands the placeholders in pattern. Keys of params are
// placeholder names without braces and override the built-in values.
//
// EXAMPLE:
//   pattern: "out/tx_{date}_{uuid}.csv"
//   output:  "out/tx_20240115_a1b2c3d4-e5f6-7890-abcd-ef1234567890.csv"
func ResolveOutputPath(pattern string, params map[string]string) string {
	if !strings.Contains(pattern, "{") {
		return pattern
	}

	now := time.Now()
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := pattern
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// =============================================================================
// LINE COUNTING
// =============================================================================

// CountLines returns the number of lines in the file. A final line without a
// trailing newline is counted.
func CountLines(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return countLines(file)
}

func countLines(r io.Reader) (int, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	buf := make([]byte, 64*1024)

	lines := 0
	var last byte
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			lines += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if last != 0 && last != '\n' {
		lines++
	}
	return lines, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a generation run.
type RunSummary struct {
	RunID      string
	StartTime  time.Time
	EndTime    time.Time
	OutputFile string
	Seed       uint64
	Rows       int
	KindCounts map[string]int

	// AmountTotal sums every amount written.
	AmountTotal float64
}

// WriteSummaryLog writes a run summary to a text file in outputDir and
// returns its path.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	name := fmt.Sprintf("run_summary_%s_%s.txt", summary.EndTime.Format("20060102_150405"), shortID(summary.RunID))
	summaryPath := filepath.Join(outputDir, name)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "txgen - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Output:         %s\n"+
		"  Seed:           %d\n\n"+
		"Statistics:\n"+
		"  Rows:           %d\n"+
		"  Amount Total:   %.2f\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.OutputFile,
		summary.Seed,
		summary.Rows,
		summary.AmountTotal)

	kinds := make([]string, 0, len(summary.KindCounts))
	for kind := range summary.KindCounts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	writer.WriteString("Rows per type:\n")
	writer.WriteString("--------------------------------------------------------------------------------\n")
	for _, kind := range kinds {
		fmt.Fprintf(writer, "  %-12s %d\n", kind, summary.KindCounts[kind])
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
