// =============================================================================
// txgen - Transaction File Writer
// =============================================================================
//
// This module is the generation driver. It owns the output file for the
// whole run:
//   1. Create the file (truncating any existing one)
//   2. Write the header row
//   3. Write exactly Count records, one per row, in generation order
//   4. Flush and close
//
// FAILURES:
//   Any open, write, flush or close error is returned wrapped. Nothing is
//   retried and nothing is salvaged; a file left behind by a failed run is
//   incomplete and must not be used.
//
// =============================================================================

package csvwriter

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ginjaninja78/txgen/internal/types"
)

// DefaultCount is the number of data rows written by a stock run.
const DefaultCount = 1_000_000

// ErrInvalidCount is returned for a negative record count.
var ErrInvalidCount = errors.New("record count must not be negative")

// Source produces records. *generator.Generator satisfies it.
type Source interface {
	Record() types.Record
}

// =============================================================================
// OPTIONS AND STATS
// =============================================================================

// Options tunes a run.
type Options struct {
	// BufferSize is the write buffer size in bytes.
	BufferSize int

	// ProgressEvery calls Progress after that many rows; 0 disables it.
	ProgressEvery int

	// Progress receives the number of rows written so far.
	Progress func(rows int)
}

// DefaultOptions returns options with a 64 KiB buffer and no progress
// reporting.
func DefaultOptions() Options {
	return Options{BufferSize: 64 * 1024}
}

// Stats describes a finished run.
type Stats struct {
	Path string

	// Rows counts data rows, excluding the header.
	Rows int

	KindCounts  map[types.Kind]int
	AmountTotal float64
	Elapsed     time.Duration
}

// Lines returns the number of lines in the file, header included.
func (s Stats) Lines() int {
	return s.Rows + 1
}

// =============================================================================
// WRITING
// =============================================================================

// Write generates count records from src into the file at path.
func Write(path string, count int, src Source, opts Options) (stats Stats, err error) {
	if count < 0 {
		return Stats{}, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	file, err := os.Create(path)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	stats, err = WriteTo(file, count, src, opts)
	stats.Path = path
	return stats, err
}

// WriteTo writes the header and count records from src to w. The caller owns
// w; WriteTo only flushes its own buffer.
func WriteTo(w io.Writer, count int, src Source, opts Options) (Stats, error) {
	start := time.Now()
	stats := Stats{KindCounts: make(map[types.Kind]int, len(types.Kinds))}

	if count < 0 {
		return stats, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions().BufferSize
	}

	buffered := bufio.NewWriterSize(w, opts.BufferSize)
	cw := csv.NewWriter(buffered)

	if err := cw.Write(types.Header); err != nil {
		return stats, fmt.Errorf("failed to write header: %w", err)
	}

	fields := make([]string, 0, len(types.Header))
	for i := 0; i < count; i++ {
		rec := src.Record()

		fields = rec.AppendFields(fields[:0])
		if err := cw.Write(fields); err != nil {
			return stats, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}

		stats.Rows++
		stats.KindCounts[rec.Type]++
		stats.AmountTotal += rec.Amount

		if opts.ProgressEvery > 0 && opts.Progress != nil && stats.Rows%opts.ProgressEvery == 0 {
			opts.Progress(stats.Rows)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return stats, fmt.Errorf("failed to flush rows: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return stats, fmt.Errorf("failed to flush output: %w", err)
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}
