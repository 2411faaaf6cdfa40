// =============================================================================
// txgen - Transaction File Reader
// =============================================================================
//
// This module reads transaction files back in, one row at a time. It is used
// by the verify command (structural checks) and the ledger command (replay).
// Files can be large (a default run writes a million rows), so rows are
// streamed rather than loaded.
//
// FORMAT:
//   - Comma-separated, first row is the header.
//   - The header must name the columns type, client, tx and amount. Column
//     order and case do not matter; extra columns are ignored.
//   - Surrounding whitespace is trimmed from every field.
//   - Blank rows are skipped.
//   - An empty amount is read as 0.
//
// USAGE:
//   parser, err := csvparser.NewStreamingParser(path)
//   if err != nil {
//       return err
//   }
//   defer parser.Close()
//
//   for parser.Next() {
//       row := parser.Row()
//       // row.Err is set when a field did not parse
//   }
//
//   if err := parser.Err(); err != nil {
//       return err
//   }
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ginjaninja78/txgen/internal/types"
)

var (
	// ErrEmptyFile is returned when the input has no header row.
	ErrEmptyFile = errors.New("file is empty")

	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing column")
)

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser reads transaction rows from a CSV stream.
type StreamingParser struct {
	closer io.Closer
	reader *csv.Reader

	// header is the trimmed header row as it appears in the file.
	header []string

	// index maps each types.Header position to its column in the file.
	index [4]int

	current types.Row
	err     error
}

// NewStreamingParser opens filePath and reads its header.
func NewStreamingParser(filePath string) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	parser, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	parser.closer = file

	return parser, nil
}

// NewReader reads the header from r and returns a parser positioned at the
// first data row. Close is a no-op for parsers built this way.
func NewReader(r io.Reader) (*StreamingParser, error) {
	reader := csv.NewReader(bufio.NewReaderSize(r, 64*1024))
	configureReader(reader)

	parser := &StreamingParser{reader: reader}
	if err := parser.readHeader(); err != nil {
		return nil, err
	}

	return parser, nil
}

// configureReader sets the reader options shared by every parser.
func configureReader(reader *csv.Reader) {
	reader.Comma = ','

	// Row width is checked per row so a short row is reported with its line
	// number instead of aborting the stream.
	reader.FieldsPerRecord = -1

	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
}

// readHeader reads the first row and resolves the column positions.
func (p *StreamingParser) readHeader() error {
	row, err := p.reader.Read()
	if err == io.EOF {
		return ErrEmptyFile
	}
	if err != nil {
		return fmt.Errorf("error reading header: %w", err)
	}

	p.header = make([]string, len(row))
	positions := make(map[string]int, len(row))
	for i, name := range row {
		name = strings.TrimSpace(name)
		p.header[i] = name

		key := strings.ToLower(name)
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	for i, name := range types.Header {
		pos, ok := positions[name]
		if !ok {
			return fmt.Errorf("%w %q in header %q", ErrMissingColumn, name, strings.Join(p.header, ","))
		}
		p.index[i] = pos
	}

	return nil
}

// Next advances to the next non-blank row. It returns false at end of input
// or on a read error; check Err afterwards.
func (p *StreamingParser) Next() bool {
	for {
		if p.err != nil {
			return false
		}

		fields, err := p.reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			p.err = fmt.Errorf("error reading row: %w", err)
			return false
		}

		if isRowEmpty(fields) {
			continue
		}

		line, _ := p.reader.FieldPos(0)
		p.current = p.decode(fields, line)
		return true
	}
}

// decode turns the raw fields of one row into a types.Row.
func (p *StreamingParser) decode(fields []string, line int) types.Row {
	row := types.Row{Line: line}

	if len(fields) < len(p.header) {
		row.Err = fmt.Errorf("line %d: expected %d fields, got %d", line, len(p.header), len(fields))
	}

	for i, pos := range p.index {
		if pos < len(fields) {
			row.Raw[i] = strings.TrimSpace(fields[pos])
		}
	}

	var errs []error
	if row.Err != nil {
		errs = append(errs, row.Err)
	}

	kind, err := types.ParseKind(row.Raw[0])
	if err != nil {
		errs = append(errs, err)
	}
	row.Record.Type = kind

	if row.Record.Client, err = strconv.Atoi(row.Raw[1]); err != nil {
		errs = append(errs, fmt.Errorf("invalid client %q", row.Raw[1]))
	}
	if row.Record.Tx, err = strconv.Atoi(row.Raw[2]); err != nil {
		errs = append(errs, fmt.Errorf("invalid tx %q", row.Raw[2]))
	}
	if row.Raw[3] != "" {
		if row.Record.Amount, err = strconv.ParseFloat(row.Raw[3], 64); err != nil {
			errs = append(errs, fmt.Errorf("invalid amount %q", row.Raw[3]))
		}
	}

	row.Err = errors.Join(errs...)
	return row
}

// Row returns the current row.
func (p *StreamingParser) Row() types.Row {
	return p.current
}

// Header returns the header row as read, trimmed.
func (p *StreamingParser) Header() []string {
	return p.header
}

// Err returns the read error that stopped Next, if any.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file.
func (p *StreamingParser) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// ReadAll reads every row of filePath. Intended for small files and tests.
func ReadAll(filePath string) ([]types.Row, error) {
	parser, err := NewStreamingParser(filePath)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	var rows []types.Row
	for parser.Next() {
		rows = append(rows, parser.Row())
	}

	return rows, parser.Err()
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
