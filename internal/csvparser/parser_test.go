package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/txgen/internal/types"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, input string) ([]types.Row, *StreamingParser) {
	t.Helper()

	parser, err := NewReader(strings.NewReader(input))
	require.NoError(t, err)

	var rows []types.Row
	for parser.Next() {
		rows = append(rows, parser.Row())
	}
	require.NoError(t, parser.Err())

	return rows, parser
}

func TestParseGeneratedLayout(t *testing.T) {
	rows, parser := parseString(t, "type,client,tx,amount\n"+
		"deposit,1,10,12.5\n"+
		"dispute,1,10,0\n")

	require.Equal(t, []string{"type", "client", "tx", "amount"}, parser.Header())
	require.Len(t, rows, 2)

	require.NoError(t, rows[0].Err)
	require.Equal(t, 2, rows[0].Line)
	require.Equal(t, types.Record{Type: types.Deposit, Client: 1, Tx: 10, Amount: 12.5}, rows[0].Record)

	require.NoError(t, rows[1].Err)
	require.Equal(t, 3, rows[1].Line)
	require.Equal(t, types.Record{Type: types.Dispute, Client: 1, Tx: 10}, rows[1].Record)
}

func TestParseReorderedPaddedColumns(t *testing.T) {
	rows, parser := parseString(t, " Client , TYPE,amount, tx ,note\n"+
		"  7 , withdrawal , 3.25 , 99 ,x\n"+
		"\n"+
		" , , , ,\n"+
		"8,resolve,,100,\n")

	require.Equal(t, []string{"Client", "TYPE", "amount", "tx", "note"}, parser.Header())
	require.Len(t, rows, 2)

	require.NoError(t, rows[0].Err)
	require.Equal(t, types.Record{Type: types.Withdrawal, Client: 7, Tx: 99, Amount: 3.25}, rows[0].Record)

	require.NoError(t, rows[1].Err)
	require.Equal(t, 5, rows[1].Line)
	require.Equal(t, types.Record{Type: types.Resolve, Client: 8, Tx: 100}, rows[1].Record)
}

func TestParseBadFieldsAreReportedPerRow(t *testing.T) {
	rows, _ := parseString(t, "type,client,tx,amount\n"+
		"refund,x,1,abc\n"+
		"deposit,1\n"+
		"deposit,2,3,4\n")

	require.Len(t, rows, 3)

	require.Error(t, rows[0].Err)
	require.Contains(t, rows[0].Err.Error(), "unknown transaction type")
	require.Contains(t, rows[0].Err.Error(), "invalid client")
	require.Contains(t, rows[0].Err.Error(), "invalid amount")

	require.Error(t, rows[1].Err)
	require.Contains(t, rows[1].Err.Error(), "expected 4 fields, got 2")

	require.NoError(t, rows[2].Err)
}

func TestParseHeaderErrors(t *testing.T) {
	_, err := NewReader(strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmptyFile)

	_, err = NewReader(strings.NewReader("type,client,amount\n"))
	require.ErrorIs(t, err, ErrMissingColumn)
	require.Contains(t, err.Error(), `"tx"`)
}

func TestReadAllFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.csv")
	require.NoError(t, os.WriteFile(path, []byte("type,client,tx,amount\nchargeback,1,2,0\n"), 0o644))

	rows, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, types.Chargeback, rows[0].Record.Type)

	_, err = ReadAll(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
