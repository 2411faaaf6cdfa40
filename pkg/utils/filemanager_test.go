package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOutputPathWithoutPlaceholders(t *testing.T) {
	assert.Equal(t, "transactions.csv", ResolveOutputPath("transactions.csv", nil))
}

func TestResolveOutputPathExpandsPlaceholders(t *testing.T) {
	got := ResolveOutputPath("out/{seed}/tx_{uuid}.csv", map[string]string{"seed": "42"})

	require.True(t, strings.HasPrefix(got, "out/42/tx_"))
	id := strings.TrimSuffix(strings.TrimPrefix(got, "out/42/tx_"), ".csv")
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	a := ResolveOutputPath("{uuid}", nil)
	b := ResolveOutputPath("{uuid}", nil)
	assert.NotEqual(t, a, b)

	date := ResolveOutputPath("{date}", nil)
	assert.Len(t, date, len("20060102"))
}

func TestEnsureParentDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a", "b", "out.csv")

	require.NoError(t, EnsureParentDir(path))
	assert.True(t, FileExists(filepath.Join(dir, "a", "b")))
	require.NoError(t, EnsureParentDir("plain.csv"))
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]int{
		"":            0,
		"a\n":         1,
		"a\nb\n":      2,
		"a\nb":        2,
		"\n\n\n":      3,
		strings.Repeat("row\n", 200_000): 200_000,
	}

	i := 0
	for content, want := range tests {
		path := filepath.Join(dir, "f"+string(rune('a'+i)))
		i++
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		got, err := CountLines(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, "content %.20q", content)
	}

	_, err := CountLines(filepath.Join(dir, "missing"))
	require.Error(t, err)
}

func TestWriteSummaryLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "summaries")
	start := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)

	path, err := WriteSummaryLog(RunSummary{
		RunID:       "0f1e2d3c-aaaa-bbbb-cccc-000000000000",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Second),
		OutputFile:  "transactions.csv",
		Seed:        7,
		Rows:        3,
		KindCounts:  map[string]int{"deposit": 2, "chargeback": 1},
		AmountTotal: 12.5,
	}, dir)
	require.NoError(t, err)

	assert.Equal(t, "run_summary_20240115_143002_0f1e2d3c.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Duration:       2s")
	assert.Contains(t, text, "Rows:           3")
	assert.Contains(t, text, "Amount Total:   12.50")
	assert.Less(t, strings.Index(text, "chargeback"), strings.Index(text, "deposit"))
}
