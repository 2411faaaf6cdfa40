package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "txgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "transactions.csv", cfg.OutputPath)
	assert.Equal(t, 1_000_000, cfg.Count())
	assert.Equal(t, 10_000, cfg.ClientMax)
	assert.Equal(t, 100_000, cfg.TxMax)
	assert.Equal(t, 100_000.0, cfg.AmountMax)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Zero(t, cfg.Seed)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
output_path: "out/tx_{uuid}.csv"
record_count: 0
seed: 42
client_max: 5
tx_max: 50
amount_max: 10.5
summary_dir: summaries
log_level: debug
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "out/tx_{uuid}.csv", cfg.OutputPath)
	assert.Equal(t, 0, cfg.Count())
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 5, cfg.Bounds().ClientMax)
	assert.Equal(t, 50, cfg.Bounds().TxMax)
	assert.Equal(t, 10.5, cfg.Bounds().AmountMax)
	assert.Equal(t, "summaries", cfg.SummaryDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := map[string]string{
		"malformed yaml":     "record_count: [",
		"negative count":     "record_count: -5",
		"negative client":    "client_max: -1",
		"negative amount":    "amount_max: -3",
		"unknown log level":  "log_level: loud",
		"unknown log format": "log_format: xml",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
		})
	}
}
