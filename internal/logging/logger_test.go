package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.WithField("rows", 3).Debug("generated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "generated", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, float64(3), entry["rows"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "nonsense", Output: &buf})
	require.NoError(t, err)

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())

	logger.Debug("hidden")
	assert.Empty(t, buf.String())

	logger.Info("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewWithLogFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "txgen.log")

	logger, err := New(Config{Level: "info", FilePath: path, Output: &buf})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	assert.NoError(t, logger.Close())
}
