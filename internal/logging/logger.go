package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds logger configuration
type Config struct {
	Level    string
	Format   string // "text" or "json"
	FilePath string
	Output   io.Writer // defaults to stderr
}

// Logger wraps logrus with an optional log file
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New creates a logger. Output goes to stderr so stdout stays free for
// command output.
func New(config Config) (*Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	l := &Logger{Logger: logger}

	if config.FilePath != "" {
		if err := l.setupFileOutput(config.FilePath, out); err != nil {
			return nil, fmt.Errorf("failed to setup file output: %w", err)
		}
	}

	return l, nil
}

// setupFileOutput tees log lines into filePath
func (l *Logger) setupFileOutput(filePath string, out io.Writer) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.file = file
	l.Logger.SetOutput(io.MultiWriter(out, file))

	return nil
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Logger{Logger: logger}
}
