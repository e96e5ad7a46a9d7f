// Package logging builds the application logger. While the TUI owns the
// terminal, log lines go to a rotating file instead of stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/vovakirdan/tui-novel/internal/config"
)

// Logger pairs a logger with the sink it writes to.
type Logger struct {
	*log.Logger
	sink io.Writer
}

// Close flushes and closes a file sink. It is a no-op for stderr.
func (l *Logger) Close() error {
	if c, ok := l.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// New creates a logger. When interactive is true and cfg.File is set, logs
// rotate in that file; a relative file lives under dir.
func New(cfg config.LogConfig, interactive bool, dir, prefix string) (*Logger, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		lvl, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		level = lvl
	}

	var sink io.Writer = os.Stderr
	if interactive {
		if cfg.File == "" {
			sink = io.Discard
		} else {
			path := cfg.File
			if !filepath.IsAbs(path) && dir != "" {
				path = filepath.Join(dir, path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("logging: cannot create log directory: %w", err)
			}
			sink = &lumberjack.Logger{
				Filename:   path,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			}
		}
	}

	logger := log.NewWithOptions(sink, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(log.JSONFormatter)
	}

	return &Logger{Logger: logger, sink: sink}, nil
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
