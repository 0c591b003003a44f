// Package logging sets up the zerolog logger. Output goes to a file because
// the TUI owns the terminal.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	File    string    // log file, appended to
	Level   string    // zerolog level name, default info
	Console io.Writer // optional human-readable copy, e.g. os.Stderr for CLI runs
}

// Logger is a zerolog logger bound to an open log file
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New opens the log file and returns a logger writing to it.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var writers []io.Writer
	var file *os.File
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, file)
	}
	if cfg.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: cfg.Console, TimeFormat: "15:04:05"})
	}

	var out io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	zl := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("app", "promptforge").
		Logger()
	return &Logger{Logger: zl, file: file}, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Component returns a child logger tagged with a component name
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// ParseLevel parses a level name; empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
