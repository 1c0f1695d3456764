// Package logger is a printf-style facade over zerolog.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger writes leveled JSON lines to stdout and, optionally, to a file.
type Logger struct {
	zl   zerolog.Logger
	file *os.File
}

// New creates a logger. An empty filePath logs to stdout only.
// level is one of debug, info, warn, error (case-insensitive); empty means info.
func New(filePath, level string) (*Logger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	var (
		out  io.Writer = os.Stdout
		file *os.File
	)
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", filePath, err)
		}
		file = f
		out = io.MultiWriter(os.Stdout, f)
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zl := zerolog.New(out).Level(lvl).With().Timestamp().Logger()

	return &Logger{zl: zl, file: file}, nil
}

// NewWithWriter builds a logger over an arbitrary writer (tests use io.Discard).
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

// Fatal logs and exits with status 1.
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
	l.Close()
	os.Exit(1)
}

// Printf lets the logger serve as a cron or gorilla/handlers logger.
func (l *Logger) Printf(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

// Println implements the gorilla/handlers RecoveryHandlerLogger interface.
func (l *Logger) Println(v ...interface{}) {
	l.zl.Error().Msg(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Sync()
		_ = l.file.Close()
		l.file = nil
	}
}
