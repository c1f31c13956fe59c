// Package logger wrapper for zerolog
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config logger settings
type Config struct {
	Level           string
	TimeFieldFormat string
	PrettyPrint     bool
	ShowCaller      bool
	FileName        string
}

// Logger object capable of interacting with Logger
type Logger struct {
	zero    zerolog.Logger
	extFile *os.File
}

var defaultConfig = Config{
	Level:           "info",
	TimeFieldFormat: time.RFC3339,
	PrettyPrint:     true,
}

// NewDefault creates Logger with default settings
func NewDefault() *Logger {
	l, _ := New(defaultConfig, os.Stderr)
	return l
}

// New creates a new Logger writing to out, and to FileName when set.
func New(config Config, out io.Writer) (*Logger, error) {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return nil, err
	}
	if config.TimeFieldFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFieldFormat
	}

	var l Logger
	if config.PrettyPrint {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	writers := []io.Writer{out}

	if config.FileName != "" {
		l.extFile, err = os.OpenFile(config.FileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, l.extFile)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp()
	if config.ShowCaller {
		ctx = ctx.Caller()
	}
	l.zero = ctx.Logger()

	return &l, nil
}

// ParseLevel maps a configuration level name to a zerolog level. An empty
// name means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}
	l, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// Debug starts a new message with debug level
func (l *Logger) Debug() *zerolog.Event {
	return l.zero.Debug()
}

// Info starts a new message with info level
func (l *Logger) Info() *zerolog.Event {
	return l.zero.Info()
}

// Warn starts a new message with warn level
func (l *Logger) Warn() *zerolog.Event {
	return l.zero.Warn()
}

// Error starts a new message with error level
func (l *Logger) Error() *zerolog.Event {
	return l.zero.Error()
}

// With creates a child logger with the field added to its context
func (l *Logger) With() zerolog.Context {
	return l.zero.With()
}

// WithRunID returns a logger that tags every entry with id. The copy shares
// the log file of l.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{zero: l.zero.With().Str("run_id", id).Logger(), extFile: l.extFile}
}

// Zerolog returns the underlying zerolog logger, for library configs.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zero
}

// Printf sends the event with formatted msg with debug level
func (l *Logger) Printf(format string, v ...interface{}) {
	l.zero.Debug().Msgf(format, v...)
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.extFile == nil {
		return nil
	}
	return l.extFile.Close()
}
