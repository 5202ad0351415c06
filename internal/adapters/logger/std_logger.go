package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/go_fakenews/internal/ports"
	"github.com/baditaflorin/l"
)

// StdLogger adapts the l.Logger to the ports.Logger interface.
type StdLogger struct {
	logger l.Logger
}

// keepOpen hides Close from the logger so closing it leaves w open.
type keepOpen struct {
	io.Writer
}

// DefaultConfig returns the logger configuration used when none is given.
func DefaultConfig(output io.Writer, jsonFormat bool) l.Config {
	return l.Config{
		Output:      output,
		JsonFormat:  jsonFormat,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,      // 1MB buffer
		MaxFileSize: 10 * 1024 * 1024, // 10MB max file size
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	}
}

// NewStdLogger creates a text logger on stderr with the default configuration.
// Closing it flushes pending entries but leaves stderr open.
func NewStdLogger() (ports.Logger, error) {
	return NewCustomStdLogger(DefaultConfig(keepOpen{os.Stderr}, false))
}

// NewCustomStdLogger creates a new standard logger with custom configuration.
func NewCustomStdLogger(config l.Config) (ports.Logger, error) {
	logger, err := l.NewStandardFactory().CreateLogger(config)
	if err != nil {
		return nil, err
	}

	return &StdLogger{logger: logger}, nil
}

// NewFileLogger writes to path, or to stderr when path is empty. Files are
// rotated by l once they reach MaxFileSize, keeping MaxBackups old files.
func NewFileLogger(path string, jsonFormat bool) (ports.Logger, error) {
	if path == "" {
		return NewCustomStdLogger(DefaultConfig(keepOpen{os.Stderr}, jsonFormat))
	}

	config := DefaultConfig(nil, jsonFormat)
	config.FilePath = path
	// l only honours FilePath on its synchronous writer.
	config.AsyncWrite = false

	logger, err := l.NewStandardFactory().CreateLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &StdLogger{logger: logger}, nil
}

// Debug logs a debug message.
func (l *StdLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

// Info logs an info message.
func (l *StdLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

// Warn logs a warning message.
func (l *StdLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}

// Error logs an error message.
func (l *StdLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

// Close flushes the logger.
func (l *StdLogger) Close() error {
	return l.logger.Close()
}

// FromExisting creates a new StdLogger from an existing l.Logger.
func FromExisting(logger l.Logger) ports.Logger {
	return &StdLogger{logger: logger}
}

// NopLogger discards everything.
type NopLogger struct{}

// NewNopLogger returns a logger that discards all messages.
func NewNopLogger() ports.Logger { return NopLogger{} }

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Close() error                 { return nil }
