package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger defines the interface for logging throughout the application.
// Different implementations can be used for different contexts (console, silent, etc.)
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// ConsoleLogger writes human-readable logs to stderr.
// Stdout is reserved for the operator prompt and delivery reports.
type ConsoleLogger struct {
	entry *logrus.Entry
}

// NewConsoleLogger creates a logger writing info-level logs to stderr.
func NewConsoleLogger() *ConsoleLogger {
	l, _ := NewLogger(os.Stderr, "info")
	return l
}

// NewLogger creates a ConsoleLogger writing to w at the given level
// (trace, debug, info, warn, error).
func NewLogger(w io.Writer, level string) (*ConsoleLogger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return &ConsoleLogger{entry: newEntry(w, logrus.InfoLevel)}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return &ConsoleLogger{entry: newEntry(w, lvl)}, nil
}

func newEntry(w io.Writer, lvl logrus.Level) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return logrus.NewEntry(l)
}

// WithField returns a logger that attaches key=value to every entry.
func (c *ConsoleLogger) WithField(key string, value interface{}) *ConsoleLogger {
	return &ConsoleLogger{entry: c.entry.WithField(key, value)}
}

// DebugEnabled reports whether debug entries are emitted.
func (c *ConsoleLogger) DebugEnabled() bool {
	return c.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}

func (c *ConsoleLogger) Info(msg string, args ...interface{}) {
	c.entry.Infof(msg, args...)
}

func (c *ConsoleLogger) Error(msg string, args ...interface{}) {
	c.entry.Errorf(msg, args...)
}

func (c *ConsoleLogger) Debug(msg string, args ...interface{}) {
	c.entry.Debugf(msg, args...)
}

// SilentLogger discards all log messages.
// Used in tests so log output does not interleave with asserted console output.
type SilentLogger struct{}

func NewSilentLogger() *SilentLogger {
	return &SilentLogger{}
}

func (s *SilentLogger) Info(msg string, args ...interface{})  {}
func (s *SilentLogger) Error(msg string, args ...interface{}) {}
func (s *SilentLogger) Debug(msg string, args ...interface{}) {}
