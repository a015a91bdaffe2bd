package logger

import (
	"fmt"
	"strings"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KgoLogger bridges franz-go client logs into a Logger.
type KgoLogger struct {
	log   Logger
	level kgo.LogLevel
}

// NewKgoLogger wraps log for use with kgo.WithLogger. Client entries above
// level are dropped by kgo before reaching the adapter.
func NewKgoLogger(log Logger, level kgo.LogLevel) *KgoLogger {
	return &KgoLogger{log: log, level: level}
}

// Level implements kgo.Logger.
func (k *KgoLogger) Level() kgo.LogLevel {
	return k.level
}

// Log implements kgo.Logger.
func (k *KgoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	line := "[kgo] " + msg + formatKeyvals(keyvals)
	switch level {
	case kgo.LogLevelError:
		k.log.Error("%s", line)
	case kgo.LogLevelWarn, kgo.LogLevelInfo:
		k.log.Info("%s", line)
	case kgo.LogLevelDebug:
		k.log.Debug("%s", line)
	}
}

func formatKeyvals(keyvals []any) string {
	if len(keyvals) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(keyvals); i += 2 {
		b.WriteByte(' ')
		if i+1 < len(keyvals) {
			fmt.Fprintf(&b, "%v=%v", keyvals[i], keyvals[i+1])
		} else {
			fmt.Fprintf(&b, "%v", keyvals[i])
		}
	}
	return b.String()
}

// KgoLevel maps a configured log level name to the client's log level.
// The client is kept one step quieter than the application.
func KgoLevel(level string) kgo.LogLevel {
	switch strings.ToLower(level) {
	case "trace":
		return kgo.LogLevelDebug
	case "debug":
		return kgo.LogLevelInfo
	case "info", "warn", "warning":
		return kgo.LogLevelWarn
	case "error":
		return kgo.LogLevelError
	default:
		return kgo.LogLevelNone
	}
}
