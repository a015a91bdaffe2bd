package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestNewLogger(t *testing.T) {
	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := NewLogger(&buf, "info")
		require.NoError(t, err)

		log.Debug("hidden %d", 1)
		log.Info("shown %d", 2)

		assert.NotContains(t, buf.String(), "hidden 1")
		assert.Contains(t, buf.String(), "shown 2")
		assert.False(t, log.DebugEnabled())
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := NewLogger(&buf, "chatty")
		require.Error(t, err)
		require.NotNil(t, log)

		log.Info("still logging")
		assert.Contains(t, buf.String(), "still logging")
	})

	t.Run("fields are attached", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := NewLogger(&buf, "debug")
		require.NoError(t, err)

		log.WithField("topic", "orders").Debug("ready")
		assert.Contains(t, buf.String(), "topic=orders")
	})
}

type recordingLogger struct {
	infos, errors, debugs []string
}

func (r *recordingLogger) Info(msg string, args ...interface{}) {
	r.infos = append(r.infos, msg)
}
func (r *recordingLogger) Error(msg string, args ...interface{}) {
	r.errors = append(r.errors, msg)
}
func (r *recordingLogger) Debug(msg string, args ...interface{}) {
	r.debugs = append(r.debugs, msg)
}

func TestKgoLogger(t *testing.T) {
	rec := &recordingLogger{}
	kl := NewKgoLogger(rec, kgo.LogLevelDebug)

	assert.Equal(t, kgo.LogLevelDebug, kl.Level())

	kl.Log(kgo.LogLevelError, "produce failed", "broker", 1)
	kl.Log(kgo.LogLevelWarn, "metadata refresh")
	kl.Log(kgo.LogLevelDebug, "wrote request")

	assert.Len(t, rec.errors, 1)
	assert.Len(t, rec.infos, 1)
	assert.Len(t, rec.debugs, 1)
}

func TestFormatKeyvals(t *testing.T) {
	assert.Equal(t, "", formatKeyvals(nil))
	assert.Equal(t, " broker=1 err=eof", formatKeyvals([]any{"broker", 1, "err", "eof"}))
	assert.Equal(t, " broker=1 dangling", formatKeyvals([]any{"broker", 1, "dangling"}))
}

func TestKgoLevel(t *testing.T) {
	tests := map[string]kgo.LogLevel{
		"trace": kgo.LogLevelDebug,
		"debug": kgo.LogLevelInfo,
		"info":  kgo.LogLevelWarn,
		"ERROR": kgo.LogLevelError,
		"off":   kgo.LogLevelNone,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, KgoLevel(in))
		})
	}
}
