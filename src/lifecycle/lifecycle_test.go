package lifecycle

import (
	"bytes"
	"context"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kafka-producer/src/logger"
)

func TestController_TriggerCancelsOnce(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.NewLogger(&buf, "debug")
	require.NoError(t, err)

	c := WithInterrupt(context.Background(), log)
	defer c.Stop()

	require.NoError(t, c.Context().Err())

	c.Trigger(os.Interrupt)
	c.Trigger(os.Interrupt)

	assert.ErrorIs(t, c.Context().Err(), context.Canceled)
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "shutting down..."))
	assert.Equal(t, 1, strings.Count(out, "already shutting down, ignoring"))
}

func TestController_RealSignal(t *testing.T) {
	c := WithInterrupt(context.Background(), logger.NewSilentLogger())
	defer c.Stop()

	// The controller is registered, so SIGTERM does not kill the test binary.
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-c.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}

	// A second signal during shutdown is absorbed.
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
	time.Sleep(50 * time.Millisecond)

	assert.ErrorIs(t, c.Context().Err(), context.Canceled)
}

func TestController_StopIsIdempotent(t *testing.T) {
	c := WithInterrupt(context.Background(), logger.NewSilentLogger())
	c.Stop()
	c.Stop()

	assert.ErrorIs(t, c.Context().Err(), context.Canceled)
}

func TestController_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	c := WithInterrupt(parent, logger.NewSilentLogger())
	defer c.Stop()

	cancel()
	assert.ErrorIs(t, c.Context().Err(), context.Canceled)
}
