// Package lifecycle turns process interrupts into context cancellation.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"kafka-producer/src/logger"
)

// ShutdownSignals are intercepted while a controller is armed.
var ShutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// Controller cancels a context on the first shutdown signal. While armed the
// default terminate-immediately behaviour is suppressed; later signals are
// logged and otherwise ignored.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc
	sigCh  chan os.Signal
	logger logger.Logger

	once     sync.Once
	stopOnce sync.Once
	done     chan struct{}
}

// WithInterrupt arms a controller derived from parent. Call Stop to disarm.
func WithInterrupt(parent context.Context, log logger.Logger) *Controller {
	ctx, cancel := context.WithCancel(parent)
	c := &Controller{
		ctx:    ctx,
		cancel: cancel,
		sigCh:  make(chan os.Signal, 1),
		logger: log,
		done:   make(chan struct{}),
	}
	signal.Notify(c.sigCh, ShutdownSignals...)
	go c.watch()
	return c
}

// Context is cancelled on the first shutdown signal or on Stop.
func (c *Controller) Context() context.Context {
	return c.ctx
}

func (c *Controller) watch() {
	for {
		select {
		case sig := <-c.sigCh:
			c.Trigger(sig)
		case <-c.done:
			return
		}
	}
}

// Trigger performs the shutdown a signal would. Only the first call acts.
func (c *Controller) Trigger(sig os.Signal) {
	fired := false
	c.once.Do(func() {
		fired = true
		c.logger.Info("Received %v, shutting down...", sig)
		c.cancel()
	})
	if !fired {
		c.logger.Debug("Received %v while already shutting down, ignoring", sig)
	}
}

// Stop disarms the controller, restoring default signal handling, and
// cancels its context. Safe to call more than once.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		signal.Stop(c.sigCh)
		close(c.done)
		c.cancel()
	})
}
