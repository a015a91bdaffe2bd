// Package producer runs the interactive publish loop: read a line, parse it,
// publish it, report the outcome, repeat until cancelled.
package producer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"kafka-producer/src/contracts"
	"kafka-producer/src/input"
	"kafka-producer/src/logger"
)

// Prompt is written before every read.
const Prompt = "> "

// State is a position in the publish loop.
type State int

const (
	AwaitingInput State = iota
	Parsing
	Publishing
	Reporting
	Cancelled
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaiting-input"
	case Parsing:
		return "parsing"
	case Publishing:
		return "publishing"
	case Reporting:
		return "reporting"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// LineSource yields operator lines. *input.LineReader satisfies it.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
}

// Options configures a Loop.
type Options struct {
	Topic string
	// StrictKeys makes a malformed key end the loop with an error instead of
	// being reported.
	StrictKeys bool
	// DeliveryTimeout bounds a single publish. Zero means no bound.
	DeliveryTimeout time.Duration
	// ProducerName and Brokers are shown in the banner.
	ProducerName string
	Brokers      []string
}

// Stats counts what happened during a session.
type Stats struct {
	Delivered int
	Failed    int
	Skipped   int
	Rejected  int
}

// Loop is the publish loop. It is strictly sequential: one line and one
// publish in flight at a time.
type Loop struct {
	in     LineSource
	out    io.Writer
	pub    contracts.Publisher
	opts   Options
	logger logger.Logger
	styles styles

	state State
	stats Stats
}

// NewLoop creates a loop reading from in and reporting to out.
func NewLoop(in LineSource, out io.Writer, pub contracts.Publisher, opts Options, log logger.Logger) *Loop {
	return &Loop{
		in:     in,
		out:    out,
		pub:    pub,
		opts:   opts,
		logger: log,
		styles: newStyles(out),
	}
}

// State returns the current loop state.
func (l *Loop) State() State {
	return l.state
}

// Stats returns the session counters.
func (l *Loop) Stats() Stats {
	return l.stats
}

func (l *Loop) setState(s State) {
	if l.state != s {
		l.logger.Debug("[Loop] %s -> %s", l.state, s)
	}
	l.state = s
}

// Banner writes the session header.
func (l *Loop) Banner() {
	rule := strings.Repeat("-", 71)
	name := l.opts.ProducerName
	if name == "" {
		name = "producer"
	}
	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, rule)
	fmt.Fprintf(l.out, "Producer %s producing on topic %s to brokers %s.\n",
		l.styles.emphasis.Render(name),
		l.styles.emphasis.Render(l.opts.Topic),
		strings.Join(l.opts.Brokers, ","))
	fmt.Fprintln(l.out, rule)
	fmt.Fprintln(l.out, "To create a kafka message with integer key and string value:")
	fmt.Fprintln(l.out, Prompt+"key value<Enter>")
	fmt.Fprintln(l.out, "Ctrl-C to quit.")
	fmt.Fprintln(l.out)
}

// Run loops until ctx is cancelled or the input ends, both of which return
// nil. It returns an error only when the input cannot be read or, with
// StrictKeys, when a line has a malformed key.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		l.logger.Info("[Loop] Session ended: %d delivered, %d failed, %d rejected, %d blank",
			l.stats.Delivered, l.stats.Failed, l.stats.Rejected, l.stats.Skipped)
	}()

	for {
		l.setState(AwaitingInput)
		if ctx.Err() != nil {
			l.setState(Cancelled)
			return nil
		}

		fmt.Fprint(l.out, Prompt)
		line, err := l.in.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				fmt.Fprintln(l.out)
				l.setState(Cancelled)
				return nil
			}
			if errors.Is(err, input.ErrLineTooLong) {
				l.stats.Rejected++
				fmt.Fprintln(l.out, l.styles.warning.Render(fmt.Sprintf("invalid input: %v", err)))
				continue
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		l.setState(Parsing)
		msg, ok, err := input.ParseLine(line)
		if err != nil {
			if l.opts.StrictKeys {
				l.setState(Cancelled)
				return fmt.Errorf("invalid input %q: %w", line, err)
			}
			l.stats.Rejected++
			fmt.Fprintln(l.out, l.styles.warning.Render(fmt.Sprintf("invalid key: %v", err)))
			continue
		}
		if !ok {
			l.stats.Skipped++
			continue
		}

		l.setState(Publishing)
		outcome := l.publish(ctx, msg)

		l.setState(Reporting)
		l.report(outcome)
	}
}

// publish sends msg. An interrupt does not abort a publish already in
// flight; only the delivery timeout bounds it.
func (l *Loop) publish(ctx context.Context, msg contracts.Message) contracts.DeliveryOutcome {
	pctx := context.WithoutCancel(ctx)
	if l.opts.DeliveryTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(pctx, l.opts.DeliveryTimeout)
		defer cancel()
	}
	return l.pub.Publish(pctx, l.opts.Topic, msg)
}

func (l *Loop) report(o contracts.DeliveryOutcome) {
	if o.Success {
		l.stats.Delivered++
		fmt.Fprintln(l.out, l.styles.success.Render("delivered to: "+o.String()))
		return
	}
	l.stats.Failed++
	fmt.Fprintln(l.out, l.styles.failure.Render("failed to deliver message: "+o.String()))
}
