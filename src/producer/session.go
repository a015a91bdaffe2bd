package producer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"kafka-producer/src/contracts"
	"kafka-producer/src/logger"
)

// Serve prints the banner, runs the loop and releases pub exactly once on
// every exit path.
func Serve(ctx context.Context, in LineSource, out io.Writer, pub contracts.Publisher, opts Options, log logger.Logger) (err error) {
	defer func() {
		if cerr := pub.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close publisher: %w", cerr))
		}
	}()

	loop := NewLoop(in, out, pub, opts, log)
	loop.Banner()
	return loop.Run(ctx)
}
