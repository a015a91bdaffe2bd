package contracts

import "context"

// Publisher publishes one message and waits for the broker to acknowledge it.
// Implementations never return an error: every failure is folded into the
// returned DeliveryOutcome so the caller can report it and carry on.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg Message) DeliveryOutcome
	// Close releases the broker connection. Safe to call more than once.
	Close() error
}
