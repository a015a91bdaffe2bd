package broker

import (
	"context"
	"sync"
	"time"

	"kafka-producer/src/contracts"
)

// StoredRecord is a message accepted by the in-memory broker.
type StoredRecord struct {
	Topic     string
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64
	Timestamp time.Time
}

// InMemoryBroker keeps published records in memory. Each topic has a single
// partition whose offsets start at zero. Used by local mode and tests.
type InMemoryBroker struct {
	encoder Encoder

	mu      sync.Mutex
	records map[string][]StoredRecord
	closed  bool
}

// NewInMemoryBroker creates a new InMemoryBroker instance.
func NewInMemoryBroker(enc Encoder) *InMemoryBroker {
	return &InMemoryBroker{
		encoder: enc,
		records: make(map[string][]StoredRecord),
	}
}

// Name identifies the producer in the session banner.
func (b *InMemoryBroker) Name() string {
	return "in-memory"
}

// Brokers returns a placeholder address for the session banner.
func (b *InMemoryBroker) Brokers() []string {
	return []string{"memory://local"}
}

// Publish implements contracts.Publisher.
func (b *InMemoryBroker) Publish(ctx context.Context, topic string, msg contracts.Message) contracts.DeliveryOutcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return failure(ErrClosed)
	}
	if err := ctx.Err(); err != nil {
		return failure(err)
	}

	value, err := b.encoder.Encode(ctx, msg.Payload)
	if err != nil {
		return failure(err)
	}

	rec := StoredRecord{
		Topic:     topic,
		Key:       EncodeKey(msg.Key),
		Value:     value,
		Offset:    int64(len(b.records[topic])),
		Timestamp: time.Now(),
	}
	b.records[topic] = append(b.records[topic], rec)

	return contracts.Delivered(rec.Topic, rec.Partition, rec.Offset)
}

// Records returns a copy of everything published to topic.
func (b *InMemoryBroker) Records(topic string) []StoredRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]StoredRecord(nil), b.records[topic]...)
}

// Close marks the broker closed and releases the encoder.
func (b *InMemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.encoder.Close()
}
