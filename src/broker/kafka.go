package broker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"kafka-producer/src/contracts"
	"kafka-producer/src/logger"
)

// Producer is the subset of *kgo.Client the broker needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Options configures the Kafka client.
type Options struct {
	Brokers         []string
	ClientID        string
	Acks            string
	DeliveryTimeout time.Duration
	LogLevel        kgo.LogLevel
}

// KafkaBroker is a Kafka-compatible publisher using franz-go.
type KafkaBroker struct {
	client  Producer
	encoder Encoder
	brokers []string
	name    string
	logger  logger.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaBroker connects to the seed brokers. The returned broker owns enc
// and closes it on Close.
func NewKafkaBroker(opts Options, enc Encoder, log logger.Logger) (*KafkaBroker, error) {
	if len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}

	acks, err := requiredAcks(opts.Acks)
	if err != nil {
		return nil, err
	}

	kopts := []kgo.Opt{
		kgo.SeedBrokers(opts.Brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(acks),
		// One attempt per publish; the operator decides whether to resend.
		kgo.DisableIdempotentWrite(),
		kgo.RecordRetries(0),
		kgo.ProducerLinger(0),
		kgo.WithLogger(logger.NewKgoLogger(log, opts.LogLevel)),
	}
	if opts.ClientID != "" {
		kopts = append(kopts, kgo.ClientID(opts.ClientID))
	}
	if opts.DeliveryTimeout > 0 {
		kopts = append(kopts, kgo.RecordDeliveryTimeout(opts.DeliveryTimeout))
	}

	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	b := NewKafkaBrokerWithProducer(client, enc, opts.Brokers, log)
	b.name = opts.ClientID
	return b, nil
}

// NewKafkaBrokerWithProducer wraps an existing producer client.
func NewKafkaBrokerWithProducer(client Producer, enc Encoder, brokers []string, log logger.Logger) *KafkaBroker {
	return &KafkaBroker{
		client:  client,
		encoder: enc,
		brokers: brokers,
		name:    "kafka-producer",
		logger:  log,
	}
}

func requiredAcks(acks string) (kgo.Acks, error) {
	switch strings.ToLower(acks) {
	case "", "all":
		return kgo.AllISRAcks(), nil
	case "leader":
		return kgo.LeaderAck(), nil
	case "none":
		return kgo.NoAck(), nil
	default:
		return kgo.Acks{}, fmt.Errorf("unknown acks setting %q", acks)
	}
}

// Name identifies the producer in the session banner.
func (b *KafkaBroker) Name() string {
	return b.name
}

// Brokers returns the seed broker list.
func (b *KafkaBroker) Brokers() []string {
	return b.brokers
}

// Publish encodes msg and produces it, blocking until the record is
// acknowledged or fails. Implements contracts.Publisher.
func (b *KafkaBroker) Publish(ctx context.Context, topic string, msg contracts.Message) contracts.DeliveryOutcome {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return failure(ErrClosed)
	}

	value, err := b.encoder.Encode(ctx, msg.Payload)
	if err != nil {
		b.logger.Error("[KafkaBroker] Failed to encode message for %s: %v", topic, err)
		return failure(err)
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   EncodeKey(msg.Key),
		Value: value,
	}

	produced, err := b.client.ProduceSync(ctx, record).First()
	if err != nil {
		b.logger.Error("[KafkaBroker] Failed to produce to %s: %v", topic, err)
		return failure(err)
	}

	b.logger.Debug("[KafkaBroker] Acknowledged key=%d at %s[%d]@%d", msg.Key, produced.Topic, produced.Partition, produced.Offset)
	return contracts.Delivered(produced.Topic, produced.Partition, produced.Offset)
}

// Close shuts down the client and the encoder's registry connection.
// Only the first call has any effect.
func (b *KafkaBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	// No records can be in flight: every Publish waits for its ack.
	b.client.Close()
	return b.encoder.Close()
}
