// Package codec serializes payloads in the schema registry wire format.
//
// The writer schema for each Go type is registered once, lazily, under the
// configured subject. Encoded values carry the Confluent header (magic byte
// and 4-byte schema id) followed by the Avro binary body, so any consumer
// with access to the registry can decode them independently.
package codec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/linkedin/goavro/v2"
	"github.com/twmb/franz-go/pkg/sr"

	"kafka-producer/src/logger"
)

var (
	// ErrSchemaRegistry is returned when the registry cannot resolve or
	// register a schema.
	ErrSchemaRegistry = errors.New("schema registry error")
	// ErrSerialization is returned when a value cannot be encoded or decoded.
	ErrSerialization = errors.New("serialization error")
)

// Record is a value that can describe itself with an Avro schema.
type Record interface {
	AvroSchema() string
	AvroNative() map[string]any
}

// DecodableRecord is implemented by pointers to records that can be
// populated from their Avro native form.
type DecodableRecord interface {
	FromAvroNative(native map[string]any) error
}

// Registry resolves and registers schemas. *sr.Client satisfies it.
type Registry interface {
	CreateSchema(ctx context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error)
}

// SubjectForTopic returns the value subject under the topic name strategy.
func SubjectForTopic(topic string) string {
	return topic + "-value"
}

// Codec encodes records against a schema registry.
type Codec struct {
	registry Registry
	subject  string
	logger   logger.Logger

	mu    sync.Mutex
	serde sr.Serde
	ids   map[reflect.Type]int
}

// New creates a codec registering schemas under subject.
func New(registry Registry, subject string, log logger.Logger) *Codec {
	return &Codec{
		registry: registry,
		subject:  subject,
		logger:   log,
		ids:      make(map[reflect.Type]int),
	}
}

// Encode serializes v, registering its schema on first use of its type.
func (c *Codec) Encode(ctx context.Context, v Record) ([]byte, error) {
	if _, err := c.SchemaID(ctx, v); err != nil {
		return nil, err
	}
	b, err := c.serde.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %T: %w", ErrSerialization, v, err)
	}
	return b, nil
}

// Decode parses b, which must start with the header of a schema this codec
// registered, into v.
func (c *Codec) Decode(b []byte, v DecodableRecord) error {
	if err := c.serde.Decode(b, v); err != nil {
		return fmt.Errorf("%w: decode %T: %w", ErrSerialization, v, err)
	}
	return nil
}

// SchemaID returns the registry id for v's type, registering it if needed.
func (c *Codec) SchemaID(ctx context.Context, v Record) (int, error) {
	t := reflect.TypeOf(v)

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.ids[t]; ok {
		return id, nil
	}

	avroCodec, err := goavro.NewCodec(v.AvroSchema())
	if err != nil {
		return 0, fmt.Errorf("%w: invalid schema for %s: %w", ErrSerialization, t, err)
	}

	ss, err := c.registry.CreateSchema(ctx, c.subject, sr.Schema{
		Schema: v.AvroSchema(),
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: register %s under %s: %w", ErrSchemaRegistry, t, c.subject, err)
	}

	c.serde.Register(
		ss.ID,
		v,
		sr.EncodeFn(func(a any) ([]byte, error) {
			r, ok := a.(Record)
			if !ok {
				return nil, fmt.Errorf("%T is not a Record", a)
			}
			return avroCodec.BinaryFromNative(nil, r.AvroNative())
		}),
		sr.DecodeFn(func(b []byte, a any) error {
			d, ok := a.(DecodableRecord)
			if !ok {
				return fmt.Errorf("%T is not a DecodableRecord", a)
			}
			native, _, err := avroCodec.NativeFromBinary(b)
			if err != nil {
				return err
			}
			m, ok := native.(map[string]any)
			if !ok {
				return fmt.Errorf("expected record, got %T", native)
			}
			return d.FromAvroNative(m)
		}),
	)
	c.ids[t] = ss.ID

	c.logger.Debug("[Codec] Registered %s as schema id %d (subject %s, version %d)", t, ss.ID, ss.Subject, ss.Version)
	return ss.ID, nil
}

// Close releases the registry connection if it holds one.
func (c *Codec) Close() error {
	if closer, ok := c.registry.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
