package codec

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/sr"

	"kafka-producer/src/contracts"
	"kafka-producer/src/logger"
)

// countingRegistry records every registration call.
type countingRegistry struct {
	inner *MemoryRegistry
	calls int
	err   error
}

func (c *countingRegistry) CreateSchema(ctx context.Context, subject string, s sr.Schema) (sr.SubjectSchema, error) {
	c.calls++
	if c.err != nil {
		return sr.SubjectSchema{}, c.err
	}
	return c.inner.CreateSchema(ctx, subject, s)
}

func newTestCodec(reg Registry) *Codec {
	return New(reg, SubjectForTopic("greetings"), logger.NewSilentLogger())
}

func TestCodec_EncodeDecode(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()
	c := newTestCodec(reg)

	in := contracts.HelloReply{Message: "hello world"}
	b, err := c.Encode(ctx, in)
	require.NoError(t, err)

	// Confluent header: magic byte then big-endian schema id.
	require.Greater(t, len(b), 5)
	assert.Equal(t, byte(0), b[0])
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(b[1:5]))

	var out contracts.HelloReply
	require.NoError(t, c.Decode(b, &out))
	assert.Equal(t, in, out)
}

func TestCodec_RegistersOncePerType(t *testing.T) {
	ctx := context.Background()
	reg := &countingRegistry{inner: NewMemoryRegistry()}
	c := newTestCodec(reg)

	first, err := c.Encode(ctx, contracts.HelloReply{Message: "same"})
	require.NoError(t, err)
	second, err := c.Encode(ctx, contracts.HelloReply{Message: "same"})
	require.NoError(t, err)

	assert.Equal(t, 1, reg.calls)
	assert.Equal(t, 1, reg.inner.Versions("greetings-value"))

	var a, b contracts.HelloReply
	require.NoError(t, c.Decode(first, &a))
	require.NoError(t, c.Decode(second, &b))
	assert.Equal(t, a, b)
}

func TestCodec_SharedRegistryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	// Two producers registering the same schema must agree on the id.
	id1, err := newTestCodec(reg).SchemaID(ctx, contracts.HelloReply{})
	require.NoError(t, err)
	id2, err := newTestCodec(reg).SchemaID(ctx, contracts.HelloReply{})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, reg.Versions("greetings-value"))
}

func TestCodec_RegistryUnavailable(t *testing.T) {
	reg := &countingRegistry{inner: NewMemoryRegistry(), err: errors.New("connection refused")}
	c := newTestCodec(reg)

	_, err := c.Encode(context.Background(), contracts.HelloReply{Message: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaRegistry)
	assert.Contains(t, err.Error(), "connection refused")

	// A later attempt retries registration rather than caching the failure.
	reg.err = nil
	_, err = c.Encode(context.Background(), contracts.HelloReply{Message: "x"})
	require.NoError(t, err)
	assert.Equal(t, 2, reg.calls)
}

type badSchema struct{}

func (badSchema) AvroSchema() string         { return `{"type": "record"}` }
func (badSchema) AvroNative() map[string]any { return nil }

func TestCodec_InvalidSchema(t *testing.T) {
	reg := &countingRegistry{inner: NewMemoryRegistry()}
	c := newTestCodec(reg)

	_, err := c.Encode(context.Background(), badSchema{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerialization)
	assert.Equal(t, 0, reg.calls)
}

func TestCodec_DecodeUnknownID(t *testing.T) {
	c := newTestCodec(NewMemoryRegistry())

	err := c.Decode([]byte{0, 0, 0, 0, 9, 2, 'h'}, &contracts.HelloReply{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerialization)
}

type closingRegistry struct {
	*MemoryRegistry
	closed int
}

func (c *closingRegistry) Close() error {
	c.closed++
	return nil
}

func TestCodec_Close(t *testing.T) {
	reg := &closingRegistry{MemoryRegistry: NewMemoryRegistry()}
	require.NoError(t, newTestCodec(reg).Close())
	assert.Equal(t, 1, reg.closed)

	// Registries without a connection are fine too.
	require.NoError(t, newTestCodec(NewMemoryRegistry()).Close())
}
