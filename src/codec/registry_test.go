package codec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/sr"

	"kafka-producer/src/contracts"
)

func TestMemoryRegistry_CreateSchema(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()
	schema := sr.Schema{Schema: contracts.HelloReplySchema, Type: sr.TypeAvro}

	first, err := reg.CreateSchema(ctx, "a-value", schema)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 1, first.Version)

	t.Run("same content is idempotent", func(t *testing.T) {
		// Whitespace differences do not change the canonical form.
		compact := sr.Schema{
			Schema: `{"type":"record","name":"HelloReply","namespace":"producer.v1","fields":[{"name":"message","type":"string"}]}`,
			Type:   sr.TypeAvro,
		}
		again, err := reg.CreateSchema(ctx, "a-value", compact)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, 1, again.Version)
		assert.Equal(t, 1, reg.Versions("a-value"))
	})

	t.Run("same schema under another subject shares the id", func(t *testing.T) {
		other, err := reg.CreateSchema(ctx, "b-value", schema)
		require.NoError(t, err)
		assert.Equal(t, first.ID, other.ID)
		assert.Equal(t, 1, other.Version)
	})

	t.Run("new schema appends a version", func(t *testing.T) {
		v2 := sr.Schema{
			Schema: `{"type":"record","name":"HelloReply","namespace":"producer.v1","fields":[{"name":"message","type":"string"},{"name":"lang","type":"string","default":"en"}]}`,
			Type:   sr.TypeAvro,
		}
		next, err := reg.CreateSchema(ctx, "a-value", v2)
		require.NoError(t, err)
		assert.Equal(t, 2, next.ID)
		assert.Equal(t, 2, next.Version)

		text, ok := reg.SchemaByID(2)
		require.True(t, ok)
		assert.Equal(t, v2.Schema, text)
	})

	t.Run("rejects invalid schema", func(t *testing.T) {
		_, err := reg.CreateSchema(ctx, "a-value", sr.Schema{Schema: "{", Type: sr.TypeAvro})
		assert.Error(t, err)
	})

	t.Run("rejects non-avro schema", func(t *testing.T) {
		_, err := reg.CreateSchema(ctx, "a-value", sr.Schema{Schema: "syntax = \"proto3\";", Type: sr.TypeProtobuf})
		assert.Error(t, err)
	})

	t.Run("honours cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := reg.CreateSchema(cctx, "a-value", schema)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSubjectForTopic(t *testing.T) {
	assert.Equal(t, "greetings-value", SubjectForTopic("greetings"))
}
