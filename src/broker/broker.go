// Package broker publishes keyed, schema-encoded messages and waits for the
// broker's acknowledgement of each one.
package broker

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"kafka-producer/src/codec"
	"kafka-producer/src/contracts"
)

// ErrClosed is reported when publishing through a closed broker.
var ErrClosed = errors.New("broker is closed")

// Encoder serializes payloads. *codec.Codec satisfies it.
type Encoder interface {
	Encode(ctx context.Context, v codec.Record) ([]byte, error)
	Close() error
}

// EncodeKey serializes a key as a 4-byte big-endian integer, the format
// consumers using the standard int32 deserializer expect.
func EncodeKey(key int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(key))
	return b
}

// DecodeKey reverses EncodeKey.
func DecodeKey(b []byte) (int32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("int32 key must be 4 bytes, got %d", len(b))
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// failure folds err into a failed outcome with the most specific code.
func failure(err error) contracts.DeliveryOutcome {
	return contracts.Failed(err.Error(), Classify(err))
}

// Classify maps a publish error to an ErrorCode. Broker-side errors keep the
// Kafka protocol error name.
func Classify(err error) contracts.ErrorCode {
	var kafkaErr *kerr.Error
	var netErr net.Error

	switch {
	case err == nil:
		return ""
	case errors.Is(err, codec.ErrSchemaRegistry):
		return contracts.ErrCodeSchemaRegistry
	case errors.Is(err, codec.ErrSerialization):
		return contracts.ErrCodeSerialization
	case errors.As(err, &kafkaErr):
		return contracts.ErrorCode(kafkaErr.Message)
	case errors.Is(err, kgo.ErrRecordTimeout), errors.Is(err, context.DeadlineExceeded):
		return contracts.ErrCodeTimedOut
	case errors.Is(err, context.Canceled), errors.Is(err, kgo.ErrAborting):
		return contracts.ErrCodeCanceled
	case errors.Is(err, ErrClosed), errors.Is(err, kgo.ErrClientClosed), errors.As(err, &netErr):
		return contracts.ErrCodeTransport
	default:
		return contracts.ErrCodeUnknown
	}
}
