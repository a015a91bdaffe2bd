// Package contracts defines the message types exchanged between the operator
// console, the schema codec and the broker.
package contracts

import "fmt"

// DefaultTopic is used when no topic is configured.
const DefaultTopic = "producer.v1.raw"

// HelloReplySchema is the Avro writer schema for HelloReply.
const HelloReplySchema = `{
  "type": "record",
  "name": "HelloReply",
  "namespace": "producer.v1",
  "fields": [
    {"name": "message", "type": "string"}
  ]
}`

// HelloReply is the payload published for every operator line.
type HelloReply struct {
	// Text typed by the operator after the key.
	Message string `json:"message"`
}

// AvroSchema returns the writer schema registered for HelloReply.
func (HelloReply) AvroSchema() string {
	return HelloReplySchema
}

// AvroNative returns the goavro native form of the record.
func (h HelloReply) AvroNative() map[string]any {
	return map[string]any{"message": h.Message}
}

// FromAvroNative populates the record from its goavro native form.
func (h *HelloReply) FromAvroNative(native map[string]any) error {
	msg, ok := native["message"].(string)
	if !ok {
		return fmt.Errorf("field message: expected string, got %T", native["message"])
	}
	h.Message = msg
	return nil
}

// Message is one parsed operator line.
type Message struct {
	// Partitioning key. Zero when the operator did not supply one.
	Key int32
	// Structured value serialized through the schema registry.
	Payload HelloReply
}

// ErrorCode classifies a failed delivery.
type ErrorCode string

const (
	ErrCodeSchemaRegistry ErrorCode = "Local_SchemaRegistry"
	ErrCodeSerialization  ErrorCode = "Local_Serialization"
	ErrCodeTransport      ErrorCode = "Local_Transport"
	ErrCodeTimedOut       ErrorCode = "Local_MsgTimedOut"
	ErrCodeCanceled       ErrorCode = "Local_Canceled"
	ErrCodeUnknown        ErrorCode = "Local_Unknown"
)

// DeliveryOutcome is the result of a single publish attempt.
// Topic, Partition and Offset are only meaningful when Success is true;
// Reason and Code only when it is false.
type DeliveryOutcome struct {
	Success   bool
	Topic     string
	Partition int32
	Offset    int64
	Reason    string
	Code      ErrorCode
}

// Delivered builds a successful outcome.
func Delivered(topic string, partition int32, offset int64) DeliveryOutcome {
	return DeliveryOutcome{Success: true, Topic: topic, Partition: partition, Offset: offset}
}

// Failed builds a failed outcome.
func Failed(reason string, code ErrorCode) DeliveryOutcome {
	return DeliveryOutcome{Reason: reason, Code: code}
}

// String formats the outcome the way it is reported to the operator.
func (o DeliveryOutcome) String() string {
	if o.Success {
		return fmt.Sprintf("%s [%d] @%d", o.Topic, o.Partition, o.Offset)
	}
	return fmt.Sprintf("%s [%s]", o.Reason, o.Code)
}
