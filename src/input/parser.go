// Package input turns operator console lines into messages.
package input

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"kafka-producer/src/contracts"
)

// ErrMalformedKey is returned when the text before the first separator is not
// an integer.
var ErrMalformedKey = errors.New("malformed key")

// MalformedKeyError carries the offending key text.
type MalformedKeyError struct {
	Key string
	Err error
}

func (e *MalformedKeyError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrMalformedKey, e.Key, e.Err)
}

// Unwrap exposes both ErrMalformedKey and the strconv cause.
func (e *MalformedKeyError) Unwrap() []error {
	return []error{ErrMalformedKey, e.Err}
}

// ParseLine parses "key value" or "value" into a message.
//
// ok is false for blank lines, which carry no message and no error. The line
// is split at the first whitespace rune only; everything after it, further
// whitespace included, is the payload.
func ParseLine(line string) (msg contracts.Message, ok bool, err error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return contracts.Message{}, false, nil
	}

	idx := strings.IndexFunc(line, unicode.IsSpace)
	if idx == -1 {
		return contracts.Message{Payload: contracts.HelloReply{Message: line}}, true, nil
	}

	prefix := line[:idx]
	key, err := strconv.ParseInt(prefix, 10, 32)
	if err != nil {
		return contracts.Message{}, false, &MalformedKeyError{Key: prefix, Err: err}
	}

	_, size := utf8.DecodeRuneInString(line[idx:])
	return contracts.Message{
		Key:     int32(key),
		Payload: contracts.HelloReply{Message: line[idx+size:]},
	}, true, nil
}
