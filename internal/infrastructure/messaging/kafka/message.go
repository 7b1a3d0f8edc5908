package kafka

import (
	"context"
	"time"

	"github.com/turtacn/patent-normalizer/pkg/errors"
)

// Header keys understood by the stream worker.
const (
	HeaderSchema        = "x-schema"
	HeaderRecordID      = "x-record-id"
	HeaderOriginalTopic = "x-original-topic"
	HeaderError         = "x-error"
	HeaderErrorCode     = "x-error-code"
	HeaderAttempts      = "x-attempts"
)

// Message is a consumed record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerMessage is a record to publish.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one consumed message.
type MessageHandler func(ctx context.Context, msg *Message) error

// Publisher publishes single messages.  *Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// TopicConfig describes a topic to create.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
	MaxMessageBytes   int
	Configs           map[string]string
}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marks a handler error as not worth retrying; the consumer sends
// the message to the dead-letter topic straight away.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

//Personal.AI order the ending
