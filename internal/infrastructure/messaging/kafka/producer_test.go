package kafka

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/patent-normalizer/pkg/errors"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestValidateProducerConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b:9092"}}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{Brokers: []string{"b"}, MaxRetries: -1}))
	assert.Error(t, ValidateProducerConfig(ProducerConfig{
		Brokers:  []string{"b"},
		Security: SecurityConfig{SASLMechanism: "GSSAPI", SASLUsername: "u", SASLPassword: "p"},
	}))
}

func TestNewProducer_BuildsWriter(t *testing.T) {
	t.Parallel()
	p, err := NewProducer(ProducerConfig{
		Brokers:     []string{"localhost:9092"},
		Compression: "zstd",
		Security:    SecurityConfig{SASLMechanism: MechanismScramSHA512, SASLUsername: "u", SASLPassword: "p"},
	}, nil)
	require.NoError(t, err)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.NoError(t, p.Close())
}

func TestProducer_Publish(t *testing.T) {
	t.Parallel()
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, ProducerConfig{Brokers: []string{"b"}}, nil)

	err := p.Publish(context.Background(), &ProducerMessage{
		Topic:   "out",
		Key:     []byte("k"),
		Value:   []byte(`{"a":1}`),
		Headers: map[string]string{HeaderSchema: "s"},
	})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, "out", w.written[0].Topic)
	assert.False(t, w.written[0].Time.IsZero())
	require.Len(t, w.written[0].Headers, 1)
	assert.Equal(t, HeaderSchema, w.written[0].Headers[0].Key)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Sent)
	assert.Equal(t, int64(7), stats.BytesSent)
}

func TestProducer_PublishValidation(t *testing.T) {
	t.Parallel()
	p := NewProducerWithWriter(&fakeWriter{}, ProducerConfig{Brokers: []string{"b"}, MaxMessageBytes: 4}, nil)

	tests := []struct {
		name string
		msg  *ProducerMessage
	}{
		{"nil", nil},
		{"no topic", &ProducerMessage{Value: []byte("x")}},
		{"no value", &ProducerMessage{Topic: "t"}},
		{"too large", &ProducerMessage{Topic: "t", Value: []byte(strings.Repeat("x", 5))}},
	}
	for _, tt := range tests {
		err := p.Publish(context.Background(), tt.msg)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation), tt.name)
	}
}

func TestProducer_PublishWriteError(t *testing.T) {
	t.Parallel()
	p := NewProducerWithWriter(&fakeWriter{err: errors.New("leader not available")}, ProducerConfig{Brokers: []string{"b"}}, nil)
	err := p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("x")})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeExternalService))
	assert.Equal(t, int64(1), p.Stats().Failed)
}

func TestProducer_Close(t *testing.T) {
	t.Parallel()
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, ProducerConfig{Brokers: []string{"b"}}, nil)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("x")}), ErrProducerClosed)
}

//Personal.AI order the ending
