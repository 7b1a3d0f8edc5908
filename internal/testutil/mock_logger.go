// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"sync"

	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
)

// LogMessage is one entry captured by MockLogger.  Fields include those
// attached with With, WithError and WithContext.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// Field returns the value of the first field named key.
func (m LogMessage) Field(key string) (interface{}, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

type logSink struct {
	mu       sync.Mutex
	messages []LogMessage
}

// MockLogger implements logging.Logger and records every entry.  Child
// loggers share the parent's record.
type MockLogger struct {
	sink   *logSink
	name   string
	fields []logging.Field
}

var _ logging.Logger = (*MockLogger)(nil)

// NewMockLogger creates a new MockLogger instance.
func NewMockLogger() *MockLogger {
	return &MockLogger{sink: &logSink{}}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	all := make([]logging.Field, 0, len(m.fields)+len(fields))
	all = append(all, m.fields...)
	all = append(all, fields...)

	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.messages = append(m.sink.messages, LogMessage{
		Level:   level,
		Logger:  m.name,
		Message: msg,
		Fields:  all,
	})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }

// Fatal records the entry without exiting.
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

func (m *MockLogger) child(name string, extra ...logging.Field) *MockLogger {
	fields := make([]logging.Field, 0, len(m.fields)+len(extra))
	fields = append(fields, m.fields...)
	fields = append(fields, extra...)
	return &MockLogger{sink: m.sink, name: name, fields: fields}
}

func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	return m.child(m.name, fields...)
}

func (m *MockLogger) Named(name string) logging.Logger {
	if m.name != "" {
		name = m.name + "." + name
	}
	return m.child(name)
}

func (m *MockLogger) WithContext(ctx context.Context) logging.Logger {
	if id := logging.RequestIDFromContext(ctx); id != "" {
		return m.child(m.name, logging.String(logging.FieldRequestID, id))
	}
	return m
}

func (m *MockLogger) WithError(err error) logging.Logger {
	if err == nil {
		return m
	}
	return m.child(m.name, logging.Err(err))
}

func (m *MockLogger) Sync() error { return nil }

// GetMessages returns a copy of all logged messages.
func (m *MockLogger) GetMessages() []LogMessage {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	out := make([]LogMessage, len(m.sink.messages))
	copy(out, m.sink.messages)
	return out
}

// Clear removes all logged messages.
func (m *MockLogger) Clear() {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.messages = m.sink.messages[:0]
}

// HasMessage reports whether a message with the given level and text was
// logged.
func (m *MockLogger) HasMessage(level, msg string) bool {
	_, ok := m.Find(level, msg)
	return ok
}

// Find returns the first message with the given level and text.
func (m *MockLogger) Find(level, msg string) (LogMessage, bool) {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	for _, logged := range m.sink.messages {
		if logged.Level == level && logged.Message == msg {
			return logged, true
		}
	}
	return LogMessage{}, false
}

// Count returns the number of messages logged at level.
func (m *MockLogger) Count(level string) int {
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	n := 0
	for _, logged := range m.sink.messages {
		if logged.Level == level {
			n++
		}
	}
	return n
}

//Personal.AI order the ending
