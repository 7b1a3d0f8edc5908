package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/internal/testutil"
)

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRequestLogging_LevelByStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		level  string
		msg    string
	}{
		{http.StatusOK, "info", "HTTP request completed"},
		{http.StatusNotFound, "warn", "HTTP request completed with client error"},
		{http.StatusBadGateway, "error", "HTTP request completed with server error"},
	}
	for _, tt := range tests {
		logger := testutil.NewMockLogger()
		h := chimw.RequestID(RequestLogging(logger, DefaultLoggingConfig())(statusHandler(tt.status)))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/normalize", nil))

		msg, ok := logger.Find(tt.level, tt.msg)
		require.True(t, ok, "status %d", tt.status)
		status, _ := msg.Field("status")
		assert.Equal(t, tt.status, status)
		bytes, _ := msg.Field("bytes")
		assert.Equal(t, 2, bytes)
		reqID, _ := msg.Field(logging.FieldRequestID)
		assert.NotEmpty(t, reqID)
		assert.Equal(t, reqID, rec.Header().Get(chimw.RequestIDHeader))
	}
}

func TestRequestLogging_SlowRequest(t *testing.T) {
	t.Parallel()
	logger := testutil.NewMockLogger()
	slow := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Millisecond)
	})
	h := RequestLogging(logger, LoggingConfig{SlowThreshold: time.Millisecond})(slow)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.True(t, logger.HasMessage("warn", "HTTP request completed (slow)"))
}

func TestRequestLogging_SkipPathsKeepRequestID(t *testing.T) {
	t.Parallel()
	logger := testutil.NewMockLogger()

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	})
	h := chimw.RequestID(RequestLogging(logger, DefaultLoggingConfig())(inner))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Empty(t, logger.GetMessages())
	assert.NotEmpty(t, seen)
}

//Personal.AI order the ending
