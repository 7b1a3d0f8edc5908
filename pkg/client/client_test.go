package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-normalizer/internal/application/normalization"
	"github.com/turtacn/patent-normalizer/internal/domain/publicsearch"
	apihttp "github.com/turtacn/patent-normalizer/internal/interfaces/http"
	"github.com/turtacn/patent-normalizer/internal/interfaces/http/handlers"
	"github.com/turtacn/patent-normalizer/internal/testutil"
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func newAPIClient(t *testing.T) *Client {
	t.Helper()
	logger := testutil.NewMockLogger()
	svc, err := normalization.NewService(normalization.Config{}, logger, nil)
	require.NoError(t, err)

	server := httptest.NewServer(apihttp.NewRouter(apihttp.RouterConfig{
		NormalizeHandler: handlers.NewNormalizeHandler(svc, logger, 0),
		HealthHandler:    handlers.NewHealthHandler("test"),
		Logger:           logger,
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		wantURL string
		wantErr bool
	}{
		{"plain", "http://api.example.com", "http://api.example.com", false},
		{"trailing slash", "https://api.example.com/", "https://api.example.com", false},
		{"empty", "", "", true},
		{"unsupported scheme", "ftp://api.example.com", "", true},
		{"no host", "invalid-url", "", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewClient(tt.baseURL)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, c.baseURL)
			assert.Equal(t, defaultRetryMax, c.retryMax)
			assert.Contains(t, c.userAgent, "patent-normalizer-go-sdk/")
		})
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	t.Parallel()

	var seen http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.Write([]byte(`{"success":true,"data":[]}`))
	}, WithAPIKey("secret"), WithUserAgent("tests/1.0"))

	_, err := c.Schemas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", seen.Get("Authorization"))
	assert.Equal(t, "tests/1.0", seen.Get("User-Agent"))
	assert.Equal(t, "application/json", seen.Get("Accept"))
	assert.Empty(t, seen.Get("Content-Type"))
	assert.NotEmpty(t, seen.Get(requestIDHeader))
}

func TestClient_NoAuthorizationWithoutKey(t *testing.T) {
	t.Parallel()

	var auth atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"data":[]}`))
	})
	_, err := c.Schemas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", auth.Load())
}

func TestClient_NormalizePaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		schema string
		want   string
	}{
		{"default schema", "", "/api/v1/normalize"},
		{"named schema", "publicsearch.document", "/api/v1/normalize/publicsearch.document"},
		{"escaped", "a b", "/api/v1/normalize/a%20b"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var path string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.EscapedPath()
				w.Write([]byte(`{"success":true,"data":{"schema":"x","record":{}}}`))
			})
			_, err := c.Normalize(context.Background(), tt.schema, map[string]any{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, path)
		})
	}
}

func TestClient_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	c, err := NewClient("http://api.example.com")
	require.NoError(t, err)

	_, err = c.Normalize(context.Background(), "", nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	_, err = c.NormalizeBatch(context.Background(), "", nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	_, err = c.ParseClaims(context.Background(), "  ")
	assert.True(t, errors.IsCode(err, errors.CodeClaimTextEmpty))
}

func TestClient_APIErrorDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
		notFound bool
	}{
		{
			name:     "envelope",
			status:   http.StatusNotFound,
			body:     `{"success":false,"error":{"code":"SCH_008","message":"schema not found","detail":"nope"},"request_id":"srv-1"}`,
			wantCode: "SCH_008",
			wantMsg:  "schema not found",
			notFound: true,
		},
		{
			name:    "plain text",
			status:  http.StatusBadRequest,
			body:    "bad things\n",
			wantMsg: "bad things",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var calls int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Normalize(context.Background(), "nope", map[string]any{})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.notFound, apiErr.IsNotFound())
			assert.True(t, apiErr.IsClientError())
			assert.NotEmpty(t, apiErr.RequestID)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls int32
	var ids []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get(requestIDHeader))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"1. A widget."}`, string(body))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"claims":[{"number":1,"text":"A widget.","type":"independent","depends_on":null}]}}`))
	}, WithRetryMax(3))

	res, err := c.ParseClaims(context.Background(), "1. A widget.")
	require.NoError(t, err)
	require.Len(t, res.Claims, 1)
	assert.Nil(t, res.Claims[0].DependsOn)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, ids, 3)
	assert.Equal(t, ids[0], ids[2])
}

func TestClient_RetriesExhausted(t *testing.T) {
	t.Parallel()

	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetryMax(2))

	_, err := c.Schemas(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetryWait(time.Hour, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Schemas(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_CalculateBackoff(t *testing.T) {
	t.Parallel()

	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: time.Second}
	for attempt, base := range map[int]time.Duration{1: 100 * time.Millisecond, 2: 200 * time.Millisecond, 5: time.Second} {
		got := c.calculateBackoff(attempt)
		assert.GreaterOrEqual(t, got, base)
		assert.Less(t, got, base+base/4+1)
	}
}

func TestClient_AgainstRouter(t *testing.T) {
	t.Parallel()
	c := newAPIClient(t)
	ctx := context.Background()

	t.Run("schemas", func(t *testing.T) {
		infos, err := c.Schemas(ctx)
		require.NoError(t, err)
		var names []string
		for _, info := range infos {
			names = append(names, info.Name)
		}
		assert.Contains(t, names, publicsearch.Document)
	})

	t.Run("normalize", func(t *testing.T) {
		var record map[string]any
		require.NoError(t, json.Unmarshal([]byte(`{"guid":"US-10000000-B2","urpn":["5237331"],"usRefGroup":["cited by examiner"]}`), &record))
		res, err := c.Normalize(ctx, publicsearch.Document, record)
		require.NoError(t, err)
		assert.Equal(t, publicsearch.Document, res.Schema)
		assert.Equal(t, "US-10000000-B2", res.Record["guid"])
	})

	t.Run("batch", func(t *testing.T) {
		batch, err := c.NormalizeBatch(ctx, "", []map[string]any{{"guid": "A"}, {"guid": "B"}})
		require.NoError(t, err)
		assert.Equal(t, 2, batch.TotalProcessed)
		require.Len(t, batch.Results, 2)
		assert.Equal(t, "B", batch.Results[1].Record["guid"])
		assert.Empty(t, batch.Failed)
		assert.NotEmpty(t, batch.BatchID)
	})

	t.Run("claims", func(t *testing.T) {
		res, err := c.ParseClaims(ctx, "1. A system comprising a detector. 2. The system of claim 1, wherein the detector is cooled.")
		require.NoError(t, err)
		require.Len(t, res.Claims, 2)
		require.NotNil(t, res.Claims[1].DependsOn)
		assert.Equal(t, 1, *res.Claims[1].DependsOn)
		require.NotNil(t, res.Tree)
		assert.Equal(t, []int{2}, res.Tree.Children[1])
	})

	t.Run("unknown schema", func(t *testing.T) {
		_, err := c.Normalize(ctx, "missing", map[string]any{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "SCH_008", apiErr.Code)
		assert.True(t, apiErr.IsNotFound())
	})
}

//Personal.AI order the ending
