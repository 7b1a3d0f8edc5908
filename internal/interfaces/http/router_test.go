package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-normalizer/internal/application/normalization"
	"github.com/turtacn/patent-normalizer/internal/domain/publicsearch"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/patent-normalizer/internal/interfaces/http/handlers"
	"github.com/turtacn/patent-normalizer/internal/interfaces/http/middleware"
	"github.com/turtacn/patent-normalizer/internal/testutil"
)

type apiResponse struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
	Error     *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, prometheus.MetricsCollector, *testutil.MockLogger) {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "api"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)
	logger := testutil.NewMockLogger()

	svc, err := normalization.NewService(normalization.Config{}, logger, metrics)
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		NormalizeHandler: handlers.NewNormalizeHandler(svc, logger, 0),
		HealthHandler:    handlers.NewHealthHandler("test"),
		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
	}), collector, logger
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestNewRouter_Probes(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestRouter(t)

	rec, _ := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_NormalizeDocument(t *testing.T) {
	t.Parallel()
	h, collector, _ := newTestRouter(t)

	rec, resp := do(t, h, http.MethodPost, "/api/v1/normalize/"+publicsearch.Document,
		`{"guid":"US-10000000-B2","urpn":["5237331","5877851"],"usRefGroup":["cited by examiner"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RequestID)

	var res struct {
		Schema string         `json:"schema"`
		Record map[string]any `json:"record"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, publicsearch.Document, res.Schema)
	assert.Equal(t, "US-10000000-B2", res.Record["guid"])
	assert.Len(t, res.Record["us_references"], 1)

	scrape := httptest.NewRecorder()
	collector.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(scrape.Body)
	assert.Contains(t, string(body), `api_http_requests_total{method="POST",path="/api/v1/normalize/{schema}",status_code="200"} 1`)
	assert.Contains(t, string(body), `api_records_normalized_total{schema="publicsearch.document"`)
}

func TestNewRouter_NormalizeBatchDefaultSchema(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestRouter(t)

	rec, resp := do(t, h, http.MethodPost, "/api/v1/normalize", `[{"guid":"A"},"oops",{"guid":"C"}]`)
	require.Equal(t, http.StatusOK, rec.Code)

	var batch struct {
		Results []*struct {
			Record map[string]any `json:"record"`
		} `json:"results"`
		Failed []struct {
			Index int `json:"index"`
		} `json:"failed"`
		TotalProcessed int `json:"total_processed"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &batch))
	assert.Equal(t, 3, batch.TotalProcessed)
	require.Len(t, batch.Results, 3)
	assert.Equal(t, "A", batch.Results[0].Record["guid"])
	assert.Nil(t, batch.Results[1])
	assert.Equal(t, "C", batch.Results[2].Record["guid"])
	require.Len(t, batch.Failed, 1)
	assert.Equal(t, 1, batch.Failed[0].Index)
}

func TestNewRouter_ErrorMapping(t *testing.T) {
	t.Parallel()
	h, _, logger := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown schema", http.MethodPost, "/api/v1/normalize/nope", `{}`, http.StatusNotFound, "SCH_008"},
		{"bad json", http.MethodPost, "/api/v1/normalize", `{`, http.StatusBadRequest, "NRM_002"},
		{"empty claims", http.MethodPost, "/api/v1/claims/parse", `{"text":"  "}`, http.StatusBadRequest, "CLM_001"},
	}
	for _, tt := range tests {
		rec, resp := do(t, h, tt.method, tt.target, tt.body)
		assert.Equal(t, tt.status, rec.Code, tt.name)
		require.NotNil(t, resp.Error, tt.name)
		assert.Equal(t, tt.code, resp.Error.Code, tt.name)
	}
	assert.True(t, logger.HasMessage("warn", "HTTP request completed with client error"))
}

func TestNewRouter_ParseClaims(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestRouter(t)

	rec, resp := do(t, h, http.MethodPost, "/api/v1/claims/parse",
		`{"text":"1. A system comprising a detector. 2. The system of claim 1, wherein the detector is cooled."}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Claims []struct {
			Number    int  `json:"number"`
			DependsOn *int `json:"depends_on"`
		} `json:"claims"`
		Tree struct {
			Roots []int `json:"roots"`
		} `json:"tree"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	require.Len(t, out.Claims, 2)
	require.NotNil(t, out.Claims[1].DependsOn)
	assert.Equal(t, 1, *out.Claims[1].DependsOn)
	assert.Equal(t, []int{1}, out.Tree.Roots)
}

func TestNewRouter_Schemas(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestRouter(t)

	rec, resp := do(t, h, http.MethodGet, "/api/v1/schemas", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var infos []normalization.SchemaInfo
	require.NoError(t, json.Unmarshal(resp.Data, &infos))
	var found bool
	for _, info := range infos {
		if info.Name == publicsearch.Document {
			found = true
			assert.True(t, info.Default)
		}
	}
	assert.True(t, found)
}

func TestNewRouter_CORSAndRateLimit(t *testing.T) {
	t.Parallel()
	svc, err := normalization.NewService(normalization.Config{}, nil, nil)
	require.NoError(t, err)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = []string{"https://app.example.com"}
	h := NewRouter(RouterConfig{
		NormalizeHandler: handlers.NewNormalizeHandler(svc, nil, 0),
		HealthHandler:    handlers.NewHealthHandler("test"),
		CORS:             &cors,
		RateLimiter:      middleware.NewTokenBucketLimiter(0.001, 1, 0),
	})

	preflight := httptest.NewRequest(http.MethodOptions, "/api/v1/normalize", nil)
	preflight.Header.Set("Origin", "https://app.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = do(t, h, http.MethodGet, "/api/v1/schemas", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, resp := do(t, h, http.MethodGet, "/api/v1/schemas", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "COMMON_012", resp.Error.Code)

	rec, _ = do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_NilHandlers(t *testing.T) {
	t.Parallel()
	h := NewRouter(RouterConfig{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/schemas", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_UnknownRouteEnvelope(t *testing.T) {
	t.Parallel()
	h, _, _ := newTestRouter(t)

	tests := []struct {
		name   string
		target string
	}{
		{"top level", "/nope"},
		{"under api prefix", "/api/v1/patents"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, resp := do(t, h, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "COMMON_005", resp.Error.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

//Personal.AI order the ending
