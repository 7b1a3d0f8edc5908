package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-normalizer/internal/application/normalization"
	"github.com/turtacn/patent-normalizer/internal/domain/claims"
	"github.com/turtacn/patent-normalizer/internal/domain/schema"
	"github.com/turtacn/patent-normalizer/internal/testutil"
	"github.com/turtacn/patent-normalizer/pkg/errors"
)

type stubService struct {
	lastSchema string
	lastRaw    any
	lastText   string
	batch      *normalization.BatchResult
	err        error
}

func (s *stubService) Normalize(_ context.Context, name string, raw any) (*schema.Result, error) {
	s.lastSchema, s.lastRaw = name, raw
	if s.err != nil {
		return nil, s.err
	}
	return &schema.Result{Schema: "doc", Record: schema.Record{"guid": "US-1"}}, nil
}

func (s *stubService) NormalizeBatch(_ context.Context, name string, records []any) (*normalization.BatchResult, error) {
	s.lastSchema, s.lastRaw = name, records
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

func (s *stubService) ParseClaims(_ context.Context, text string) (*normalization.ClaimsResult, error) {
	s.lastText = text
	if s.err != nil {
		return nil, s.err
	}
	return &normalization.ClaimsResult{Claims: []claims.Claim{{Number: 1, Text: "A widget."}}}, nil
}

func (s *stubService) Schemas() []normalization.SchemaInfo {
	return []normalization.SchemaInfo{{Name: "doc", Kind: "composite", Default: true}}
}

// envelope mirrors common.APIResponse with a raw payload.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"error"`
}

func serve(t *testing.T, h *NormalizeHandler, method, target, contentType, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/schemas", h.ListSchemas)
	r.Post("/normalize", h.Normalize)
	r.Post("/normalize/{schema}", h.Normalize)
	r.Post("/claims/parse", h.ParseClaims)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestNormalizeHandler_SingleRecord(t *testing.T) {
	t.Parallel()
	svc := &stubService{}
	h := NewNormalizeHandler(svc, nil, 0)

	rec, env := serve(t, h, http.MethodPost, "/normalize/publicsearch.document", "application/json", `{"guid":"US-1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "publicsearch.document", svc.lastSchema)
	assert.Equal(t, map[string]any{"guid": "US-1"}, svc.lastRaw)

	var res schema.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "doc", res.Schema)
}

func TestNormalizeHandler_DefaultSchemaRoute(t *testing.T) {
	t.Parallel()
	svc := &stubService{}
	rec, _ := serve(t, NewNormalizeHandler(svc, nil, 0), http.MethodPost, "/normalize", "", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.lastSchema)
}

func TestNormalizeHandler_Batch(t *testing.T) {
	t.Parallel()
	svc := &stubService{batch: &normalization.BatchResult{
		BatchID: "batch_1",
		Results: []*schema.Result{{Schema: "doc", Record: schema.Record{}}, nil},
		Errors: []normalization.BatchItemError{{
			Index: 1,
			Err:   errors.New(errors.CodeInputNotMapping, "input record is not a mapping").WithDetail("type=string"),
		}},
	}}
	rec, env := serve(t, NewNormalizeHandler(svc, nil, 0), http.MethodPost, "/normalize/doc", "application/json", `[{}, "x"]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, svc.lastRaw, 2)

	var batch struct {
		BatchID        string            `json:"batch_id"`
		Results        []json.RawMessage `json:"results"`
		TotalProcessed int               `json:"total_processed"`
		Failed         []struct {
			Index int `json:"index"`
			Error struct {
				Code   string `json:"code"`
				Detail string `json:"detail"`
			} `json:"error"`
		} `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &batch))
	assert.Equal(t, "batch_1", batch.BatchID)
	assert.Equal(t, 2, batch.TotalProcessed)
	assert.Equal(t, "null", string(batch.Results[1]))
	require.Len(t, batch.Failed, 1)
	assert.Equal(t, 1, batch.Failed[0].Index)
	assert.Equal(t, "NRM_001", batch.Failed[0].Error.Code)
	assert.Equal(t, "type=string", batch.Failed[0].Error.Detail)
}

func TestNormalizeHandler_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		svcErr     error
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", nil, `{"a":`, http.StatusBadRequest, "NRM_002"},
		{"unknown schema", errors.New(errors.CodeSchemaNotFound, "schema not found").WithDetail("schema=x"), `{}`, http.StatusNotFound, "SCH_008"},
		{"not a mapping", errors.New(errors.CodeInputNotMapping, "input record is not a mapping"), `3`, http.StatusUnprocessableEntity, "NRM_001"},
		{"unexpected failure", context.DeadlineExceeded, `{}`, http.StatusInternalServerError, "COMMON_001"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger := testutil.NewMockLogger()
			h := NewNormalizeHandler(&stubService{err: tt.svcErr}, logger, 0)
			rec, env := serve(t, h, http.MethodPost, "/normalize/x", "application/json", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			if tt.wantStatus >= 500 {
				assert.Equal(t, "internal server error", env.Error.Message)
				assert.True(t, logger.HasMessage("error", "request failed"))
			}
		})
	}
}

func TestNormalizeHandler_BodyTooLarge(t *testing.T) {
	t.Parallel()
	rec, env := serve(t, NewNormalizeHandler(&stubService{}, nil, 8), http.MethodPost, "/normalize", "", `{"guid":"US-10000000"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "limit=8", env.Error.Detail)
}

func TestNormalizeHandler_ParseClaims(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		wantText    string
	}{
		{"json body", "application/json; charset=utf-8", `{"text":"1. A widget."}`, "1. A widget."},
		{"plain text", "text/plain", "1. A widget.", "1. A widget."},
		{"html", "text/html", "<p>1. A widget.</p>", "<p>1. A widget.</p>"},
	}
	for _, tt := range tests {
		svc := &stubService{}
		rec, env := serve(t, NewNormalizeHandler(svc, nil, 0), http.MethodPost, "/claims/parse", tt.contentType, tt.body)
		assert.Equal(t, http.StatusOK, rec.Code, tt.name)
		assert.True(t, env.Success, tt.name)
		assert.Equal(t, tt.wantText, svc.lastText, tt.name)
	}
}

func TestNormalizeHandler_ParseClaimsErrors(t *testing.T) {
	t.Parallel()
	svc := &stubService{err: errors.New(errors.CodeClaimTextEmpty, "claim text is empty")}
	rec, env := serve(t, NewNormalizeHandler(svc, nil, 0), http.MethodPost, "/claims/parse", "text/plain", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CLM_001", env.Error.Code)

	rec, env = serve(t, NewNormalizeHandler(&stubService{}, nil, 0), http.MethodPost, "/claims/parse", "application/json", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "NRM_002", env.Error.Code)
}

func TestNormalizeHandler_ListSchemas(t *testing.T) {
	t.Parallel()
	rec, env := serve(t, NewNormalizeHandler(&stubService{}, nil, 0), http.MethodGet, "/schemas", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var infos []normalization.SchemaInfo
	require.NoError(t, json.Unmarshal(env.Data, &infos))
	require.Len(t, infos, 1)
	assert.True(t, infos[0].Default)
}

//Personal.AI order the ending
