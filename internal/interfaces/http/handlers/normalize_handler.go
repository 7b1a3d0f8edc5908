package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/patent-normalizer/internal/application/normalization"
	"github.com/turtacn/patent-normalizer/internal/domain/schema"
	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/pkg/errors"
	"github.com/turtacn/patent-normalizer/pkg/types/common"
)

// NormalizationService is what the handlers need from the application layer.
type NormalizationService interface {
	Normalize(ctx context.Context, schemaName string, raw any) (*schema.Result, error)
	NormalizeBatch(ctx context.Context, schemaName string, records []any) (*normalization.BatchResult, error)
	ParseClaims(ctx context.Context, text string) (*normalization.ClaimsResult, error)
	Schemas() []normalization.SchemaInfo
}

// NormalizeHandler serves record normalization, claim parsing and the
// schema catalogue.
type NormalizeHandler struct {
	svc         NormalizationService
	logger      logging.Logger
	maxBodySize int64
}

// NewNormalizeHandler creates a handler.  maxBodySize <= 0 selects
// DefaultMaxBodySize.
func NewNormalizeHandler(svc NormalizationService, logger logging.Logger, maxBodySize int64) *NormalizeHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &NormalizeHandler{svc: svc, logger: logger.Named("http.normalize"), maxBodySize: maxBodySize}
}

// ListSchemas handles GET /api/v1/schemas.
func (h *NormalizeHandler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, h.svc.Schemas())
}

// Normalize handles POST /api/v1/normalize and /api/v1/normalize/{schema}.
// A JSON object body yields one Result; an array yields a BatchResponse.
func (h *NormalizeHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.maxBodySize)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	raw, err := normalization.DecodeRecord(body)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	schemaName := chi.URLParam(r, "schema")

	records, isBatch := raw.([]any)
	if !isBatch {
		res, err := h.svc.Normalize(r.Context(), schemaName, raw)
		if err != nil {
			writeAppError(w, r, h.logger, err)
			return
		}
		writeData(w, r, res)
		return
	}

	batch, err := h.svc.NormalizeBatch(r.Context(), schemaName, records)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, toBatchResponse(batch))
}

func toBatchResponse(b *normalization.BatchResult) common.BatchResponse[*schema.Result] {
	resp := common.BatchResponse[*schema.Result]{
		BatchID:        b.BatchID,
		Results:        b.Results,
		TotalProcessed: len(b.Results),
	}
	for _, e := range b.Errors {
		detail := common.ErrorDetail{
			Code:    errors.GetCode(e.Err).String(),
			Message: e.Err.Error(),
		}
		var ae *errors.AppError
		if errors.As(e.Err, &ae) {
			detail.Message, detail.Detail = ae.Message, ae.Detail
		}
		resp.Failed = append(resp.Failed, common.BatchError{Index: e.Index, Error: detail})
	}
	return resp
}

// ParseClaimsRequest is the JSON body of POST /api/v1/claims/parse.
type ParseClaimsRequest struct {
	Text string `json:"text"`
}

// ParseClaims handles POST /api/v1/claims/parse.  The body is either a
// ParseClaimsRequest (application/json) or the claim text itself, plain or
// HTML.
func (h *NormalizeHandler) ParseClaims(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, h.maxBodySize)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	text := string(body)
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		var req ParseClaimsRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeAppError(w, r, h.logger, errors.Wrap(err, errors.CodeDecodeFailed, "invalid request body"))
			return
		}
		text = req.Text
	}

	res, err := h.svc.ParseClaims(r.Context(), text)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeData(w, r, res)
}

//Personal.AI order the ending
