// Package handlers implements the HTTP endpoints of the normalization API.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-normalizer/pkg/errors"
	"github.com/turtacn/patent-normalizer/pkg/types/common"
)

// DefaultMaxBodySize caps request bodies when no limit is configured.
const DefaultMaxBodySize int64 = 10 << 20

// requestID returns the id chi's RequestID middleware put on the request.
func requestID(r *http.Request) string {
	return chimw.GetReqID(r.Context())
}

// readBody reads at most limit bytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New(errors.CodeInvalidParam, "request body too large").
				WithDetail("limit=" + strconv.FormatInt(tooLarge.Limit, 10))
		}
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to read request body")
	}
	return data, nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeData wraps data in the success envelope.
func writeData[T any](w http.ResponseWriter, r *http.Request, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = requestID(r)
	writeJSON(w, http.StatusOK, resp)
}

// writeAppError maps err's code to a status and writes the error envelope.
// Server-side failures are logged and masked.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	message, detail := errors.DefaultMessageForCode(code), ""
	var ae *errors.AppError
	if errors.As(err, &ae) {
		message, detail = ae.Message, ae.Detail
	}
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).Error("request failed",
			logging.String(logging.FieldErrorCode, code.String()),
			logging.Err(err))
		message, detail = errors.DefaultMessageForCode(code), ""
	}

	resp := common.NewErrorResponse(code.String(), message, detail)
	resp.RequestID = requestID(r)
	writeJSON(w, status, resp)
}

// RouteNotFound answers unmatched paths with the error envelope instead of
// chi's plain-text 404.
func RouteNotFound(logger logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeAppError(w, r, logger, errors.NotFound("route not found").WithDetail(r.Method+" "+r.URL.Path))
	}
}

//Personal.AI order the ending
