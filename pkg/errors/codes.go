package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeRateLimited        ErrorCode = "COMMON_012"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Aliases used at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeValidation   = ErrCodeValidation
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Schema construction error codes.  These are configuration-time failures:
// a schema that produces one of them is never used to parse a record.
const (
	CodeSchemaInvalidPath      ErrorCode = "SCH_001"
	CodeSchemaInvalidPattern   ErrorCode = "SCH_002"
	CodeSchemaInvalidDelimiter ErrorCode = "SCH_003"
	CodeSchemaInvalidField     ErrorCode = "SCH_004"
	CodeSchemaDuplicate        ErrorCode = "SCH_005"
	CodeSchemaUnresolvedRef    ErrorCode = "SCH_006"
	CodeSchemaCycle            ErrorCode = "SCH_007"
	CodeSchemaNotFound         ErrorCode = "SCH_008"
	CodeSchemaSealed           ErrorCode = "SCH_009"
)

// Record normalization error codes.
const (
	CodeInputNotMapping ErrorCode = "NRM_001"
	CodeDecodeFailed    ErrorCode = "NRM_002"
	CodeBatchFailed     ErrorCode = "NRM_003"
)

// Claim parsing error codes.
const (
	CodeClaimTextEmpty    ErrorCode = "CLM_001"
	CodeClaimNoneFound    ErrorCode = "CLM_002"
	CodeClaimMatchTimeout ErrorCode = "CLM_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeExternalService:    http.StatusBadGateway,

	CodeSchemaInvalidPath:      http.StatusInternalServerError,
	CodeSchemaInvalidPattern:   http.StatusInternalServerError,
	CodeSchemaInvalidDelimiter: http.StatusInternalServerError,
	CodeSchemaInvalidField:     http.StatusInternalServerError,
	CodeSchemaDuplicate:        http.StatusInternalServerError,
	CodeSchemaUnresolvedRef:    http.StatusInternalServerError,
	CodeSchemaCycle:            http.StatusInternalServerError,
	CodeSchemaNotFound:         http.StatusNotFound,
	CodeSchemaSealed:           http.StatusConflict,

	CodeInputNotMapping: http.StatusUnprocessableEntity,
	CodeDecodeFailed:    http.StatusBadRequest,
	CodeBatchFailed:     http.StatusInternalServerError,

	CodeClaimTextEmpty:    http.StatusBadRequest,
	CodeClaimNoneFound:    http.StatusUnprocessableEntity,
	CodeClaimMatchTimeout: http.StatusUnprocessableEntity,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeRateLimited:        "rate limit exceeded",
	ErrCodeExternalService:    "external service error",

	CodeSchemaInvalidPath:      "invalid path expression",
	CodeSchemaInvalidPattern:   "invalid capture pattern",
	CodeSchemaInvalidDelimiter: "invalid delimiter",
	CodeSchemaInvalidField:     "invalid field declaration",
	CodeSchemaDuplicate:        "duplicate declaration",
	CodeSchemaUnresolvedRef:    "unresolved schema reference",
	CodeSchemaCycle:            "cyclic schema reference",
	CodeSchemaNotFound:         "schema not found",
	CodeSchemaSealed:           "schema registry is sealed",

	CodeInputNotMapping: "input record is not a mapping",
	CodeDecodeFailed:    "failed to decode input record",
	CodeBatchFailed:     "batch normalization failed",

	CodeClaimTextEmpty:    "claim text is empty",
	CodeClaimNoneFound:    "no numbered claims found",
	CodeClaimMatchTimeout: "claim matching exceeded its time budget",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
