// Package client is a Go SDK for the patent-normalizer HTTP API.
//
//	c, err := client.NewClient("http://localhost:8080")
//	res, err := c.Normalize(ctx, "document", record)
//	batch, err := c.NormalizeBatch(ctx, "", records)
//	parsed, err := c.ParseClaims(ctx, "1. A device ...")
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/patent-normalizer/pkg/errors"
	"github.com/turtacn/patent-normalizer/pkg/types/common"
)

const (
	// Version is the SDK version reported in the User-Agent header.
	Version = "0.1.0"

	defaultTimeout      = 30 * time.Second
	defaultRetryMax     = 3
	defaultRetryWaitMin = 500 * time.Millisecond
	defaultRetryWaitMax = 5 * time.Second
	apiPrefix           = "/api/v1"
	requestIDHeader     = "X-Request-Id"
)

// Logger is the minimal logging surface the client writes to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// Client talks to one normalizer deployment.  It is safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Detail     string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("normalizer api error %d", e.StatusCode)
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.RequestID != "" {
		msg += " (request_id=" + e.RequestID + ")"
	}
	return msg
}

// IsNotFound reports a 404, e.g. an unknown schema name.
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsClientError reports a 4xx response.
func (e *APIError) IsClientError() bool { return e.StatusCode >= 400 && e.StatusCode < 500 }

// IsServerError reports a 5xx response.
func (e *APIError) IsServerError() bool { return e.StatusCode >= 500 }

// NewClient validates baseURL and applies opts.  The API key is optional;
// WithAPIKey sets it.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, errors.InvalidParam("invalid base URL").WithDetail(baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: defaultTimeout},
		userAgent:    "patent-normalizer-go-sdk/" + Version,
		logger:       noopLogger{},
		retryMax:     defaultRetryMax,
		retryWaitMin: defaultRetryWaitMin,
		retryWaitMax: defaultRetryWaitMax,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Schemas lists the schemas the server has registered.
func (c *Client) Schemas(ctx context.Context) ([]SchemaInfo, error) {
	var resp common.APIResponse[[]SchemaInfo]
	if err := c.get(ctx, apiPrefix+"/schemas", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Normalize parses one raw record with the named schema.  An empty name
// selects the server's default schema.
func (c *Client) Normalize(ctx context.Context, schemaName string, record map[string]any) (*Result, error) {
	if record == nil {
		return nil, errors.InvalidParam("record is required")
	}
	var resp common.APIResponse[*Result]
	if err := c.post(ctx, normalizePath(schemaName), record, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// NormalizeBatch sends records as one array body.  Per-record failures are
// reported in BatchResponse.Failed, not as an error.
func (c *Client) NormalizeBatch(ctx context.Context, schemaName string, records []map[string]any) (*common.BatchResponse[*Result], error) {
	if len(records) == 0 {
		return nil, errors.InvalidParam("at least one record is required")
	}
	var resp common.APIResponse[*common.BatchResponse[*Result]]
	if err := c.post(ctx, normalizePath(schemaName), records, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ParseClaims splits claim text into numbered claims.
func (c *Client) ParseClaims(ctx context.Context, text string) (*ClaimsResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New(errors.CodeClaimTextEmpty, "claim text is empty")
	}
	var resp common.APIResponse[*ClaimsResult]
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	if err := c.post(ctx, apiPrefix+"/claims/parse", body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func normalizePath(schemaName string) string {
	if schemaName == "" {
		return apiPrefix + "/normalize"
	}
	return apiPrefix + "/normalize/" + url.PathEscape(schemaName)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	requestID := uuid.New().String()
	var lastErr error

	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			wait := c.calculateBackoff(attempt)
			c.logger.Debugf("retrying %s %s in %v (attempt %d)", method, path, wait, attempt)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set(requestIDHeader, requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Errorf("request failed: %v", err)
			lastErr = err
			continue
		}

		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, duration)

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.retryMax {
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
				c.logger.Infof("rate limited, retrying after %d seconds", seconds)
				select {
				case <-time.After(time.Duration(seconds) * time.Second):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}

		if resp.StatusCode >= 400 {
			apiErr := decodeAPIError(resp.StatusCode, respBody)
			if apiErr.RequestID == "" {
				apiErr.RequestID = requestID
			}
			lastErr = apiErr
			if shouldRetry(resp.StatusCode) {
				continue
			}
			return apiErr
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}
		return nil
	}

	return lastErr
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if len(body) == 0 {
		return apiErr
	}
	var env common.APIResponse[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Detail = env.Error.Detail
		apiErr.RequestID = env.RequestID
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// shouldRetry retries 5xx and 429; other 4xx responses are final.
func shouldRetry(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax || backoff <= 0 {
		backoff = c.retryWaitMax
	}
	if quarter := int64(backoff / 4); quarter > 0 {
		backoff += time.Duration(rand.Int63n(quarter))
	}
	return backoff
}

//Personal.AI order the ending
