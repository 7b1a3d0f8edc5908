package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	t.Parallel()
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)
	assert.NotNil(t, m.RecordsNormalizedTotal)
	assert.NotNil(t, m.RecordIssuesTotal)
	assert.NotNil(t, m.NormalizeDuration)
	assert.NotNil(t, m.ClaimsParsedTotal)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.StreamMessagesTotal)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestRecordNormalization(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		issues  map[string]int
		err     error
		wantOut []string
	}{
		{
			name:    "clean",
			wantOut: []string{`test_unit_records_normalized_total{schema="doc",status="ok"} 1`},
		},
		{
			name:   "partial",
			issues: map[string]int{"conversion": 2, "no_match": 1},
			wantOut: []string{
				`test_unit_records_normalized_total{schema="doc",status="partial"} 1`,
				`test_unit_record_issues_total{kind="conversion",schema="doc"} 2`,
				`test_unit_record_issues_total{kind="no_match",schema="doc"} 1`,
			},
		},
		{
			name:    "failed",
			err:     errors.New("boom"),
			wantOut: []string{`test_unit_records_normalized_total{schema="doc",status="failed"} 1`},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, c := newTestAppMetrics(t)
			RecordNormalization(m, "doc", 3*time.Millisecond, tt.issues, tt.err)
			out := scrapeMetrics(t, c)
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			assert.Contains(t, out, `test_unit_normalize_duration_seconds_count{schema="doc"} 1`)
		})
	}
}

func TestRecordClaimsParse(t *testing.T) {
	t.Parallel()
	m, c := newTestAppMetrics(t)
	RecordClaimsParse(m, 3, 0, nil)
	RecordClaimsParse(m, 2, 1, nil)
	RecordClaimsParse(m, 0, 0, errors.New("empty"))

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_claims_parsed_total{status="ok"} 1`)
	assert.Contains(t, out, `test_unit_claims_parsed_total{status="partial"} 1`)
	assert.Contains(t, out, `test_unit_claims_parsed_total{status="failed"} 1`)
	assert.Contains(t, out, "test_unit_claims_per_document_count 2")
}

func TestRecordHTTPRequest(t *testing.T) {
	t.Parallel()
	m, c := newTestAppMetrics(t)
	RecordHTTPRequest(m, "POST", "/api/v1/normalize/{schema}", 200, 10*time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/api/v1/normalize/{schema}",status_code="200"} 1`)
}

func TestRecordStreamMessageAndError(t *testing.T) {
	t.Parallel()
	m, c := newTestAppMetrics(t)
	RecordStreamMessage(m, "raw", StatusFailed, time.Millisecond)
	RecordError(m, "stream", "NRM_002")
	RecordBatch(m, "doc", 4)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_stream_messages_total{status="failed",topic="raw"} 1`)
	assert.Contains(t, out, `test_unit_errors_total{code="NRM_002",component="stream"} 1`)
	assert.Contains(t, out, `test_unit_batch_size_count{schema="doc"} 1`)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		RecordNormalization(nil, "x", 0, nil, nil)
		RecordClaimsParse(nil, 0, 0, nil)
		RecordHTTPRequest(nil, "GET", "/", 200, 0)
		RecordStreamMessage(nil, "t", StatusOK, 0)
		RecordError(nil, "c", "x")
		RecordBatch(nil, "x", 1)
	})
}
