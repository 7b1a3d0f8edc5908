package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// Normalization
	RecordsNormalizedTotal CounterVec
	RecordIssuesTotal      CounterVec
	NormalizeDuration      HistogramVec
	BatchSize              HistogramVec
	SchemasRegistered      GaugeVec

	// Claims
	ClaimsParsedTotal CounterVec
	ClaimsPerDocument HistogramVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Stream worker
	StreamMessagesTotal   CounterVec
	StreamProcessDuration HistogramVec

	ErrorsTotal CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets      = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultNormalizeDurationBuckets = []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1}
	DefaultCountBuckets             = []float64{1, 2, 5, 10, 20, 50, 100, 250, 500, 1000}
)

// Status label values.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	return &AppMetrics{
		RecordsNormalizedTotal: collector.RegisterCounter("records_normalized_total",
			"Total records normalized", "schema", "status"),
		RecordIssuesTotal: collector.RegisterCounter("record_issues_total",
			"Total field-level issues recorded during normalization", "schema", "kind"),
		NormalizeDuration: collector.RegisterHistogram("normalize_duration_seconds",
			"Time to normalize one record", DefaultNormalizeDurationBuckets, "schema"),
		BatchSize: collector.RegisterHistogram("batch_size",
			"Records per normalization batch", DefaultCountBuckets, "schema"),
		SchemasRegistered: collector.RegisterGauge("schemas_registered",
			"Number of schemas in the sealed registry"),

		ClaimsParsedTotal: collector.RegisterCounter("claims_parsed_total",
			"Total claim texts parsed", "status"),
		ClaimsPerDocument: collector.RegisterHistogram("claims_per_document",
			"Claims found per parsed text", DefaultCountBuckets),

		HTTPRequestsTotal: collector.RegisterCounter("http_requests_total",
			"Total HTTP requests", "method", "path", "status_code"),
		HTTPRequestDuration: collector.RegisterHistogram("http_request_duration_seconds",
			"HTTP request latency", DefaultHTTPDurationBuckets, "method", "path"),
		HTTPActiveRequests: collector.RegisterGauge("http_active_requests",
			"Number of in-flight HTTP requests"),

		StreamMessagesTotal: collector.RegisterCounter("stream_messages_total",
			"Total stream messages handled", "topic", "status"),
		StreamProcessDuration: collector.RegisterHistogram("stream_process_duration_seconds",
			"Time to handle one stream message", DefaultNormalizeDurationBuckets, "topic"),

		ErrorsTotal: collector.RegisterCounter("errors_total",
			"Total errors by component and code", "component", "code"),
	}
}

// RecordNormalization records the outcome of normalizing one record.  issues
// maps issue kind to count; a record with any issue counts as partial.
func RecordNormalization(metrics *AppMetrics, schema string, duration time.Duration, issues map[string]int, err error) {
	if metrics == nil {
		return
	}
	status := StatusOK
	switch {
	case err != nil:
		status = StatusFailed
	case len(issues) > 0:
		status = StatusPartial
	}
	metrics.RecordsNormalizedTotal.WithLabelValues(schema, status).Inc()
	metrics.NormalizeDuration.WithLabelValues(schema).Observe(duration.Seconds())
	for kind, n := range issues {
		metrics.RecordIssuesTotal.WithLabelValues(schema, kind).Add(float64(n))
	}
}

// RecordBatch records the size of a normalization batch.
func RecordBatch(metrics *AppMetrics, schema string, size int) {
	if metrics == nil {
		return
	}
	metrics.BatchSize.WithLabelValues(schema).Observe(float64(size))
}

// RecordClaimsParse records a claim parse with its claim count and number of
// diagnostics.
func RecordClaimsParse(metrics *AppMetrics, claims, diagnostics int, err error) {
	if metrics == nil {
		return
	}
	status := StatusOK
	switch {
	case err != nil:
		status = StatusFailed
	case diagnostics > 0:
		status = StatusPartial
	}
	metrics.ClaimsParsedTotal.WithLabelValues(status).Inc()
	if err == nil {
		metrics.ClaimsPerDocument.WithLabelValues().Observe(float64(claims))
	}
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordStreamMessage records one consumed stream message.
func RecordStreamMessage(metrics *AppMetrics, topic, status string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.StreamMessagesTotal.WithLabelValues(topic, status).Inc()
	metrics.StreamProcessDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// RecordError increments the error counter.
func RecordError(metrics *AppMetrics, component, code string) {
	if metrics == nil {
		return
	}
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
