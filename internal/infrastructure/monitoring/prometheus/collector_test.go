package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/patent-normalizer/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test", Subsystem: "unit"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	t.Parallel()
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_RuntimeCollectors(t *testing.T) {
	t.Parallel()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "rt", EnableGoMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "go_goroutines")
}

func TestRegisterCounter(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	vec := c.RegisterCounter("events_total", "events", "kind")
	vec.WithLabelValues("a").Inc()
	vec.WithLabelValues("a").Add(2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_events_total{kind="a"} 3`)
}

func TestRegisterCounter_SameNameReturnsSameSeries(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	c.RegisterCounter("dup_total", "dup", "k").WithLabelValues("x").Inc()
	c.RegisterCounter("dup_total", "dup", "k").WithLabelValues("x").Inc()

	assert.Contains(t, scrapeMetrics(t, c), `test_unit_dup_total{k="x"} 2`)
}

func TestRegister_TypeMismatchIsNoop(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	c.RegisterCounter("mixed", "mixed")
	g := c.RegisterGauge("mixed", "mixed")
	assert.IsType(t, noopGaugeVec{}, g)
	assert.NotPanics(t, func() { g.WithLabelValues().Set(4) })
}

func TestRegisterGauge(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	g := c.RegisterGauge("inflight", "in flight")
	g.WithLabelValues().Set(5)
	g.WithLabelValues().Dec()

	assert.Contains(t, scrapeMetrics(t, c), "test_unit_inflight 4")
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	h := c.RegisterHistogram("latency_seconds", "latency", nil, "op")
	h.WithLabelValues("parse").Observe(0.2)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_latency_seconds_count{op="parse"} 1`)
	assert.Contains(t, out, `le="0.25"`)
}

func TestMustRegisterAndUnregister(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "external_gauge", Help: "x"})
	c.MustRegister(g)
	g.Set(1)
	assert.Contains(t, scrapeMetrics(t, c), "external_gauge 1")
	assert.True(t, c.Unregister(g))
	assert.NotContains(t, scrapeMetrics(t, c), "external_gauge")
}

func TestConcurrentRegistration(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("race_total", "race").WithLabelValues().Inc()
		}()
	}
	wg.Wait()
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_race_total 16")
}

func TestNoopCollector(t *testing.T) {
	t.Parallel()
	c := NewNoopCollector()
	assert.NotPanics(t, func() {
		c.RegisterCounter("a", "a").WithLabelValues("x").Inc()
		c.RegisterGauge("b", "b").WithLabelValues().Set(1)
		c.RegisterHistogram("c", "c", nil).WithLabelValues().Observe(1)
	})
	assert.False(t, c.Unregister(nil))
}

func TestTimer(t *testing.T) {
	t.Parallel()
	c := newTestCollector(t)
	h := c.RegisterHistogram("timer_seconds", "timer", nil)
	timer := NewTimer(h.WithLabelValues())
	time.Sleep(time.Millisecond)
	d := timer.ObserveDuration()
	assert.GreaterOrEqual(t, d, time.Millisecond)
	assert.Contains(t, scrapeMetrics(t, c), "test_unit_timer_seconds_count 1")

	assert.NotPanics(t, func() { NewTimer(nil).ObserveDuration() })
}
