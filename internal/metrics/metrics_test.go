package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ybakhan/flakyping/internal/ping"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, label string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, vec.WithLabelValues(label).Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestCollectorOutcomes(t *testing.T) {
	c := New()

	c.RecordOutcome(ping.Accept)
	c.RecordOutcome(ping.Accept)
	c.RecordOutcome(ping.Reject)
	c.RecordOutcome(ping.Hang)

	assert.Equal(t, 2.0, counterValue(t, c.replies, "accept"))
	assert.Equal(t, 1.0, counterValue(t, c.replies, "reject"))
	assert.Equal(t, 1.0, counterValue(t, c.replies, "hang"))
}

func TestCollectorGauges(t *testing.T) {
	c := New()

	c.SetCacheLength(42)
	c.ConnectionHung()
	c.ConnectionHung()
	c.HungConnectionReleased()
	c.RecordInvalid()

	assert.Equal(t, 42.0, gaugeValue(t, c.cacheLength))
	assert.Equal(t, 1.0, gaugeValue(t, c.held))

	var m dto.Metric
	require.NoError(t, c.invalid.Write(&m))
	assert.Equal(t, 1.0, m.GetCounter().GetValue())
}

func TestCollectorWithClassifier(t *testing.T) {
	c := New()
	classifier := ping.NewClassifier(ping.NewCache(10), ping.FixedSource(1), ping.WithRecorder(c))

	_, err := classifier.Classify(map[string]any{
		"pingId": 1.0, "deliveryAttempt": 1.0, "date": 1589877226614.0, "responseTime": 247.0,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, counterValue(t, c.replies, "accept"))
	assert.Equal(t, 1.0, gaugeValue(t, c.cacheLength))
}

func TestCollectorHandler(t *testing.T) {
	c := New()
	c.RecordOutcome(ping.Reject)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `flaky_ping_outcomes_total{outcome="reject"} 1`)
}
