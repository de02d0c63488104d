package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestLogDecoded(t *testing.T) {
	m := New()
	m.LogDecoded("A", "stream", 10, 2, true, nil, time.Millisecond)
	m.LogDecoded("A", "stream", 5, 0, false, errors.New("boom"), time.Millisecond)
	m.SourceLoaded(true)
	m.Stored("points", 15)

	body := scrape(t, m)
	assert.Contains(t, body, `taskdata_records_decoded_total{source="A"} 15`)
	assert.Contains(t, body, `taskdata_corrupt_fields_total{source="A"} 2`)
	assert.Contains(t, body, `taskdata_truncated_logs_total{source="A"} 1`)
	assert.Contains(t, body, `taskdata_log_failures_total{source="A"} 1`)
	assert.Contains(t, body, `taskdata_sources_loaded_total{outcome="ok"} 1`)
	assert.Contains(t, body, `taskdata_rows_stored_total{table="points"} 15`)
	assert.Contains(t, body, `taskdata_decode_duration_seconds_count{backend="stream"} 2`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SourceLoaded(false)
		m.LogDecoded("A", "mmap", 1, 1, true, nil, 0)
		m.Stored("fields", 1)
	})
	assert.Nil(t, m.Registry())
}
