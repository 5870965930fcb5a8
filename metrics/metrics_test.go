package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAccumulate(t *testing.T) {
	m := New()

	m.Frame()
	m.Frame()
	m.Control("limit")
	m.Missed(5)
	m.Missed(-1)
	m.Dropped("out_of_box")
	m.Insert(InsertOK, 10*time.Millisecond)
	m.Insert(InsertDuplicate, time.Millisecond)
	m.Reconnect()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.controls.WithLabelValues("limit")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.missed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues("out_of_box")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inserts.WithLabelValues(InsertOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inserts.WithLabelValues(InsertDuplicate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconnects))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Frame()
		m.Control("warning")
		m.Missed(3)
		m.Dropped("parse_error")
		m.Insert(InsertFailed, time.Second)
		m.Reconnect()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Insert(InsertOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `geo_logger_inserts_total{result="ok"} 1`))
}
