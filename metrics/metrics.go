package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "geo_logger"

// Результаты вставки (метка result).
const (
	InsertOK        = "ok"
	InsertDuplicate = "duplicate"
	InsertFailed    = "error"
)

// Metrics — счётчики пайплайна. Нулевой *Metrics допустим: все методы становятся no-op.
type Metrics struct {
	registry *prometheus.Registry

	frames         prometheus.Counter
	controls       *prometheus.CounterVec
	missed         prometheus.Counter
	dropped        *prometheus.CounterVec
	inserts        *prometheus.CounterVec
	insertDuration prometheus.Histogram
	reconnects     prometheus.Counter
}

// New создаёт набор метрик в собственном реестре.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Decoded stream frames, control and data",
		}),
		controls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "control_signals_total",
			Help:      "Control messages received from the stream by kind",
		}, []string{"kind"}),
		missed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_statuses_total",
			Help:      "Statuses the provider reported as undelivered due to rate limiting",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_total",
			Help:      "Frames dropped before persistence by reason",
		}, []string{"reason"}),
		inserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inserts_total",
			Help:      "Insert attempts by result",
		}, []string{"result"}),
		insertDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "insert_duration_seconds",
			Help:      "Duration of a single transactional insert",
			Buckets:   prometheus.DefBuckets,
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Stream reconnect attempts",
		}),
	}
	reg.MustRegister(m.frames, m.controls, m.missed, m.dropped, m.inserts, m.insertDuration, m.reconnects)
	return m
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry возвращает реестр, в котором зарегистрированы метрики.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Frame() {
	if m == nil {
		return
	}
	m.frames.Inc()
}

func (m *Metrics) Control(kind string) {
	if m == nil {
		return
	}
	m.controls.WithLabelValues(kind).Inc()
}

func (m *Metrics) Missed(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.missed.Add(float64(n))
}

func (m *Metrics) Dropped(reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) Insert(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.inserts.WithLabelValues(result).Inc()
	m.insertDuration.Observe(d.Seconds())
}

func (m *Metrics) Reconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}
