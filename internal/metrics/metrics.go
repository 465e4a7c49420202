package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "minimc"

// Metrics holds the server's collectors on a private registry. It
// implements the observer interfaces of the inventory, session, ws and
// events packages.
type Metrics struct {
	registry *prometheus.Registry

	// Container fan-out
	Notifications    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec

	// Sessions and transport
	SessionsActive prometheus.Gauge
	FramesQueued   *prometheus.CounterVec
	ClientsDropped prometheus.Counter

	// Audit
	AuditEvents *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "container_notifications_total",
			Help:      "Listener notifications delivered by containers",
		},
		[]string{"kind"},
	)

	m.DispatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "container_dispatch_duration_seconds",
			Help:      "Time to fan one notification out to every listener",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"kind"},
	)

	m.SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Open player sessions",
		},
	)

	m.FramesQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_frames_queued_total",
			Help:      "Websocket frames queued for clients",
		},
		[]string{"type"},
	)

	m.ClientsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_clients_dropped_total",
			Help:      "Websocket clients disconnected for falling behind",
		},
	)

	m.AuditEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_total",
			Help:      "Audit events by outcome",
		},
		[]string{"status"},
	)

	registry.MustRegister(
		m.Notifications,
		m.DispatchDuration,
		m.SessionsActive,
		m.FramesQueued,
		m.ClientsDropped,
		m.AuditEvents,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveDispatch records one container fan-out.
func (m *Metrics) ObserveDispatch(kind string, listeners int, elapsed time.Duration) {
	m.Notifications.WithLabelValues(kind).Add(float64(listeners))
	m.DispatchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) SessionOpened() { m.SessionsActive.Inc() }
func (m *Metrics) SessionClosed() { m.SessionsActive.Dec() }

func (m *Metrics) FrameQueued(kind string) { m.FramesQueued.WithLabelValues(kind).Inc() }
func (m *Metrics) ClientDropped()          { m.ClientsDropped.Inc() }

func (m *Metrics) AuditPublished(n int) { m.AuditEvents.WithLabelValues("published").Add(float64(n)) }
func (m *Metrics) AuditDropped()        { m.AuditEvents.WithLabelValues("dropped").Inc() }
func (m *Metrics) AuditFailed(n int)    { m.AuditEvents.WithLabelValues("failed").Add(float64(n)) }
