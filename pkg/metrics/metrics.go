package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petpal"

// Metrics is safe to use through a nil pointer; every recorder is a no-op then.
type Metrics struct {
	reg *prometheus.Registry

	messagesCreated      *prometheus.CounterVec
	conversationsCreated prometheus.Counter
	activeSessions       prometheus.Gauge
	roomJoins            prometheus.Counter
	droppedFrames        prometheus.Counter
	socketErrors         *prometheus.CounterVec
	eventPublishFailures prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		messagesCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "messages_created_total",
			Help: "Messages persisted, by transport.",
		}, []string{"transport"}),
		conversationsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "conversations_created_total",
			Help: "Conversations created by find-or-create.",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "ws_sessions_active",
			Help: "Authenticated socket sessions currently connected.",
		}),
		roomJoins: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ws_room_joins_total",
			Help: "Successful join_room events.",
		}),
		droppedFrames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ws_frames_dropped_total",
			Help: "Outbound frames dropped because a session queue was full.",
		}),
		socketErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "ws_errors_total",
			Help: "Scoped error frames sent to clients, by event.",
		}, []string{"event"}),
		eventPublishFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "event_publish_failures_total",
			Help: "Domain events that could not be published.",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) MessageCreated(transport string) {
	if m != nil {
		m.messagesCreated.WithLabelValues(transport).Inc()
	}
}

func (m *Metrics) ConversationCreated() {
	if m != nil {
		m.conversationsCreated.Inc()
	}
}

func (m *Metrics) SessionOpened() {
	if m != nil {
		m.activeSessions.Inc()
	}
}

func (m *Metrics) SessionClosed() {
	if m != nil {
		m.activeSessions.Dec()
	}
}

func (m *Metrics) RoomJoined() {
	if m != nil {
		m.roomJoins.Inc()
	}
}

func (m *Metrics) FrameDropped() {
	if m != nil {
		m.droppedFrames.Inc()
	}
}

func (m *Metrics) SocketError(event string) {
	if m != nil {
		m.socketErrors.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) EventPublishFailed() {
	if m != nil {
		m.eventPublishFailures.Inc()
	}
}
