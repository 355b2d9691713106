package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebSocketMetrics holds Prometheus metrics for the broadcast hub.
type WebSocketMetrics struct {
	ActiveChannels    prometheus.Gauge
	ChannelsRejected  prometheus.Counter
	MessagesBroadcast *prometheus.CounterVec
	SendFailures      *prometheus.CounterVec
}

// NewWebSocketMetrics creates and registers hub metrics on the given registry.
func NewWebSocketMetrics(reg prometheus.Registerer) *WebSocketMetrics {
	m := &WebSocketMetrics{
		ActiveChannels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_channels",
			Help:      "Number of registered real-time channels.",
		}),
		ChannelsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "channels_rejected_total",
			Help:      "Total number of channels refused because the hub was full.",
		}),
		MessagesBroadcast: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "messages_broadcast_total",
			Help:      "Total number of broadcast notifications, by event type.",
		}, []string{"type"}),
		SendFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "send_failures_total",
			Help:      "Total number of channels pruned after a failed delivery, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.ActiveChannels, m.ChannelsRejected, m.MessagesBroadcast, m.SendFailures)
	return m
}
