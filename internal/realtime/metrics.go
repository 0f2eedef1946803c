package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "learnhub_realtime_connections",
		Help: "Number of currently open websocket connections.",
	})

	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learnhub_realtime_messages_total",
		Help: "Total number of realtime messages pushed to clients.",
	}, []string{"event"})
)
