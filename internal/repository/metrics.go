package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var notificationsPersisted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "learnhub_notifications_persisted_total",
	Help: "Total number of notification rows written to storage.",
})
