package service

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serviceMetrics holds the domain counters. Registration happens once on
// first use so tests constructing services repeatedly do not re-register
// collectors.
type serviceMetrics struct {
	pomodorosCompleted prometheus.Counter
	reflowTotal        *prometheus.CounterVec
	notificationsSent  *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *serviceMetrics
)

func getMetrics() *serviceMetrics {
	metricsOnce.Do(func() {
		metrics = &serviceMetrics{
			pomodorosCompleted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "dayplan_pomodoros_completed_total",
				Help: "Work sessions completed across all users.",
			}),
			reflowTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dayplan_reflow_total",
				Help: "Time-window reflow operations by policy and outcome.",
			}, []string{"policy", "outcome"}),
			notificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "dayplan_notifications_sent_total",
				Help: "Outbound notifications by channel and status.",
			}, []string{"channel", "status"}),
		}
	})
	return metrics
}
