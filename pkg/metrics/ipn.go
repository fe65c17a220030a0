package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	IPNNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mpgw",
			Subsystem: "ipn",
			Name:      "notifications_total",
			Help:      "IPN deliveries by final outcome",
		},
		[]string{"outcome"},
	)

	IPNReconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mpgw",
			Subsystem: "ipn",
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent reconciling a single payment notification",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(IPNNotificationsTotal, IPNReconcileDuration)
}
