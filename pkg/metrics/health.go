package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DependencyUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "mpgw",
			Subsystem: "dependency",
			Name:      "up",
			Help:      "1 when the last readiness check of the dependency passed",
		},
		[]string{"dependency"},
	)

	DependencyCheckDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mpgw",
			Subsystem: "dependency",
			Name:      "check_duration_seconds",
			Help:      "Readiness check latency per dependency",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"dependency"},
	)
)

func init() {
	Registry.MustRegister(DependencyUp, DependencyCheckDuration)
}
