package metrics

import "github.com/prometheus/client_golang/prometheus"

var ProcessorRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "mpgw",
		Subsystem: "processor",
		Name:      "request_duration_seconds",
		Help:      "Mercado Pago API latency in seconds",
		Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	},
	[]string{"operation", "status"},
)

func init() {
	Registry.MustRegister(ProcessorRequestDuration)
}
