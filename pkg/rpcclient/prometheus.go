package rpcclient

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var rpcTimes = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Help:      "RPC request duration including network round trip",
		Name:      "rpc_request_duration_seconds",
		Namespace: "neotx",
	},
	[]string{"method"},
)

func addReqTimeMetric(name string, t time.Duration) {
	rpcTimes.WithLabelValues(name).Observe(t.Seconds())
}

func init() {
	prometheus.MustRegister(rpcTimes)
}
