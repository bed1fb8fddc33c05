package facade

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	transactionsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of transactions accepted by the node",
			Name:      "transactions_sent_total",
			Namespace: "neotx",
		},
	)
	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of fields still invalid after validation",
			Name:      "validation_failures_total",
			Namespace: "neotx",
		},
		[]string{"field"},
	)
)

func init() {
	prometheus.MustRegister(
		transactionsSent,
		validationFailures,
	)
}
