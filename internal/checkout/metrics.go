package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeGranted  = "granted"
	outcomeReplayed = "replayed"
	outcomeConflict = "conflict"
	outcomeNotPaid  = "not_paid"
	outcomeError    = "error"
)

var (
	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_created_total",
		Help: "Checkout sessions created at the payment gateway.",
	})

	confirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_confirmations_total",
			Help: "Checkout confirmations by outcome.",
		},
		[]string{"outcome"},
	)
)
