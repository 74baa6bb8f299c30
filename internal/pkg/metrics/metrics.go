package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine transition counters, labeled by session kind (credit|subscription).
var (
	SessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_sessions_started_total",
		Help: "Sessions successfully started.",
	}, []string{"kind"})

	SessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_sessions_closed_total",
		Help: "Sessions successfully closed.",
	}, []string{"kind"})

	SessionsForceClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyhub_sessions_force_closed_total",
		Help: "Sessions closed by the reconciliation sweep.",
	})

	CreditsCharged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyhub_credits_charged_total",
		Help: "Total credits charged across credit sessions (uncapped).",
	})

	SubscriptionHoursConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studyhub_subscription_hours_consumed_total",
		Help: "Total pre-paid hours consumed across subscription sessions.",
	})

	StartRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_session_start_rejections_total",
		Help: "Start transitions rejected by a precondition.",
	}, []string{"reason"})
)
