// Package metrics exposes Prometheus counters for playground activity.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProviderRequests counts outbound calls to the identity provider,
	// labeled by operation (exchange, refresh, introspect, revoke, userinfo)
	// and result (ok, error, rejected).
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playground_provider_requests_total",
			Help: "Outbound identity provider requests by operation and result.",
		},
		[]string{"operation", "result"},
	)

	// SessionsStarted counts playground sessions created.
	SessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playground_sessions_started_total",
		Help: "Playground sessions started.",
	})

	// SessionsReset counts explicit session resets.
	SessionsReset = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playground_sessions_reset_total",
		Help: "Playground sessions reset by the user.",
	})

	// TokenRefreshes counts successful refresh grants.
	TokenRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playground_token_refreshes_total",
		Help: "Successful refresh token grants.",
	})

	// StaleResponsesDropped counts provider responses discarded because the
	// session changed underneath them, usually after a reset.
	StaleResponsesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "playground_stale_responses_dropped_total",
		Help: "Provider responses dropped because the session was reset or replaced.",
	})
)

// Register registers all playground collectors with reg. Already-registered
// collectors are tolerated so tests can share the default registry.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		ProviderRequests,
		SessionsStarted,
		SessionsReset,
		TokenRefreshes,
		StaleResponsesDropped,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
