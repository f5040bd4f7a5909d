package tasks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// eventsObserved counts incoming domain events by analysis outcome.
	eventsObserved = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "user_groups_events_observed_total",
			Help: "Number of domain events observed, differentiated by impact analysis outcome.",
		},
		[]string{"outcome"},
	)

	// groupsReevaluated counts groups re-evaluated due to events.
	groupsReevaluated = promauto.NewCounter( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "user_groups_event_reevaluations_total",
			Help: "Number of group re-evaluations triggered by domain events.",
		},
	)
)
