package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// evaluationsTotal counts group membership evaluations by outcome.
	evaluationsTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "user_groups_evaluations_total",
			Help: "Number of group membership evaluations, differentiated by outcome.",
		},
		[]string{"outcome"},
	)

	// membershipsWritten counts membership rows written by the reconciler.
	membershipsWritten = promauto.NewCounter( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "user_groups_memberships_written_total",
			Help: "Number of membership records written by roster reconciliation.",
		},
	)
)
