package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of the selection HTTP handler
	SelectionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "selection_latency_seconds",
		Help:    "Latency of the caption selection endpoint",
		Buckets: prometheus.DefBuckets,
	})

	// Total slates served
	SelectionRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "selection_requests_total",
		Help: "Total number of caption selection requests",
	})

	// Under-filled tiers across all selections
	SelectionUnderfills = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "selection_underfilled_tiers_total",
		Help: "Number of tiers that could not meet quota",
	})

	ReservationConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reservation_conflicts_total",
		Help: "Reservation attempts rejected because the caption was already held",
	})

	FeedbackRowsUpdated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feedback_stat_rows_updated_total",
		Help: "Bandit stat rows updated by the feedback loop",
	})

	SweeperDeactivations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweeper_deactivations_total",
		Help: "Reservations deactivated by the sweeper, by reason",
	}, []string{"reason"})

	SaturationQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "saturation_queries_total",
		Help: "Saturation score queries served",
	})
)

func Init() {
	prometheus.MustRegister(
		SelectionLatency,
		SelectionRequests,
		SelectionUnderfills,
		ReservationConflicts,
		FeedbackRowsUpdated,
		SweeperDeactivations,
		SaturationQueries,
	)
}
