package bandit

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	banditSlatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_slates_total",
			Help: "Count of caption slates built, by behavioral segment.",
		},
		[]string{"segment"},
	)

	banditHardExclusionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bandit_hard_exclusions_total",
			Help: "Candidates dropped by the weekly usage budget, by category.",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(banditSlatesTotal, banditHardExclusionsTotal)
}
