package bandit

import "promoPilot/domain"

// Candidates at or below this penalty are dropped, not just demoted.
const hardExclusionPenalty = -1.0

// Segments whose caption tier preference earns the multiplier boost.
var segmentTierBoosts = map[string]string{
	"price-insensitive": domain.TierPremium,
	"bargain-hunter":    domain.TierBudget,
	"impulse-buyer":     domain.TierBump,
}

// scoreCandidate combines the Thompson draw with diversity, historical value
// and the usage budget penalty. The second return is false when the candidate
// is hard-excluded by its budget.
func (s *SelectionService) scoreCandidate(
	cand domain.CaptionCandidate,
	profile RecencyProfile,
	weekly map[budgetKey]int,
	segment string,
	cfg Config,
) (float64, domain.ScoreBreakdown, bool) {

	penalty := usageBudgetPenalty(weekly, cand.Caption.ContentCategory, cand.Caption.HasUrgency, cfg)
	if penalty <= hardExclusionPenalty {
		banditHardExclusionsTotal.WithLabelValues(cand.Caption.ContentCategory).Inc()
		return 0, domain.ScoreBreakdown{}, false
	}

	draw := s.sampler.Draw(cand.Stat.ConfidenceLower, cand.Stat.ConfidenceUpper)
	diversity := diversityBonus(cand.Caption, profile, cfg)

	historical := cand.Stat.AvgExpectedValue / 100.0
	if historical > 1 {
		historical = 1
	}
	if historical < 0 {
		historical = 0
	}

	multiplier := 1.0
	if boostTier, ok := segmentTierBoosts[segment]; ok && boostTier == cand.Caption.PriceTier {
		multiplier = cfg.SegmentMultiplier
	}

	score := cfg.WThompson*draw +
		cfg.WDiversity*diversity +
		cfg.WHistorical*historical +
		cfg.WBudget*penalty
	score *= multiplier

	breakdown := domain.ScoreBreakdown{
		ThompsonSample:     draw,
		DiversityBonus:     diversity,
		HistoricalValue:    cand.Stat.AvgExpectedValue,
		UsageBudgetPenalty: penalty,
		SegmentMultiplier:  multiplier,
		ConfidenceLower:    cand.Stat.ConfidenceLower,
		ConfidenceUpper:    cand.Stat.ConfidenceUpper,
	}

	return score, breakdown, true
}
