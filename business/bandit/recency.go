package bandit

import (
	"time"

	"promoPilot/domain"
)

// The usage-budget caps are per calendar week, independent of the
// configurable cooldown the recency profile is built over.
const budgetWindow = 7 * 24 * time.Hour

// RecencyProfile is what the creator's audience has seen lately. A creator
// with no history gets empty sets, which means no diversity penalties, not an
// excluded candidate pool.
type RecencyProfile struct {
	Categories map[string]struct{}
	Tiers      map[string]struct{}
	Urgency    map[bool]struct{}
}

// buildRecencyProfile takes the last N distinct categories/tiers/urgency
// flags from usage ordered newest first.
func buildRecencyProfile(usage []domain.CaptionUsage, cfg Config) RecencyProfile {
	p := RecencyProfile{
		Categories: make(map[string]struct{}),
		Tiers:      make(map[string]struct{}),
		Urgency:    make(map[bool]struct{}),
	}

	for _, u := range usage {
		if len(p.Categories) < cfg.RecencyCategories {
			p.Categories[u.Category] = struct{}{}
		}
		if len(p.Tiers) < cfg.RecencyTiers {
			p.Tiers[u.PriceTier] = struct{}{}
		}
		if len(p.Urgency) < cfg.RecencyUrgency {
			p.Urgency[u.HasUrgency] = struct{}{}
		}
	}

	return p
}

// budgetKey groups weekly usage counts.
type budgetKey struct {
	category string
	urgent   bool
}

func countWeeklyUsage(usage []domain.CaptionUsage, cutoff time.Time) map[budgetKey]int {
	counts := make(map[budgetKey]int)
	for _, u := range usage {
		if u.UsedAt.Before(cutoff) {
			continue
		}
		counts[budgetKey{category: u.Category, urgent: u.HasUrgency}]++
	}
	return counts
}

// usageSince trims usage, ordered newest first, to entries at or after cutoff.
func usageSince(usage []domain.CaptionUsage, cutoff time.Time) []domain.CaptionUsage {
	for i, u := range usage {
		if u.UsedAt.Before(cutoff) {
			return usage[:i]
		}
	}
	return usage
}

// usageBudgetPenalty maps a (category, urgency) pair's weekly use count onto
// a penalty. At or above the cap the candidate is excluded outright.
func usageBudgetPenalty(counts map[budgetKey]int, category string, urgent bool, cfg Config) float64 {
	cap := cfg.WeeklyGeneralCap
	if urgent {
		cap = cfg.WeeklyUrgentCap
	}
	if cap <= 0 {
		return 0.0
	}

	used := counts[budgetKey{category: category, urgent: urgent}]
	ratio := float64(used) / float64(cap)

	switch {
	case ratio >= 1.0:
		return hardExclusionPenalty
	case ratio >= 0.8:
		return -0.5
	case ratio >= 0.6:
		return -0.3
	default:
		return 0.0
	}
}

// diversityBonus rewards attributes the audience has not seen recently and
// penalizes repeats, scaled by the diversity weight.
func diversityBonus(c domain.Caption, profile RecencyProfile, cfg Config) float64 {
	score := 0.0

	if _, seen := profile.Categories[c.ContentCategory]; seen {
		score--
	} else {
		score++
	}
	if _, seen := profile.Tiers[c.PriceTier]; seen {
		score--
	} else {
		score++
	}
	if _, seen := profile.Urgency[c.HasUrgency]; seen {
		score--
	} else {
		score++
	}

	return (score / 3.0) * cfg.DiversityWeight
}
