package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SelectionRequest asks for one creator's slate. Restrictions arrive from
// the external configuration collaborator and are consumed read-only.
type SelectionRequest struct {
	CreatorID         uint           `json:"creator_id"`
	BehavioralSegment string         `json:"behavioral_segment"`
	Quotas            TierQuota      `json:"quotas"`
	Restrictions      RestrictionSet `json:"restriction_set"`
}

// CaptionUsage is one recent send for recency/budget accounting, joined from
// the reservation history and caption metadata.
type CaptionUsage struct {
	CaptionID  uint64    `json:"caption_id"`
	Category   string    `json:"category"`
	PriceTier  string    `json:"price_tier"`
	HasUrgency bool      `json:"has_urgency"`
	UsedAt     time.Time `json:"used_at"`
}

// TierQuota is how many captions the caller wants per price tier.
type TierQuota struct {
	Budget  int `json:"budget"`
	Mid     int `json:"mid"`
	Premium int `json:"premium"`
	Bump    int `json:"bump"`
}

// For iterates tiers in quota-fill order.
func (q TierQuota) For(tier string) int {
	switch tier {
	case TierBudget:
		return q.Budget
	case TierMid:
		return q.Mid
	case TierPremium:
		return q.Premium
	case TierBump:
		return q.Bump
	}
	return 0
}

// ScoreBreakdown is the per-candidate diagnostic attached to selections.
type ScoreBreakdown struct {
	ThompsonSample     float64 `json:"thompson_sample"`
	DiversityBonus     float64 `json:"diversity_bonus"`
	HistoricalValue    float64 `json:"historical_value"`
	UsageBudgetPenalty float64 `json:"usage_budget_penalty"`
	SegmentMultiplier  float64 `json:"segment_multiplier"`
	ConfidenceLower    float64 `json:"confidence_lower"`
	ConfidenceUpper    float64 `json:"confidence_upper"`
}

// ToMap flattens the breakdown for JSONB persistence on selection events.
func (b ScoreBreakdown) ToMap() datatypes.JSONMap {
	return datatypes.JSONMap{
		"thompson_sample":      b.ThompsonSample,
		"diversity_bonus":      b.DiversityBonus,
		"historical_value":     b.HistoricalValue,
		"usage_budget_penalty": b.UsageBudgetPenalty,
		"segment_multiplier":   b.SegmentMultiplier,
		"confidence_lower":     b.ConfidenceLower,
		"confidence_upper":     b.ConfidenceUpper,
	}
}

// SelectedCaption is one slate entry.
type SelectedCaption struct {
	CaptionID   uint64         `json:"caption_id"`
	PriceTier   string         `json:"price_tier"`
	Score       float64        `json:"score"`
	Diagnostics ScoreBreakdown `json:"diagnostics"`
}

// SelectionResult is the slate for one creator. UnderfilledTiers lists the
// tiers whose quota could not be met; an under-filled slate is a valid
// result, never an error.
type SelectionResult struct {
	CreatorID        uint              `json:"creator_id"`
	Selected         []SelectedCaption `json:"selected"`
	UnderfilledTiers []string          `json:"underfilled_tiers"`
	StaleCaptionIDs  []uint64          `json:"stale_caption_ids,omitempty"`
}
