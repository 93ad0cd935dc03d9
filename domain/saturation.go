package domain

import "time"

// Risk tiers for a creator's saturation score.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Recommended volume actions.
const (
	ActionNone     = "NONE"
	ActionReduce15 = "REDUCE_15PCT"
	ActionReduce30 = "REDUCE_30PCT"
)

// SaturationSnapshot is a derived per-creator view, recomputed from a rolling
// 90-day window on every scoring run. Only the latest snapshot per creator is
// kept; it is never authoritative state.
type SaturationSnapshot struct {
	CreatorID                uint      `json:"creator_id"`
	UnlockRateDeviation      float64   `json:"unlock_rate_deviation"`
	RevenueDeviation         float64   `json:"revenue_deviation"`
	PlatformDeviation        float64   `json:"platform_deviation"`
	ConsecutiveUnderperfDays int       `json:"consecutive_underperform_days"`
	SaturationScore          float64   `json:"saturation_score"`
	RiskLevel                string    `json:"risk_level"`
	ConfidenceScore          float64   `json:"confidence_score"`
	RecommendedAction        string    `json:"recommended_action"`
	ExclusionReason          string    `json:"exclusion_reason,omitempty"`
	ValidDays                int       `json:"valid_days"`
	ExcludedDays             int       `json:"excluded_days"`
	ComputedAt               time.Time `json:"computed_at"`
}

// DailyAggregate is one creator-day of outcome totals, the unit the
// saturation scorer works in.
type DailyAggregate struct {
	CreatorID  uint      `json:"creator_id"`
	Day        time.Time `json:"day"`
	Sends      int       `json:"sends"`
	Views      int       `json:"views"`
	Unlocks    int       `json:"unlocks"`
	Earnings   float64   `json:"earnings"`
	UnlockRate float64   `json:"unlock_rate"`
	AvgEV      float64   `json:"avg_ev"`
}
