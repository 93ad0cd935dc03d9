package domain

import "time"

// Smoothing prior applied to every (creator, caption) pair. A pair with no
// observations starts at successes=failures=1 so warm and cold captions run
// through the same ranking path.
const (
	PriorSuccesses = 1.0
	PriorFailures  = 1.0
)

// BanditStat is one row per (creator, caption). Mutated only by the feedback
// loop; rows are never deleted, decay erodes stale evidence instead.
type BanditStat struct {
	ID                    uint64     `gorm:"primaryKey" json:"id"`
	CreatorID             uint       `gorm:"column:creator_id;not null;uniqueIndex:idx_stat_pair,priority:1;index:idx_stat_creator" json:"creator_id"`
	CaptionID             uint64     `gorm:"column:caption_id;not null;uniqueIndex:idx_stat_pair,priority:2" json:"caption_id"`
	Successes             float64    `gorm:"column:successes;default:1" json:"successes"`
	Failures              float64    `gorm:"column:failures;default:1" json:"failures"`
	TotalObservations     int        `gorm:"column:total_observations" json:"total_observations"`
	TotalRevenue          float64    `gorm:"column:total_revenue" json:"total_revenue"`
	AvgConversionRate     float64    `gorm:"column:avg_conversion_rate" json:"avg_conversion_rate"`
	AvgExpectedValue      float64    `gorm:"column:avg_expected_value" json:"avg_expected_value"`
	ConfidenceLower       float64    `gorm:"column:confidence_lower" json:"confidence_lower"`
	ConfidenceUpper       float64    `gorm:"column:confidence_upper;default:1" json:"confidence_upper"`
	ExplorationScore      float64    `gorm:"column:exploration_score;default:1" json:"exploration_score"`
	PerformancePercentile int        `gorm:"column:performance_percentile" json:"performance_percentile"`
	LastUsedAt            *time.Time `gorm:"column:last_used_at" json:"last_used_at"`
	LastUpdatedAt         time.Time  `gorm:"column:last_updated_at;autoUpdateTime" json:"last_updated_at"`
}

func (BanditStat) TableName() string {
	return "bandit_stats"
}

// DefaultStat is the cold-start row returned when no stat exists for a pair.
func DefaultStat(creatorID uint, captionID uint64) BanditStat {
	return BanditStat{
		CreatorID:        creatorID,
		CaptionID:        captionID,
		Successes:        PriorSuccesses,
		Failures:         PriorFailures,
		ConfidenceLower:  0.0,
		ConfidenceUpper:  1.0,
		ExplorationScore: 1.0,
	}
}
