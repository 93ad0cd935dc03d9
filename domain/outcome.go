package domain

import (
	"time"

	"gorm.io/datatypes"
)

// OutcomeRecord is one historical message send and its observed result,
// written by the external ingestion pipeline and read here by the feedback
// loop and the saturation scorer.
type OutcomeRecord struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	CreatorID     uint      `gorm:"column:creator_id;not null;index:idx_outcome_creator_sent,priority:1" json:"creator_id"`
	CaptionID     uint64    `gorm:"column:caption_id;not null" json:"caption_id"`
	SentAt        time.Time `gorm:"column:sent_at;not null;index:idx_outcome_creator_sent,priority:2" json:"sent_at"`
	ViewCount     int       `gorm:"column:view_count" json:"view_count"`
	UnlockCount   int       `gorm:"column:unlock_count" json:"unlock_count"`
	Earnings      float64   `gorm:"column:earnings" json:"earnings"`
	ExpectedValue float64   `gorm:"column:expected_value" json:"expected_value"`
}

func (OutcomeRecord) TableName() string {
	return "outcome_records"
}

// SelectionEvent logs one served slate with its score breakdown for offline
// analysis. Append-only.
type SelectionEvent struct {
	ID          uint64            `gorm:"primaryKey" json:"id"`
	CreatorID   uint              `gorm:"column:creator_id;not null;index" json:"creator_id"`
	CaptionID   uint64            `gorm:"column:caption_id;not null" json:"caption_id"`
	PriceTier   string            `gorm:"column:price_tier" json:"price_tier"`
	Score       float64           `gorm:"column:score" json:"score"`
	Diagnostics datatypes.JSONMap `gorm:"column:diagnostics;type:jsonb" json:"diagnostics"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (SelectionEvent) TableName() string {
	return "selection_events"
}

// Holiday is a calendar row maintained by an external collaborator. Days
// listed here are excluded from saturation baselines.
type Holiday struct {
	Day  time.Time `gorm:"column:day;primaryKey" json:"day"`
	Name string    `gorm:"column:name" json:"name"`
}

func (Holiday) TableName() string {
	return "holidays"
}
