package domain

import "time"

// Reasons a reservation can be deactivated by the sweeper.
const (
	DeactivationExpiredStale = "EXPIRED_STALE"
	DeactivationPastSendDate = "PAST_SEND_DATE"
	DeactivationCancelled    = "CANCELLED"
)

// Reservation is one row per (creator, caption, scheduled send date). Rows
// are deactivated, never deleted, so the assignment history stays auditable.
// The assignment key identifies the logical slot; a cancelled slot rebooked
// later shares the key with its deactivated predecessor, so uniqueness is
// enforced only among active rows via the partial pair index.
type Reservation struct {
	ID                 uint64     `gorm:"primaryKey" json:"id"`
	AssignmentKey      string     `gorm:"column:assignment_key;not null;index:idx_reservation_key" json:"assignment_key"`
	CreatorID          uint       `gorm:"column:creator_id;not null;index:idx_reservation_creator" json:"creator_id"`
	CaptionID          uint64     `gorm:"column:caption_id;not null" json:"caption_id"`
	ScheduledSendDate  time.Time  `gorm:"column:scheduled_send_date;not null" json:"scheduled_send_date"`
	IsActive           bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DeactivatedAt      *time.Time `gorm:"column:deactivated_at" json:"deactivated_at"`
	DeactivationReason string     `gorm:"column:deactivation_reason" json:"deactivation_reason"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// ReservationResult is the per-item outcome of a reservation batch.
type ReservationResult struct {
	CaptionID uint64 `json:"caption_id"`
	OK        bool   `json:"ok"`
	Conflict  bool   `json:"conflict,omitempty"`
	Error     string `json:"error,omitempty"`
}
