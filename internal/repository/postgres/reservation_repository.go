package postgres

import (
	"context"
	"fmt"
	"time"

	"promoPilot/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct {
	DB *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{DB: db}
}

// ReserveIfAbsent is the locker's single atomic check-and-insert. The
// conflict target is the partial unique index on active (creator_id,
// caption_id) rows, so only a live hold suppresses the insert; deactivated
// rows for the same slot never collide. RowsAffected == 0 means the caption
// is held. No read precedes the write, so two concurrent attempts cannot
// both win.
func (r *ReservationRepository) ReserveIfAbsent(ctx context.Context, res domain.Reservation) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	tx := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "creator_id"}, {Name: "caption_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("is_active")}},
		DoNothing:   true,
	}).Create(&res)
	if tx.Error != nil {
		return false, &domain.TransientStoreError{Op: "reserve caption", Err: tx.Error}
	}

	return tx.RowsAffected > 0, nil
}

func (r *ReservationRepository) Cancel(ctx context.Context, creatorID uint, captionID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	now := time.Now()
	tx := r.DB.WithContext(ctx).Model(&domain.Reservation{}).
		Where("creator_id = ? AND caption_id = ? AND is_active", creatorID, captionID).
		Updates(map[string]any{
			"is_active":           false,
			"deactivated_at":      now,
			"deactivation_reason": domain.DeactivationCancelled,
		})
	if tx.Error != nil {
		return false, &domain.TransientStoreError{Op: "cancel reservation", Err: tx.Error}
	}

	return tx.RowsAffected > 0, nil
}

// ActiveCaptionIDs feeds the selection engine's cooldown filter.
func (r *ReservationRepository) ActiveCaptionIDs(ctx context.Context, creatorID uint, since time.Time) (map[uint64]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint64
	if err := r.DB.WithContext(ctx).Model(&domain.Reservation{}).
		Where("creator_id = ? AND is_active AND created_at >= ?", creatorID, since).
		Pluck("caption_id", &ids).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "list active reservations", Err: err}
	}

	out := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// RecentUsage joins the creator's reservation history with caption metadata
// for the recency profile and weekly budget counts. Newest first.
func (r *ReservationRepository) RecentUsage(ctx context.Context, creatorID uint, since time.Time) ([]domain.CaptionUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var usage []domain.CaptionUsage
	if err := r.DB.WithContext(ctx).
		Table("reservations").
		Select(`reservations.caption_id,
			captions.content_category AS category,
			captions.price_tier,
			captions.has_urgency,
			reservations.created_at AS used_at`).
		Joins("JOIN captions ON captions.id = reservations.caption_id").
		Where("reservations.creator_id = ? AND reservations.created_at >= ?", creatorID, since).
		Order("reservations.created_at DESC").
		Scan(&usage).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "list recent usage", Err: err}
	}

	return usage, nil
}

// ---- Sweeper ----

func (r *ReservationRepository) DeactivatePastSendDate(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	tx := r.DB.WithContext(ctx).Model(&domain.Reservation{}).
		Where("is_active AND scheduled_send_date < ?", now).
		Updates(map[string]any{
			"is_active":           false,
			"deactivated_at":      now,
			"deactivation_reason": domain.DeactivationPastSendDate,
		})
	if tx.Error != nil {
		return 0, &domain.TransientStoreError{Op: "sweep past send date", Err: tx.Error}
	}

	return tx.RowsAffected, nil
}

func (r *ReservationRepository) DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	tx := r.DB.WithContext(ctx).Model(&domain.Reservation{}).
		Where("is_active AND created_at < ?", cutoff).
		Updates(map[string]any{
			"is_active":           false,
			"deactivated_at":      time.Now(),
			"deactivation_reason": domain.DeactivationExpiredStale,
		})
	if tx.Error != nil {
		return 0, &domain.TransientStoreError{Op: "sweep stale reservations", Err: tx.Error}
	}

	return tx.RowsAffected, nil
}
