package postgres

import (
	"context"
	"fmt"
	"time"

	"promoPilot/domain"

	"gorm.io/gorm"
)

type OutcomeRepository struct {
	DB *gorm.DB
}

func NewOutcomeRepository(db *gorm.DB) *OutcomeRepository {
	return &OutcomeRepository{DB: db}
}

func (r *OutcomeRepository) ActiveCreators(ctx context.Context, since time.Time) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint
	if err := r.DB.WithContext(ctx).Model(&domain.OutcomeRecord{}).
		Where("sent_at >= ?", since).
		Distinct("creator_id").
		Pluck("creator_id", &ids).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "list active creators", Err: err}
	}

	return ids, nil
}

func (r *OutcomeRepository) CreatorOutcomes(ctx context.Context, creatorID uint, since time.Time) ([]domain.OutcomeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var outcomes []domain.OutcomeRecord
	if err := r.DB.WithContext(ctx).
		Where("creator_id = ? AND sent_at >= ?", creatorID, since).
		Order("sent_at ASC").
		Find(&outcomes).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "list creator outcomes", Err: err}
	}

	return outcomes, nil
}

const dailyAggregateSelect = `
	creator_id,
	date_trunc('day', sent_at) AS day,
	COUNT(*) AS sends,
	COALESCE(SUM(view_count), 0) AS views,
	COALESCE(SUM(unlock_count), 0) AS unlocks,
	COALESCE(SUM(earnings), 0) AS earnings,
	CASE WHEN SUM(view_count) > 0
		THEN SUM(unlock_count)::float / SUM(view_count)
		ELSE 0 END AS unlock_rate,
	COALESCE(AVG(expected_value), 0) AS avg_ev`

// CreatorDaily aggregates one creator's outcomes per calendar day.
func (r *OutcomeRepository) CreatorDaily(ctx context.Context, creatorID uint, from, to time.Time) ([]domain.DailyAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var aggs []domain.DailyAggregate
	if err := r.DB.WithContext(ctx).
		Model(&domain.OutcomeRecord{}).
		Select(dailyAggregateSelect).
		Where("creator_id = ? AND sent_at >= ? AND sent_at < ?", creatorID, from, to).
		Group("creator_id, date_trunc('day', sent_at)").
		Order("day ASC").
		Scan(&aggs).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "aggregate creator outcomes", Err: err}
	}

	return aggs, nil
}

// PlatformDaily aggregates every creator's outcomes per day, feeding the
// platform-wide anomaly detection.
func (r *OutcomeRepository) PlatformDaily(ctx context.Context, from, to time.Time) ([]domain.DailyAggregate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var aggs []domain.DailyAggregate
	if err := r.DB.WithContext(ctx).
		Model(&domain.OutcomeRecord{}).
		Select(dailyAggregateSelect).
		Where("sent_at >= ? AND sent_at < ?", from, to).
		Group("creator_id, date_trunc('day', sent_at)").
		Order("day ASC").
		Scan(&aggs).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "aggregate platform outcomes", Err: err}
	}

	return aggs, nil
}
