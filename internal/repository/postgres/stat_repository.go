package postgres

import (
	"context"
	"errors"
	"fmt"

	"promoPilot/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatRepository struct {
	DB *gorm.DB
}

func NewStatRepository(db *gorm.DB) *StatRepository {
	return &StatRepository{DB: db}
}

// UpdatePairAtomic applies mutate to the pair's stat row under a row lock so
// concurrent feedback runs serialize per pair instead of losing updates. A
// missing row is created lazily from the cold-start prior.
func (r *StatRepository) UpdatePairAtomic(
	ctx context.Context,
	creatorID uint,
	captionID uint64,
	mutate func(*domain.BanditStat),
) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stat domain.BanditStat
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("creator_id = ? AND caption_id = ?", creatorID, captionID).
			First(&stat).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			stat = domain.DefaultStat(creatorID, captionID)
		} else if err != nil {
			return fmt.Errorf("failed to load stat row: %w", err)
		}

		mutate(&stat)

		if err := tx.Save(&stat).Error; err != nil {
			return fmt.Errorf("failed to save stat row: %w", err)
		}
		return nil
	})
	if err != nil {
		return &domain.TransientStoreError{Op: "update stat", Err: err}
	}

	return nil
}

func (r *StatRepository) StatsForCreator(ctx context.Context, creatorID uint) ([]domain.BanditStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var stats []domain.BanditStat
	if err := r.DB.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Find(&stats).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "list creator stats", Err: err}
	}

	return stats, nil
}

// SavePercentiles batches percentile updates for one creator.
func (r *StatRepository) SavePercentiles(ctx context.Context, creatorID uint, percentiles map[uint64]int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for captionID, pct := range percentiles {
			if err := tx.Model(&domain.BanditStat{}).
				Where("creator_id = ? AND caption_id = ?", creatorID, captionID).
				Update("performance_percentile", pct).Error; err != nil {
				return fmt.Errorf("failed to update percentile for caption %d: %w", captionID, err)
			}
		}
		return nil
	})
	if err != nil {
		return &domain.TransientStoreError{Op: "save percentiles", Err: err}
	}

	return nil
}
