package postgres

import (
	"context"
	"errors"
	"fmt"

	"promoPilot/business/bandit"
	"promoPilot/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SelectionConfigRepository struct {
	DB *gorm.DB
}

var _ bandit.ConfigRepository = (*SelectionConfigRepository)(nil)

func NewSelectionConfigRepository(db *gorm.DB) *SelectionConfigRepository {
	return &SelectionConfigRepository{DB: db}
}

func (r *SelectionConfigRepository) GetConfig(ctx context.Context, segment string) (domain.SelectionConfig, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.SelectionConfig{}, false, fmt.Errorf("context error: %w", err)
	}

	var cfg domain.SelectionConfig
	err := r.DB.WithContext(ctx).
		Where("segment = ?", segment).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.SelectionConfig{}, false, nil
	}
	if err != nil {
		return domain.SelectionConfig{}, false, err
	}

	return cfg, true, nil
}

func (r *SelectionConfigRepository) UpsertConfig(ctx context.Context, cfg domain.SelectionConfig) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "segment"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"w_thompson",
				"w_diversity",
				"w_historical",
				"w_budget",
				"diversity_weight",
				"segment_multiplier",
				"weekly_general_cap",
				"weekly_urgent_cap",
				"cooldown_days",
				"decay_half_life_days",
			}),
		}).
		Create(&cfg).Error
}
