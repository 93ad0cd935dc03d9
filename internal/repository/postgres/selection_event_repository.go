package postgres

import (
	"context"
	"fmt"

	"promoPilot/domain"

	"gorm.io/gorm"
)

// SelectionEventRepository appends served slates to the analysis log.
type SelectionEventRepository struct {
	DB *gorm.DB
}

func NewSelectionEventRepository(db *gorm.DB) *SelectionEventRepository {
	return &SelectionEventRepository{DB: db}
}

func (r *SelectionEventRepository) SaveEvents(ctx context.Context, events []domain.SelectionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).Create(&events).Error; err != nil {
		return fmt.Errorf("failed to save selection events: %w", err)
	}

	return nil
}
