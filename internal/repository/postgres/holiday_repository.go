package postgres

import (
	"context"
	"fmt"
	"time"

	"promoPilot/domain"

	"gorm.io/gorm"
)

// HolidayRepository reads the exclusion calendar maintained by an external
// collaborator. Read-only here.
type HolidayRepository struct {
	DB *gorm.DB
}

func NewHolidayRepository(db *gorm.DB) *HolidayRepository {
	return &HolidayRepository{DB: db}
}

func (r *HolidayRepository) Holidays(ctx context.Context, from, to time.Time) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []domain.Holiday
	if err := r.DB.WithContext(ctx).
		Where("day >= ? AND day < ?", from, to).
		Find(&rows).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "list holidays", Err: err}
	}

	out := make(map[string]string, len(rows))
	for _, h := range rows {
		out[h.Day.UTC().Format("2006-01-02")] = h.Name
	}
	return out, nil
}
