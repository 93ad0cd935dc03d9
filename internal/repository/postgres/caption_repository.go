package postgres

import (
	"context"
	"fmt"

	"promoPilot/domain"

	"gorm.io/gorm"
)

type CaptionRepository struct {
	DB *gorm.DB
}

func NewCaptionRepository(db *gorm.DB) *CaptionRepository {
	return &CaptionRepository{DB: db}
}

// ListCandidates joins every caption with the creator's stat row. Pairs with
// no stat yet get the cold-start default, so there is no separate path for
// new creators.
func (r *CaptionRepository) ListCandidates(ctx context.Context, creatorID uint) ([]domain.CaptionCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var captions []domain.Caption
	if err := r.DB.WithContext(ctx).Find(&captions).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "list captions", Err: err}
	}

	var stats []domain.BanditStat
	if err := r.DB.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Find(&stats).Error; err != nil {
		return nil, &domain.TransientStoreError{Op: "list stats", Err: err}
	}

	statByCaption := make(map[uint64]domain.BanditStat, len(stats))
	for _, st := range stats {
		statByCaption[st.CaptionID] = st
	}

	candidates := make([]domain.CaptionCandidate, 0, len(captions))
	for _, c := range captions {
		st, ok := statByCaption[c.ID]
		if !ok {
			st = domain.DefaultStat(creatorID, c.ID)
		}
		candidates = append(candidates, domain.CaptionCandidate{Caption: c, Stat: st})
	}

	return candidates, nil
}
