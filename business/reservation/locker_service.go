package reservation

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"promoPilot/domain"
	"promoPilot/pkg/logger"
	"promoPilot/pkg/metrics"
)

// ---- Repository interfaces ----

type ReservationRepository interface {
	// ReserveIfAbsent atomically inserts the reservation unless an active
	// one already exists for the (creator, caption) pair. Returns false on
	// conflict. This is a single conditional insert in the store, never a
	// read-then-write pair.
	ReserveIfAbsent(ctx context.Context, res domain.Reservation) (bool, error)

	// Cancel deactivates the active reservation for the pair, if any.
	Cancel(ctx context.Context, creatorID uint, captionID uint64) (bool, error)
}

// ---- Usecase / Service ----

// LockerService reserves selected captions against double-booking. Each
// caption in a batch succeeds or conflicts independently.
type LockerService struct {
	repo ReservationRepository
}

func NewLockerService(repo ReservationRepository) *LockerService {
	return &LockerService{repo: repo}
}

// ReservationItem is one (caption, send slot) to reserve.
type ReservationItem struct {
	CaptionID         uint64    `json:"caption_id"`
	ScheduledSendDate time.Time `json:"scheduled_send_date"`
}

// assignmentKey derives the unique reservation identifier from the triple.
func assignmentKey(creatorID uint, captionID uint64, sendDate time.Time) string {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d:%d:%s", creatorID, captionID, sendDate.UTC().Format("2006-01-02"))
	return fmt.Sprintf("%016x", h.Sum64())
}

// Reserve attempts every item and reports per-caption outcomes. A conflict
// on one caption never aborts the rest of the batch.
func (s *LockerService) Reserve(
	ctx context.Context,
	creatorID uint,
	items []ReservationItem,
) ([]domain.ReservationResult, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	results := make([]domain.ReservationResult, 0, len(items))

	for _, item := range items {
		res := domain.Reservation{
			AssignmentKey:     assignmentKey(creatorID, item.CaptionID, item.ScheduledSendDate),
			CreatorID:         creatorID,
			CaptionID:         item.CaptionID,
			ScheduledSendDate: item.ScheduledSendDate,
			IsActive:          true,
		}

		ok, err := s.repo.ReserveIfAbsent(ctx, res)
		if err != nil {
			results = append(results, domain.ReservationResult{
				CaptionID: item.CaptionID,
				Error:     err.Error(),
			})
			continue
		}

		if !ok {
			conflict := &domain.ConflictError{CreatorID: creatorID, CaptionID: item.CaptionID}
			metrics.ReservationConflicts.Inc()
			logger.Debug("reservation_conflict",
				"creator_id", creatorID,
				"caption_id", item.CaptionID,
				"detail", conflict.Error(),
			)
			results = append(results, domain.ReservationResult{
				CaptionID: item.CaptionID,
				Conflict:  true,
				Error:     conflict.Error(),
			})
			continue
		}

		results = append(results, domain.ReservationResult{
			CaptionID: item.CaptionID,
			OK:        true,
		})
	}

	return results, nil
}

// Cancel releases a caption's active reservation ahead of the sweeper.
func (s *LockerService) Cancel(ctx context.Context, creatorID uint, captionID uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	ok, err := s.repo.Cancel(ctx, creatorID, captionID)
	if err != nil {
		return false, fmt.Errorf("failed to cancel reservation: %w", err)
	}

	return ok, nil
}
