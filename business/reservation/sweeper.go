package reservation

import (
	"context"
	"time"

	"promoPilot/domain"
	"promoPilot/pkg/logger"
	"promoPilot/pkg/metrics"
)

// Reservations unconsumed for longer than this are considered stale.
const staleAfter = 7 * 24 * time.Hour

type SweepRepository interface {
	// DeactivateExpired deactivates active reservations matched by the
	// predicate, stamping the reason. Returns rows affected.
	DeactivatePastSendDate(ctx context.Context, now time.Time) (int64, error)
	DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper deactivates reservations whose slot has passed or gone stale.
type Sweeper struct {
	repo SweepRepository
}

func NewSweeper(repo SweepRepository) *Sweeper {
	return &Sweeper{repo: repo}
}

// SweepResult counts deactivations by reason.
type SweepResult struct {
	PastSendDate int64 `json:"past_send_date"`
	ExpiredStale int64 `json:"expired_stale"`
}

// Sweep runs one cleanup pass. Store errors are logged, never propagated to
// the scheduler; the next pass picks up whatever this one missed.
func (s *Sweeper) Sweep(ctx context.Context) SweepResult {
	now := time.Now()
	var result SweepResult

	past, err := s.repo.DeactivatePastSendDate(ctx, now)
	if err != nil {
		logger.Error("sweep_past_send_date_failed", "error", err)
	} else {
		result.PastSendDate = past
		metrics.SweeperDeactivations.WithLabelValues(domain.DeactivationPastSendDate).Add(float64(past))
	}

	stale, err := s.repo.DeactivateStale(ctx, now.Add(-staleAfter))
	if err != nil {
		logger.Error("sweep_stale_failed", "error", err)
	} else {
		result.ExpiredStale = stale
		metrics.SweeperDeactivations.WithLabelValues(domain.DeactivationExpiredStale).Add(float64(stale))
	}

	logger.Info("sweep_complete",
		"past_send_date", result.PastSendDate,
		"expired_stale", result.ExpiredStale,
	)

	return result
}
