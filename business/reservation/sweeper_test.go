//go:build !integration

package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"promoPilot/domain"
)

type memSweepRepo struct {
	rows    []domain.Reservation
	failure error
}

func (m *memSweepRepo) DeactivatePastSendDate(ctx context.Context, now time.Time) (int64, error) {
	if m.failure != nil {
		return 0, m.failure
	}
	var n int64
	for i := range m.rows {
		r := &m.rows[i]
		if r.IsActive && r.ScheduledSendDate.Before(now) {
			r.IsActive = false
			r.DeactivationReason = domain.DeactivationPastSendDate
			n++
		}
	}
	return n, nil
}

func (m *memSweepRepo) DeactivateStale(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.failure != nil {
		return 0, m.failure
	}
	var n int64
	for i := range m.rows {
		r := &m.rows[i]
		if r.IsActive && r.CreatedAt.Before(cutoff) {
			r.IsActive = false
			r.DeactivationReason = domain.DeactivationExpiredStale
			n++
		}
	}
	return n, nil
}

func TestSweep_DeactivatesPastSendDate(t *testing.T) {
	now := time.Now()
	repo := &memSweepRepo{rows: []domain.Reservation{
		{CaptionID: 1, IsActive: true, CreatedAt: now.Add(-time.Hour), ScheduledSendDate: now.AddDate(0, 0, -2)},
		{CaptionID: 2, IsActive: true, CreatedAt: now.Add(-time.Hour), ScheduledSendDate: now.AddDate(0, 0, 3)},
	}}

	result := NewSweeper(repo).Sweep(context.Background())

	if result.PastSendDate != 1 {
		t.Fatalf("past_send_date = %d, want 1", result.PastSendDate)
	}

	expired := repo.rows[0]
	if expired.IsActive {
		t.Error("past-date reservation should be inactive after the sweep")
	}
	if expired.DeactivationReason != domain.DeactivationPastSendDate {
		t.Errorf("reason = %q, want %q", expired.DeactivationReason, domain.DeactivationPastSendDate)
	}

	if !repo.rows[1].IsActive {
		t.Error("future reservation should stay active")
	}
}

func TestSweep_DeactivatesStaleHolds(t *testing.T) {
	now := time.Now()
	repo := &memSweepRepo{rows: []domain.Reservation{
		// held for eight days without being consumed
		{CaptionID: 1, IsActive: true, CreatedAt: now.AddDate(0, 0, -8), ScheduledSendDate: now.AddDate(0, 0, 5)},
		// fresh hold
		{CaptionID: 2, IsActive: true, CreatedAt: now.Add(-time.Hour), ScheduledSendDate: now.AddDate(0, 0, 5)},
	}}

	result := NewSweeper(repo).Sweep(context.Background())

	if result.ExpiredStale != 1 {
		t.Fatalf("expired_stale = %d, want 1", result.ExpiredStale)
	}
	if repo.rows[0].IsActive || repo.rows[0].DeactivationReason != domain.DeactivationExpiredStale {
		t.Errorf("stale hold not deactivated: %+v", repo.rows[0])
	}
	if !repo.rows[1].IsActive {
		t.Error("fresh hold should survive the sweep")
	}
}

func TestSweep_StoreErrorDoesNotPropagate(t *testing.T) {
	repo := &memSweepRepo{failure: errors.New("connection reset")}

	result := NewSweeper(repo).Sweep(context.Background())

	if result.PastSendDate != 0 || result.ExpiredStale != 0 {
		t.Errorf("failed sweep should report zero deactivations, got %+v", result)
	}
}
