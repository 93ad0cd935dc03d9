//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"promoPilot/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// openTestDB connects to the database named by TEST_DATABASE_DSN and applies
// the reservation schema, including the partial active-pair index the
// conditional insert targets.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	if err := db.Migrator().DropTable(&domain.Reservation{}); err != nil {
		t.Fatalf("failed to reset reservations: %v", err)
	}
	if err := db.AutoMigrate(&domain.Reservation{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservation_active_pair
		 ON reservations (creator_id, caption_id) WHERE is_active`,
	).Error; err != nil {
		t.Fatalf("failed to create active pair index: %v", err)
	}

	return db
}

func testReservation(creatorID uint, captionID uint64, sendDate time.Time) domain.Reservation {
	return domain.Reservation{
		AssignmentKey:     fmt.Sprintf("%d:%d:%s", creatorID, captionID, sendDate.Format("2006-01-02")),
		CreatorID:         creatorID,
		CaptionID:         captionID,
		ScheduledSendDate: sendDate,
		IsActive:          true,
	}
}

func TestReserveIfAbsent_ActivePairConflictsOnce(t *testing.T) {
	repo := NewReservationRepository(openTestDB(t))
	ctx := context.Background()
	sendDate := time.Now().AddDate(0, 0, 1)

	ok, err := repo.ReserveIfAbsent(ctx, testReservation(1, 7, sendDate))
	if err != nil || !ok {
		t.Fatalf("first insert: ok=%v err=%v", ok, err)
	}

	ok, err = repo.ReserveIfAbsent(ctx, testReservation(1, 7, sendDate))
	if err != nil {
		t.Fatalf("second insert errored: %v", err)
	}
	if ok {
		t.Fatal("second insert for a held pair must not win")
	}
}

func TestReserveIfAbsent_RebooksCancelledSlot(t *testing.T) {
	repo := NewReservationRepository(openTestDB(t))
	ctx := context.Background()
	sendDate := time.Now().AddDate(0, 0, 2)

	ok, err := repo.ReserveIfAbsent(ctx, testReservation(1, 7, sendDate))
	if err != nil || !ok {
		t.Fatalf("reserve: ok=%v err=%v", ok, err)
	}

	ok, err = repo.Cancel(ctx, 1, 7)
	if err != nil || !ok {
		t.Fatalf("cancel: ok=%v err=%v", ok, err)
	}

	// same triple, same assignment key; only the dead row shares them
	ok, err = repo.ReserveIfAbsent(ctx, testReservation(1, 7, sendDate))
	if err != nil {
		t.Fatalf("rebook errored: %v", err)
	}
	if !ok {
		t.Fatal("rebooking a cancelled slot must succeed")
	}

	var count int64
	if err := repo.DB.Model(&domain.Reservation{}).
		Where("creator_id = ? AND caption_id = ?", 1, 7).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("got %d rows, want cancelled row retained alongside the rebooked one", count)
	}
}
