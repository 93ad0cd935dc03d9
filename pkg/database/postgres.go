package database

import (
	"fmt"
	"time"

	"promoPilot/domain"
	"promoPilot/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitPostgres opens the gorm connection and migrates the engine's tables.
func InitPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := db.AutoMigrate(
		&domain.Caption{},
		&domain.BanditStat{},
		&domain.Reservation{},
		&domain.OutcomeRecord{},
		&domain.SelectionEvent{},
		&domain.SelectionConfig{},
		&domain.Holiday{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Partial unique index backing the locker's conditional insert: at most
	// one active reservation per (creator, caption).
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservation_active_pair
		 ON reservations (creator_id, caption_id) WHERE is_active`,
	).Error; err != nil {
		return nil, fmt.Errorf("failed to create active reservation index: %w", err)
	}

	return db, nil
}
