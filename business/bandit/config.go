package bandit

import (
	"context"
	"time"

	"promoPilot/domain"
)

// Config carries the selection engine's tuning knobs. The weights and caps
// are product tuning parameters, not structural invariants, so they live in
// config with DB overrides rather than as constants.
type Config struct {
	WThompson   float64
	WDiversity  float64
	WHistorical float64
	WBudget     float64

	DiversityWeight   float64
	SegmentMultiplier float64

	// usage-budget caps per (category, urgency) over the trailing week
	WeeklyGeneralCap int
	WeeklyUrgentCap  int

	CooldownDays      int
	DecayHalfLifeDays float64
	UpdatesPerDay     int

	// recency profile sizes
	RecencyCategories int
	RecencyTiers      int
	RecencyUrgency    int

	// stats older than this fall back to cold-start defaults
	StaleAfter time.Duration
}

const (
	defaultWThompson   = 0.70
	defaultWDiversity  = 0.15
	defaultWHistorical = 0.15
	defaultWBudget     = 0.10

	defaultDiversityWeight   = 0.15
	defaultSegmentMultiplier = 1.1

	defaultWeeklyGeneralCap = 20
	defaultWeeklyUrgentCap  = 5

	defaultCooldownDays      = 7
	defaultDecayHalfLifeDays = 14.0
	defaultUpdatesPerDay     = 4

	defaultRecencyCategories = 5
	defaultRecencyTiers      = 7
	defaultRecencyUrgency    = 3

	defaultStaleAfter = 48 * time.Hour
)

func DefaultConfig() Config {
	return Config{
		WThompson:   defaultWThompson,
		WDiversity:  defaultWDiversity,
		WHistorical: defaultWHistorical,
		WBudget:     defaultWBudget,

		DiversityWeight:   defaultDiversityWeight,
		SegmentMultiplier: defaultSegmentMultiplier,

		WeeklyGeneralCap: defaultWeeklyGeneralCap,
		WeeklyUrgentCap:  defaultWeeklyUrgentCap,

		CooldownDays:      defaultCooldownDays,
		DecayHalfLifeDays: defaultDecayHalfLifeDays,
		UpdatesPerDay:     defaultUpdatesPerDay,

		RecencyCategories: defaultRecencyCategories,
		RecencyTiers:      defaultRecencyTiers,
		RecencyUrgency:    defaultRecencyUrgency,

		StaleAfter: defaultStaleAfter,
	}
}

// Cooldown returns the trailing window inside which a caption may not repeat.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownDays) * 24 * time.Hour
}

// read per-segment overrides from DB.
type ConfigRepository interface {
	GetConfig(ctx context.Context, segment string) (domain.SelectionConfig, bool, error)
	UpsertConfig(ctx context.Context, cfg domain.SelectionConfig) error
}
