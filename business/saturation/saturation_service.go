package saturation

import (
	"context"
	"fmt"
	"time"

	"promoPilot/domain"
	"promoPilot/pkg/logger"
	"promoPilot/pkg/metrics"
)

// ---- Repository interfaces ----

type AggregateReader interface {
	// CreatorDaily returns one creator's per-day outcome aggregates.
	CreatorDaily(ctx context.Context, creatorID uint, from, to time.Time) ([]domain.DailyAggregate, error)

	// PlatformDaily returns every creator's per-day aggregates in the range.
	PlatformDaily(ctx context.Context, from, to time.Time) ([]domain.DailyAggregate, error)
}

type HolidayReader interface {
	// Holidays returns excluded calendar days keyed by date, value is the
	// holiday name.
	Holidays(ctx context.Context, from, to time.Time) (map[string]string, error)
}

// SnapshotCache holds the latest snapshot per creator. Optional.
type SnapshotCache interface {
	Get(ctx context.Context, creatorID uint) (*domain.SaturationSnapshot, error)
	Set(ctx context.Context, snapshot domain.SaturationSnapshot) error
}

// ---- Tuning ----

const (
	// every day of the rolling window with a same-weekday baseline is scored
	fullWindowDays = 90

	// a component only contributes when its trigger fires
	dropThreshold     = 0.30
	streakTrigger     = 3
	platformDropShare = 0.70
	minValidDays      = 7

	weightEVDeviation = 0.4
	weightStreak      = 0.2
	weightPlatform    = 0.1

	// tier-dependent unlock weight: larger accounts weigh the unlock-rate
	// signal more heavily
	unlockWeightSmall = 0.2
	unlockWeightMid   = 0.3
	unlockWeightLarge = 0.4

	// average daily earnings cut points for account size
	largeAccountDaily = 500.0
	midAccountDaily   = 100.0

	highRiskScore   = 0.7
	mediumRiskScore = 0.4

	snapshotTTL = time.Hour
)

// ---- Usecase / Service ----

// Service scores audience fatigue per creator against same-weekday and
// platform-wide baselines. Pure derived view; nothing here mutates stats or
// reservations.
type Service struct {
	aggregates AggregateReader
	holidays   HolidayReader
	cache      SnapshotCache
}

func NewService(aggregates AggregateReader, holidays HolidayReader, cache SnapshotCache) *Service {
	return &Service{
		aggregates: aggregates,
		holidays:   holidays,
		cache:      cache,
	}
}

// Score computes the creator's saturation snapshot over a rolling 90-day
// window. Recomputable at any time; the cache only short-circuits repeats.
func (s *Service) Score(ctx context.Context, creatorID uint) (domain.SaturationSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.SaturationSnapshot{}, fmt.Errorf("context error: %w", err)
	}

	if s.cache != nil {
		if snap, err := s.cache.Get(ctx, creatorID); err == nil && snap != nil {
			if time.Since(snap.ComputedAt) < snapshotTTL {
				return *snap, nil
			}
		}
	}

	now := time.Now()
	from := now.AddDate(0, 0, -fullWindowDays)

	creatorDays, err := s.aggregates.CreatorDaily(ctx, creatorID, from, now)
	if err != nil {
		return domain.SaturationSnapshot{}, fmt.Errorf("failed to load creator aggregates: %w", err)
	}

	platformDays, err := s.aggregates.PlatformDaily(ctx, from, now)
	if err != nil {
		return domain.SaturationSnapshot{}, fmt.Errorf("failed to load platform aggregates: %w", err)
	}

	holidayDays, err := s.holidays.Holidays(ctx, from, now)
	if err != nil {
		return domain.SaturationSnapshot{}, fmt.Errorf("failed to load holidays: %w", err)
	}

	snapshot := s.score(creatorID, now, creatorDays, platformDays, holidayDays)

	metrics.SaturationQueries.Inc()

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshot); err != nil {
			logger.Debug("saturation_cache_set_failed", "creator_id", creatorID, "error", err)
		}
	}

	return snapshot, nil
}

// score is the pure core, separated so tests can drive it with fixtures.
func (s *Service) score(
	creatorID uint,
	now time.Time,
	creatorDays []domain.DailyAggregate,
	platformDays []domain.DailyAggregate,
	holidayDays map[string]string,
) domain.SaturationSnapshot {

	byDay := make(map[string]domain.DailyAggregate, len(creatorDays))
	for _, agg := range creatorDays {
		byDay[dayKey(agg.Day)] = agg
	}

	perCreator := make(map[uint]map[string]domain.DailyAggregate)
	for _, agg := range platformDays {
		m, ok := perCreator[agg.CreatorID]
		if !ok {
			m = make(map[string]domain.DailyAggregate)
			perCreator[agg.CreatorID] = m
		}
		m[dayKey(agg.Day)] = agg
	}

	anomalyDays := platformAnomalyDays(perCreator, now)

	snap := domain.SaturationSnapshot{
		CreatorID:  creatorID,
		ComputedAt: now,
	}

	var (
		unlockDropSum, evDropSum     float64
		platformDropSum              float64
		validDays, excludedDays      int
		streak, maxStreak            int
	)

	platformBaseline := make(map[string]baseline)

	for back := fullWindowDays - 1; back >= 0; back-- {
		day := now.AddDate(0, 0, -back)
		key := dayKey(day)

		if _, isHoliday := holidayDays[key]; isHoliday {
			excludedDays++
			streak = 0
			continue
		}
		if _, isAnomaly := anomalyDays[key]; isAnomaly {
			excludedDays++
			streak = 0
			continue
		}

		agg, ok := byDay[key]
		if !ok || agg.Sends == 0 {
			continue
		}

		base := sameWeekdayBaseline(byDay, day)
		if base.samples == 0 {
			continue
		}

		validDays++

		unlockDrop := relativeDrop(base.unlockRate, agg.UnlockRate)
		evDrop := relativeDrop(base.avgEV, agg.AvgEV)
		unlockDropSum += unlockDrop
		evDropSum += evDrop

		// creator drop net of the platform's own movement that day
		pb, cached := platformBaseline[key]
		if !cached {
			pb = platformDayBaseline(perCreator, day)
			platformBaseline[key] = pb
		}
		pAgg := platformDayAggregate(perCreator, key)
		if pb.samples > 0 && pAgg.samples > 0 {
			platformDropSum += relativeDrop(pb.avgEV, pAgg.avgEV)
		}

		if evDrop > 0 {
			streak++
			if streak > maxStreak {
				maxStreak = streak
			}
		} else {
			streak = 0
		}
	}

	if validDays > 0 {
		snap.UnlockRateDeviation = unlockDropSum / float64(validDays)
		snap.RevenueDeviation = evDropSum / float64(validDays)
		snap.PlatformDeviation = platformDropSum / float64(validDays)
	}
	snap.ConsecutiveUnderperfDays = maxStreak
	snap.ValidDays = validDays
	snap.ExcludedDays = excludedDays

	// binary-gated component sum
	score := 0.0
	if snap.UnlockRateDeviation >= dropThreshold {
		score += unlockWeight(creatorDays)
	}
	if snap.RevenueDeviation >= dropThreshold {
		score += weightEVDeviation
	}
	if maxStreak >= streakTrigger {
		score += weightStreak
	}
	if snap.PlatformDeviation >= dropThreshold {
		score += weightPlatform
	}
	if score > 1 {
		score = 1
	}
	snap.SaturationScore = score

	snap.ConfidenceScore = confidence(validDays, excludedDays)
	if validDays < minValidDays {
		snap.ExclusionReason = "INSUFFICIENT_DATA"
	} else if excludedDays > 0 {
		snap.ExclusionReason = "EXCLUDED_DAYS_PRESENT"
	}

	switch {
	case score >= highRiskScore:
		snap.RiskLevel = domain.RiskHigh
	case score >= mediumRiskScore:
		snap.RiskLevel = domain.RiskMedium
	default:
		snap.RiskLevel = domain.RiskLow
	}

	// low confidence suppresses any volume cut, whatever the raw score says
	snap.RecommendedAction = domain.ActionNone
	if snap.ConfidenceScore >= 0.5 {
		switch {
		case score >= highRiskScore:
			snap.RecommendedAction = domain.ActionReduce30
		case score >= mediumRiskScore:
			snap.RecommendedAction = domain.ActionReduce15
		}
	}

	return snap
}

// unlockWeight scales the unlock-rate component by account size, measured as
// average daily earnings over the window.
func unlockWeight(creatorDays []domain.DailyAggregate) float64 {
	if len(creatorDays) == 0 {
		return unlockWeightSmall
	}

	total := 0.0
	for _, agg := range creatorDays {
		total += agg.Earnings
	}
	daily := total / float64(len(creatorDays))

	switch {
	case daily >= largeAccountDaily:
		return unlockWeightLarge
	case daily >= midAccountDaily:
		return unlockWeightMid
	default:
		return unlockWeightSmall
	}
}

// confidence discounts thin or exclusion-heavy windows. Fewer than the
// minimum valid days always lands below 0.5, which blocks recommendations.
func confidence(validDays, excludedDays int) float64 {
	if validDays < minValidDays {
		return 0.5 * float64(validDays) / float64(minValidDays)
	}

	density := float64(excludedDays) / float64(fullWindowDays)
	c := 1.0 - 0.5*density
	if c < 0 {
		c = 0
	}
	return c
}

// platformAnomalyDays finds days where at least 70% of active creators drop
// more than 30% below their own same-weekday baseline. Those days reflect a
// platform event, not creator fatigue, and are excluded from every creator's
// scoring.
func platformAnomalyDays(perCreator map[uint]map[string]domain.DailyAggregate, now time.Time) map[string]struct{} {
	anomalies := make(map[string]struct{})

	for back := fullWindowDays - 1; back >= 0; back-- {
		day := now.AddDate(0, 0, -back)
		key := dayKey(day)

		active, dropped := 0, 0
		for _, days := range perCreator {
			agg, ok := days[key]
			if !ok || agg.Sends == 0 {
				continue
			}
			base := sameWeekdayBaseline(days, day)
			if base.samples == 0 {
				continue
			}
			active++
			if relativeDrop(base.avgEV, agg.AvgEV) >= dropThreshold {
				dropped++
			}
		}

		if active > 0 && float64(dropped)/float64(active) >= platformDropShare {
			anomalies[key] = struct{}{}
		}
	}

	return anomalies
}

type platformDay struct {
	avgEV   float64
	samples int
}

// platformDayAggregate averages EV across creators active on the day.
func platformDayAggregate(perCreator map[uint]map[string]domain.DailyAggregate, key string) platformDay {
	var p platformDay
	for _, days := range perCreator {
		agg, ok := days[key]
		if !ok || agg.Sends == 0 {
			continue
		}
		p.avgEV += agg.AvgEV
		p.samples++
	}
	if p.samples > 0 {
		p.avgEV /= float64(p.samples)
	}
	return p
}

// platformDayBaseline is the platform-wide same-weekday baseline for a day.
func platformDayBaseline(perCreator map[uint]map[string]domain.DailyAggregate, day time.Time) baseline {
	var b baseline
	for back := 7; back <= 30; back += 7 {
		key := dayKey(day.AddDate(0, 0, -back))
		p := platformDayAggregate(perCreator, key)
		if p.samples == 0 {
			continue
		}
		b.avgEV += p.avgEV
		b.samples++
	}
	if b.samples > 0 {
		b.avgEV /= float64(b.samples)
	}
	return b
}
