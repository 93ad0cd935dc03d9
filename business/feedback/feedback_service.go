package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"promoPilot/business/bandit"
	"promoPilot/domain"
	"promoPilot/pkg/logger"
	"promoPilot/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// ---- Repository interfaces ----

type OutcomeReader interface {
	// ActiveCreators lists creators with outcome records since the cutoff.
	ActiveCreators(ctx context.Context, since time.Time) ([]uint, error)

	// CreatorOutcomes returns a creator's outcome records since the cutoff.
	CreatorOutcomes(ctx context.Context, creatorID uint, since time.Time) ([]domain.OutcomeRecord, error)
}

type StatRepository interface {
	// UpdatePairAtomic loads the stat row for the pair (cold-start default
	// on miss), applies mutate, and writes it back, all under a row lock so
	// concurrent runs cannot lose updates.
	UpdatePairAtomic(ctx context.Context, creatorID uint, captionID uint64, mutate func(*domain.BanditStat)) error

	// StatsForCreator returns every stat row for the creator.
	StatsForCreator(ctx context.Context, creatorID uint) ([]domain.BanditStat, error)

	// SavePercentiles writes recomputed percentiles for the creator.
	SavePercentiles(ctx context.Context, creatorID uint, percentiles map[uint64]int) error
}

// ---- Usecase / Service ----

// Service folds new outcome records into the bandit statistics with
// exponential time decay. Safe to re-run: decay plus re-addition of the same
// window is bounded and self-corrects within one period.
type Service struct {
	outcomes OutcomeReader
	stats    StatRepository
	cfg      bandit.Config
	workers  int
}

func NewService(outcomes OutcomeReader, stats StatRepository, cfg bandit.Config, workers int) *Service {
	if workers <= 0 {
		workers = 4
	}
	return &Service{
		outcomes: outcomes,
		stats:    stats,
		cfg:      cfg,
		workers:  workers,
	}
}

const (
	medianWindow = 30 * 24 * time.Hour
	updateWindow = 7 * 24 * time.Hour
)

// CreatorError is a non-fatal per-creator failure from one run.
type CreatorError struct {
	CreatorID uint   `json:"creator_id"`
	Error     string `json:"error"`
}

type RunResult struct {
	CreatorsProcessed int            `json:"creators_processed"`
	RowsUpdated       int            `json:"rows_updated"`
	Errors            []CreatorError `json:"errors,omitempty"`
}

// Run processes every creator with recent activity. One creator's failure is
// recorded and skipped; it never aborts the rest.
func (s *Service) Run(ctx context.Context) (RunResult, error) {
	var result RunResult

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("context error: %w", err)
	}

	now := time.Now()
	creators, err := s.outcomes.ActiveCreators(ctx, now.Add(-medianWindow))
	if err != nil {
		return result, fmt.Errorf("failed to list active creators: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, creatorID := range creators {
		g.Go(func() error {
			updated, err := s.runCreator(gctx, creatorID, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error("feedback_creator_failed", "creator_id", creatorID, "error", err)
				result.Errors = append(result.Errors, CreatorError{CreatorID: creatorID, Error: err.Error()})
				return nil
			}
			result.CreatorsProcessed++
			result.RowsUpdated += updated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	metrics.FeedbackRowsUpdated.Add(float64(result.RowsUpdated))
	logger.Info("feedback_run_complete",
		"creators", result.CreatorsProcessed,
		"rows_updated", result.RowsUpdated,
		"errors", len(result.Errors),
	)

	return result, nil
}

// pairDelta is the new evidence for one (creator, caption) pair.
type pairDelta struct {
	successes  float64
	failures   float64
	revenue    float64
	unlocks    int
	views      int
	sumEV      float64
	count      int
	lastSentAt time.Time
}

func (s *Service) runCreator(ctx context.Context, creatorID uint, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	// 1) creator median EV over 30 days is the success threshold
	monthOutcomes, err := s.outcomes.CreatorOutcomes(ctx, creatorID, now.Add(-medianWindow))
	if err != nil {
		return 0, fmt.Errorf("failed to load outcomes: %w", err)
	}
	if len(monthOutcomes) == 0 {
		return 0, nil
	}

	evs := make([]float64, 0, len(monthOutcomes))
	for _, o := range monthOutcomes {
		evs = append(evs, o.ExpectedValue)
	}
	medianEV := medianOf(evs)

	// 2) classify the last week's observations per caption
	updateCutoff := now.Add(-updateWindow)
	deltas := make(map[uint64]*pairDelta)
	for _, o := range monthOutcomes {
		if o.SentAt.Before(updateCutoff) {
			continue
		}

		d, ok := deltas[o.CaptionID]
		if !ok {
			d = &pairDelta{}
			deltas[o.CaptionID] = d
		}

		if o.ExpectedValue > medianEV {
			d.successes++
		} else {
			d.failures++
		}
		d.revenue += o.Earnings
		d.unlocks += o.UnlockCount
		d.views += o.ViewCount
		d.sumEV += o.ExpectedValue
		d.count++
		if o.SentAt.After(d.lastSentAt) {
			d.lastSentAt = o.SentAt
		}
	}

	// 3) decayed read-modify-write per pair
	decay := decayFactor(s.cfg.DecayHalfLifeDays, s.cfg.UpdatesPerDay)
	updated := 0
	for captionID, d := range deltas {
		err := s.stats.UpdatePairAtomic(ctx, creatorID, captionID, func(st *domain.BanditStat) {
			applyDelta(st, d, decay)
		})
		if err != nil {
			return updated, fmt.Errorf("failed to update stat for caption %d: %w", captionID, err)
		}
		updated++
	}

	// 4) percentiles relative to the creator's other captions
	if updated > 0 {
		if err := s.recomputePercentiles(ctx, creatorID); err != nil {
			return updated, fmt.Errorf("failed to recompute percentiles: %w", err)
		}
	}

	return updated, nil
}

// applyDelta folds new evidence into a stat row: decay old counts, add new
// ones, then refresh the derived fields.
func applyDelta(st *domain.BanditStat, d *pairDelta, decay float64) {
	st.Successes = st.Successes*decay + d.successes
	st.Failures = st.Failures*decay + d.failures

	bounds := bandit.WilsonBounds(st.Successes, st.Failures)
	st.ConfidenceLower = bounds.Lower
	st.ConfidenceUpper = bounds.Upper
	st.ExplorationScore = bounds.ExplorationBonus

	st.TotalObservations += d.count
	st.TotalRevenue += d.revenue

	if d.views > 0 {
		rate := float64(d.unlocks) / float64(d.views)
		if st.AvgConversionRate == 0 {
			st.AvgConversionRate = rate
		} else {
			st.AvgConversionRate = st.AvgConversionRate*decay + rate*(1-decay)
		}
	}
	if d.count > 0 {
		avgEV := d.sumEV / float64(d.count)
		if st.AvgExpectedValue == 0 {
			st.AvgExpectedValue = avgEV
		} else {
			st.AvgExpectedValue = st.AvgExpectedValue*decay + avgEV*(1-decay)
		}
	}

	if !d.lastSentAt.IsZero() {
		t := d.lastSentAt
		st.LastUsedAt = &t
	}
}

// recomputePercentiles ranks each caption by its posterior success rate
// against the creator's other captions.
func (s *Service) recomputePercentiles(ctx context.Context, creatorID uint) error {
	stats, err := s.stats.StatsForCreator(ctx, creatorID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}

	rate := func(st domain.BanditStat) float64 {
		n := st.Successes + st.Failures
		if n == 0 {
			return 0
		}
		return st.Successes / n
	}

	percentiles := make(map[uint64]int, len(stats))
	for _, st := range stats {
		below := 0
		for _, other := range stats {
			if other.CaptionID != st.CaptionID && rate(other) < rate(st) {
				below++
			}
		}
		if len(stats) == 1 {
			percentiles[st.CaptionID] = 50
		} else {
			percentiles[st.CaptionID] = below * 100 / (len(stats) - 1)
		}
	}

	return s.stats.SavePercentiles(ctx, creatorID, percentiles)
}
