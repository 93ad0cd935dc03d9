package bandit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"promoPilot/domain"
	"promoPilot/pkg/logger"
)

// ---- Repository interfaces ----

type CaptionRepository interface {
	// ListCandidates joins every caption with its bandit stat for the
	// creator, substituting cold-start defaults where no stat row exists.
	ListCandidates(ctx context.Context, creatorID uint) ([]domain.CaptionCandidate, error)
}

type ReservationReader interface {
	// ActiveCaptionIDs returns captions with an active reservation for the
	// creator created on or after since.
	ActiveCaptionIDs(ctx context.Context, creatorID uint, since time.Time) (map[uint64]struct{}, error)
}

type UsageReader interface {
	// RecentUsage returns the creator's sends since the given time, newest
	// first, with caption attributes attached.
	RecentUsage(ctx context.Context, creatorID uint, since time.Time) ([]domain.CaptionUsage, error)
}

type SelectionEventWriter interface {
	SaveEvents(ctx context.Context, events []domain.SelectionEvent) error
}

// ---- Usecase / Service ----

// SelectionService builds ranked, quota-filled caption slates for creators.
// Concurrent calls for different creators are independent; the only shared
// state is the seedable sampler, which is internally synchronized.
type SelectionService struct {
	captionRepo CaptionRepository
	resReader   ReservationReader
	usageReader UsageReader
	eventWriter SelectionEventWriter
	cfgRepo     ConfigRepository
	sampler     *Sampler
	defaultCfg  Config
}

func NewSelectionService(
	captionRepo CaptionRepository,
	resReader ReservationReader,
	usageReader UsageReader,
	eventWriter SelectionEventWriter,
	cfgRepo ConfigRepository,
	sampler *Sampler,
	defaultCfg Config,
) *SelectionService {
	return &SelectionService{
		captionRepo: captionRepo,
		resReader:   resReader,
		usageReader: usageReader,
		eventWriter: eventWriter,
		cfgRepo:     cfgRepo,
		sampler:     sampler,
		defaultCfg:  defaultCfg,
	}
}

// deadline check granularity while ranking a large pool
const deadlineCheckEvery = 64

// Select builds the slate for one creator. Under-fill is reported on the
// result, never as an error; "no good captions" cannot make this fail.
func (s *SelectionService) Select(ctx context.Context, req domain.SelectionRequest) (domain.SelectionResult, error) {
	result := domain.SelectionResult{CreatorID: req.CreatorID}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("context error: %w", err)
	}

	cfg := s.loadConfig(ctx, req.BehavioralSegment)
	now := time.Now()
	windowStart := now.Add(-cfg.Cooldown())
	budgetStart := now.Add(-budgetWindow)

	// usage feeds both the recency profile (cooldown window) and the weekly
	// budget counts (fixed week), so fetch whichever reaches further back
	fetchStart := windowStart
	if budgetStart.Before(fetchStart) {
		fetchStart = budgetStart
	}

	// 1) candidate pool
	candidates, err := s.captionRepo.ListCandidates(ctx, req.CreatorID)
	if err != nil {
		return result, fmt.Errorf("failed to load candidates: %w", err)
	}

	reserved, err := s.resReader.ActiveCaptionIDs(ctx, req.CreatorID, windowStart)
	if err != nil {
		return result, fmt.Errorf("failed to load active reservations: %w", err)
	}

	usage, err := s.usageReader.RecentUsage(ctx, req.CreatorID, fetchStart)
	if err != nil {
		return result, fmt.Errorf("failed to load recent usage: %w", err)
	}

	// 2) recency profile + weekly budget counts; empty history yields empty
	// sets, so cold creators rank through the same path
	profile := buildRecencyProfile(usageSince(usage, windowStart), cfg)
	weekly := countWeeklyUsage(usage, budgetStart)

	tid := TraceIDFromContext(ctx)
	logger.Debug("selection_start",
		"trace_id", tid,
		"creator_id", req.CreatorID,
		"segment", req.BehavioralSegment,
		"candidate_count", len(candidates),
		"reserved_count", len(reserved),
		"usage_count", len(usage),
	)

	// 3) score eligible candidates, honoring the request deadline: if time
	// runs out mid-ranking, rank what has been scored so far
	type scored struct {
		cand      domain.CaptionCandidate
		score     float64
		breakdown domain.ScoreBreakdown
	}
	byTier := make(map[string][]scored)
	var staleIDs []uint64

	deadline, hasDeadline := ctx.Deadline()

	for i, cand := range candidates {
		if hasDeadline && i%deadlineCheckEvery == 0 && time.Now().After(deadline) {
			logger.Warn("selection_deadline_hit",
				"trace_id", tid,
				"creator_id", req.CreatorID,
				"scored", i,
				"pool", len(candidates),
			)
			break
		}

		if !req.Restrictions.Allows(cand.Caption) {
			continue
		}
		if _, held := reserved[cand.Caption.ID]; held {
			continue
		}

		// stale stats degrade to the cold-start prior; selection proceeds
		if cand.Stat.TotalObservations > 0 && now.Sub(cand.Stat.LastUpdatedAt) > cfg.StaleAfter {
			staleIDs = append(staleIDs, cand.Caption.ID)
			cand.Stat = domain.DefaultStat(req.CreatorID, cand.Caption.ID)
		}

		score, breakdown, ok := s.scoreCandidate(cand, profile, weekly, req.BehavioralSegment, cfg)
		if !ok {
			continue
		}

		tier := cand.Caption.PriceTier
		byTier[tier] = append(byTier[tier], scored{cand: cand, score: score, breakdown: breakdown})
	}

	if len(staleIDs) > 0 {
		staleErr := &domain.StaleDataError{CreatorID: req.CreatorID, CaptionIDs: staleIDs}
		logger.Warn("selection_stale_stats", "trace_id", tid, "warning", staleErr.Error())
		result.StaleCaptionIDs = staleIDs
	}

	// 4) per-tier rank + quota fill
	for _, tier := range domain.AllTiers {
		quota := req.Quotas.For(tier)
		if quota <= 0 {
			continue
		}

		pool := byTier[tier]
		sort.Slice(pool, func(i, j int) bool {
			return pool[i].score > pool[j].score
		})

		take := quota
		if take > len(pool) {
			take = len(pool)
		}
		for i := 0; i < take; i++ {
			result.Selected = append(result.Selected, domain.SelectedCaption{
				CaptionID:   pool[i].cand.Caption.ID,
				PriceTier:   tier,
				Score:       pool[i].score,
				Diagnostics: pool[i].breakdown,
			})
		}

		if take < quota {
			underfill := &domain.InsufficientPoolError{Tier: tier, Requested: quota, Available: take}
			logger.Info("selection_underfill",
				"trace_id", tid,
				"creator_id", req.CreatorID,
				"detail", underfill.Error(),
			)
			result.UnderfilledTiers = append(result.UnderfilledTiers, tier)
		}
	}

	banditSlatesTotal.WithLabelValues(req.BehavioralSegment).Inc()

	// 5) append the served slate to the event log, best effort
	if s.eventWriter != nil && len(result.Selected) > 0 {
		events := make([]domain.SelectionEvent, 0, len(result.Selected))
		for _, sel := range result.Selected {
			events = append(events, domain.SelectionEvent{
				CreatorID:   req.CreatorID,
				CaptionID:   sel.CaptionID,
				PriceTier:   sel.PriceTier,
				Score:       sel.Score,
				Diagnostics: sel.Diagnostics.ToMap(),
			})
		}
		if err := s.eventWriter.SaveEvents(ctx, events); err != nil {
			logger.Error("selection_event_log_failed", "trace_id", tid, "error", err)
		}
	}

	return result, nil
}
