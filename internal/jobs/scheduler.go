package jobs

import (
	"context"
	"sync"
	"time"

	"promoPilot/pkg/config"
	"promoPilot/pkg/logger"
)

// Scheduler drives the feedback loop and the lock sweeper on fixed
// intervals. Both tasks are retryable: a timed-out run leaves partial
// progress and the next tick continues from there.
type Scheduler struct {
	cfg      config.JobsConfig
	feedback func(ctx context.Context) error
	sweep    func(ctx context.Context)

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewScheduler(
	cfg config.JobsConfig,
	feedback func(ctx context.Context) error,
	sweep func(ctx context.Context),
) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		feedback: feedback,
		sweep:    sweep,
	}
}

// Start launches both loops. They run until Stop.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(2)
	go s.runFeedbackLoop(ctx)
	go s.runSweepLoop(ctx)

	logger.Info("background_jobs_started",
		"feedback_interval", s.cfg.FeedbackInterval.String(),
		"sweep_interval", s.cfg.SweepInterval.String(),
	)
}

// Stop cancels the loops and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	logger.Info("background_jobs_stopped")
}

func (s *Scheduler) runFeedbackLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.FeedbackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// each run gets its own deadline shorter than the interval
			runCtx, cancel := context.WithTimeout(ctx, s.cfg.FeedbackInterval/2)
			if err := s.feedback(runCtx); err != nil {
				logger.Error("feedback_run_failed", "error", err)
			}
			cancel()
		}
	}
}

func (s *Scheduler) runSweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, s.cfg.SweepInterval/2)
			s.sweep(runCtx)
			cancel()
		}
	}
}
