// Package nightly runs the end-of-day maintenance cycle: parked prospects
// whose month has arrived come back to the active pipeline, engaged prospects
// without a follow-up get reported, scores are refreshed, and the research
// queue is drained. Each step records a checkpoint when it finishes so an
// interrupted run resumes where it left off instead of reapplying transitions.
package nightly

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/cadence"
	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/lifecycle"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/research"
	"github.com/copperline/pipeline-core/internal/scoring"
	"github.com/copperline/pipeline-core/internal/store"
)

// maxDrainPasses bounds the research drain so a queue that refills faster
// than it drains cannot hold the cycle open all night
const maxDrainPasses = 20

// Config holds configuration for the nightly cycle scheduler
type Config struct {
	RunHour  int            // local hour the cycle starts, default 2
	Location *time.Location // timezone for RunHour and checkpoint days, default UTC
}

// Cycle runs the nightly maintenance steps
type Cycle struct {
	config      Config
	store       store.Store
	checkpoints store.CheckpointStore
	machine     *lifecycle.Machine
	calc        *cadence.Calculator
	rescorer    *scoring.Rescorer
	research    *research.Worker
	clock       adapter.Clock
	running     atomic.Bool
	stopChan    chan struct{}
	stoppedCh   chan struct{}
}

// NewCycle creates a nightly cycle
func NewCycle(config Config, st store.Store, checkpoints store.CheckpointStore, machine *lifecycle.Machine,
	calc *cadence.Calculator, rescorer *scoring.Rescorer, researchWorker *research.Worker, clock adapter.Clock) *Cycle {
	if config.RunHour == 0 {
		config.RunHour = 2
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &Cycle{
		config:      config,
		store:       st,
		checkpoints: checkpoints,
		machine:     machine,
		calc:        calc,
		rescorer:    rescorer,
		research:    researchWorker,
		clock:       clock,
		stopChan:    make(chan struct{}),
		stoppedCh:   make(chan struct{}),
	}
}

// Name returns the worker's name
func (c *Cycle) Name() string {
	return "nightly-cycle"
}

// Start begins the scheduler loop, running one cycle per day at RunHour
// until the context is canceled or Stop is called.
func (c *Cycle) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return fmt.Errorf("nightly cycle already running")
	}
	defer func() {
		c.running.Store(false)
		close(c.stoppedCh)
	}()

	logger.Info("starting nightly cycle scheduler",
		zap.Int("run_hour", c.config.RunHour),
		zap.String("location", c.config.Location.String()),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("nightly cycle stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-c.stopChan:
			logger.Info("nightly cycle stop requested")
			return nil
		case <-c.clock.After(c.untilNextRun()):
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error(err)
			}
		}
	}
}

// Stop gracefully stops the scheduler with timeout support
func (c *Cycle) Stop(ctx context.Context) error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.Info("stopping nightly cycle")
	close(c.stopChan)

	select {
	case <-c.stoppedCh:
		logger.Info("nightly cycle stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.Warn("nightly cycle stop interrupted by context timeout")
		return ctx.Err()
	}
}

// untilNextRun returns the duration until the next scheduled run hour
func (c *Cycle) untilNextRun() time.Duration {
	now := c.clock.Now().In(c.config.Location)
	next := time.Date(now.Year(), now.Month(), now.Day(), c.config.RunHour, 0, 0, 0, c.config.Location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Run executes one full cycle. Checkpoints are keyed by the local calendar
// day, so rerunning after a crash skips the steps that already finished and
// a fresh day starts clean. Safe to call directly for a manual run.
func (c *Cycle) Run(ctx context.Context) error {
	now := c.clock.Now()
	day := now.In(c.config.Location).Format("2006-01-02")
	runID := ulid.MustNewDefault(now).String()

	logger.Info("nightly cycle starting",
		zap.String("run_id", runID),
		zap.String("day", day),
	)

	steps := []struct {
		name string
		fn   func(ctx context.Context) (string, error)
	}{
		{"park_reactivation", c.reactivateParked},
		{"orphan_report", c.reportOrphans},
		{"rescore", c.rescore},
		{"research_drain", c.drainResearch},
	}

	for _, step := range steps {
		key := fmt.Sprintf("nightly:%s:%s", day, step.name)
		prior, err := c.checkpoints.GetCheckpoint(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to read checkpoint for %s: %w", step.name, err)
		}
		if prior != "" {
			logger.Info("nightly step already completed, skipping",
				zap.String("run_id", runID),
				zap.String("step", step.name),
				zap.String("result", prior),
			)
			continue
		}

		result, err := step.fn(ctx)
		if err != nil {
			return fmt.Errorf("nightly step %s failed: %w", step.name, err)
		}
		if err := c.checkpoints.SetCheckpoint(ctx, key, result); err != nil {
			return fmt.Errorf("failed to checkpoint %s: %w", step.name, err)
		}
		logger.Info("nightly step completed",
			zap.String("run_id", runID),
			zap.String("step", step.name),
			zap.String("result", result),
		)
	}

	logger.Info("nightly cycle completed", zap.String("run_id", runID))
	return nil
}

// reactivateParked moves parked prospects whose month has arrived back to
// unengaged through the state machine
func (c *Cycle) reactivateParked(ctx context.Context) (string, error) {
	now := c.clock.Now().In(c.config.Location)
	month := domain.ParkedMonth(now.Year(), int(now.Month()))

	parked, err := c.store.ListParkedDue(ctx, month)
	if err != nil {
		return "", fmt.Errorf("failed to list parked prospects: %w", err)
	}

	applied, skipped := 0, 0
	for _, prospect := range parked {
		err := c.machine.ApplyTransition(ctx, prospect.ID, domain.PopulationUnengaged,
			"parked month reached", lifecycle.TransitionOptions{System: true})
		if err != nil {
			var invalid *domain.InvalidTransitionError
			if errors.As(err, &invalid) {
				// Moved out of parked by a user since the query; not ours anymore
				logger.Warn("parked reactivation skipped",
					zap.Int64("prospect_id", prospect.ID),
					zap.Error(err),
				)
				skipped++
				continue
			}
			return "", err
		}
		applied++
	}

	return fmt.Sprintf("reactivated=%d skipped=%d", applied, skipped), nil
}

// reportOrphans surfaces engaged prospects with no scheduled follow-up
func (c *Cycle) reportOrphans(ctx context.Context) (string, error) {
	ids, err := c.calc.FindOrphans(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("orphans=%d", len(ids)), nil
}

// rescore refreshes priority scores across the active populations
func (c *Cycle) rescore(ctx context.Context) (string, error) {
	count, err := c.rescorer.RescoreAll(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("rescored=%d", count), nil
}

// drainResearch runs research cycles until the pending queue is empty
func (c *Cycle) drainResearch(ctx context.Context) (string, error) {
	total := 0
	for pass := 0; pass < maxDrainPasses; pass++ {
		processed, err := c.research.RunCycle(ctx)
		if err != nil {
			return "", err
		}
		total += processed
		if processed == 0 {
			break
		}
	}
	return fmt.Sprintf("research_tasks=%d", total), nil
}
