// Package research runs the background lookup queue for broken prospects.
// Lookups are decoupled from the state machine: workers claim pending tasks,
// call the external researcher with retries, and land findings on the task
// row. Applying findings to the lifecycle is a separate step through the
// sanctioned transition API, so a slow or failed lookup never blocks an
// interactive transition.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/lifecycle"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/store"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

const (
	// cycleInterval is how long the worker sleeps when the queue is empty
	cycleInterval = 5 * time.Minute
	// maxLookupAttempts is how many times a task is retried before failing
	maxLookupAttempts = 3
)

// WorkerConfig holds configuration for the research worker
type WorkerConfig struct {
	BatchSize      int // tasks to claim per cycle
	WorkerPoolSize int // concurrent lookups
}

// Worker drains the research task queue
type Worker struct {
	config     WorkerConfig
	store      store.Store
	machine    *lifecycle.Machine
	researcher Researcher
	clock      adapter.Clock
	pool       pond.Pool
	running    atomic.Bool
	stopChan   chan struct{}
	stoppedCh  chan struct{}
}

// NewWorker creates a research worker
func NewWorker(config WorkerConfig, st store.Store, machine *lifecycle.Machine, researcher Researcher, clock adapter.Clock) *Worker {
	return &Worker{
		config:     config,
		store:      st,
		machine:    machine,
		researcher: researcher,
		clock:      clock,
		stopChan:   make(chan struct{}),
		stoppedCh:  make(chan struct{}),
	}
}

// Name returns the worker's name
func (w *Worker) Name() string {
	return "research-worker"
}

// Start begins the worker's main loop, draining pending tasks until the
// context is canceled or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return fmt.Errorf("research worker already running")
	}
	defer func() {
		w.running.Store(false)
		close(w.stoppedCh)
	}()

	logger.Info("starting research worker",
		zap.Int("batch_size", w.config.BatchSize),
		zap.Int("worker_pool_size", w.config.WorkerPoolSize),
	)

	w.pool = pond.NewPool(
		w.config.WorkerPoolSize,
		pond.WithQueueSize(w.config.BatchSize),
		pond.WithContext(ctx),
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("research worker stopping due to context cancellation", zap.Error(ctx.Err()))
			w.cleanup()
			return nil
		case <-w.stopChan:
			logger.Info("research worker stop requested")
			w.cleanup()
			return nil
		default:
			processed, err := w.RunCycle(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error(err)
			}
			if processed == 0 {
				w.sleep(ctx, cycleInterval)
			}
		}
	}
}

func (w *Worker) cleanup() {
	if w.pool != nil {
		w.pool.StopAndWait()
	}
}

// Stop gracefully stops the worker with timeout support
func (w *Worker) Stop(ctx context.Context) error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.Info("stopping research worker")
	close(w.stopChan)

	select {
	case <-w.stoppedCh:
		logger.Info("research worker stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.Warn("research worker stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RunCycle claims one batch of pending tasks, runs the lookups concurrently,
// and applies completed findings. Returns how many tasks were claimed. Safe
// to call directly for a one-shot drain (the nightly cycle does this).
func (w *Worker) RunCycle(ctx context.Context) (int, error) {
	// No provider configured: leave pending tasks in the queue untouched
	if w.researcher == nil {
		return 0, nil
	}

	tasks, err := w.store.ListResearchTasks(ctx, schema.ResearchPending, w.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending research tasks: %w", err)
	}

	if len(tasks) == 0 {
		return 0, nil
	}

	logger.Info("research cycle starting", zap.Int("tasks", len(tasks)))

	pool := w.pool
	if pool == nil {
		pool = pond.NewPool(w.config.WorkerPoolSize, pond.WithContext(ctx))
	}
	group := pool.NewGroup()
	for _, task := range tasks {
		task := task
		group.Submit(func() {
			if err := w.processTask(ctx, task); err != nil {
				logger.Error(err, zap.Int64("task_id", task.ID), zap.Int64("prospect_id", task.ProspectID))
			}
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err)
	}

	return len(tasks), nil
}

// processTask runs one lookup with retries and lands the outcome on the task
func (w *Worker) processTask(ctx context.Context, task *schema.ResearchTask) error {
	now := w.clock.Now()
	task.Status = schema.ResearchInProgress
	task.Attempts++
	task.LastAttemptAt = &now
	task.UpdatedAt = now
	if err := w.store.UpdateResearchTask(ctx, task); err != nil {
		return fmt.Errorf("failed to claim research task: %w", err)
	}

	prospect, err := w.store.GetProspect(ctx, task.ProspectID)
	if err != nil {
		return err
	}
	if prospect == nil {
		return w.failTask(ctx, task, fmt.Errorf("prospect %d no longer exists", task.ProspectID))
	}
	if prospect.Population == domain.PopulationDeadDNC {
		// Researching a DNC prospect is contact preparation; refuse and log
		violation := &domain.DNCViolationError{ProspectID: prospect.ID, Operation: "research lookup"}
		logger.Error(violation, zap.Int64("prospect_id", prospect.ID))
		return w.failTask(ctx, task, violation)
	}

	company, err := w.store.GetCompany(ctx, prospect.CompanyID)
	if err != nil {
		return err
	}

	findings, err := w.lookupWithRetry(ctx, prospect, company)
	if err != nil {
		if task.Attempts >= maxLookupAttempts {
			return w.failTask(ctx, task, err)
		}
		// Back to pending for a later cycle
		task.Status = schema.ResearchPending
		task.UpdatedAt = w.clock.Now()
		return w.store.UpdateResearchTask(ctx, task)
	}

	raw, err := json.Marshal(findings)
	if err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}
	task.Findings = datatypes.JSON(raw)
	task.Status = schema.ResearchCompleted
	task.UpdatedAt = w.clock.Now()
	if err := w.store.UpdateResearchTask(ctx, task); err != nil {
		return fmt.Errorf("failed to store research findings: %w", err)
	}

	return w.applyFindings(ctx, prospect, findings)
}

// lookupWithRetry calls the researcher with exponential backoff
func (w *Worker) lookupWithRetry(ctx context.Context, prospect *schema.Prospect, company *schema.Company) (*Findings, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 2 * time.Minute

	var findings *Findings
	operation := func() error {
		var err error
		findings, err = w.researcher.Lookup(ctx, prospect, company)
		return err
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("research lookup failed, retrying",
			zap.Error(err),
			zap.Int64("prospect_id", prospect.ID),
			zap.Duration("next_retry_in", next),
		)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, fmt.Errorf("research lookup exhausted retries: %w", err)
	}
	return findings, nil
}

// applyFindings lands discovered contact data through the sanctioned APIs:
// contact methods and the research Activity commit together, and a repaired
// broken prospect is promoted through the state machine, never by a direct
// population write.
func (w *Worker) applyFindings(ctx context.Context, prospect *schema.Prospect, findings *Findings) error {
	if findings.Empty() {
		return nil
	}

	now := w.clock.Now()
	err := w.store.WithinTransaction(ctx, func(tx store.Store) error {
		existing, err := tx.GetContactMethods(ctx, prospect.ID)
		if err != nil {
			return err
		}
		known := make(map[string]struct{}, len(existing))
		for _, m := range existing {
			known[string(m.Type)+":"+m.Value] = struct{}{}
		}

		source := findings.Source
		if findings.Email != "" {
			value := domain.NormalizeEmail(findings.Email)
			if _, ok := known[string(domain.ContactEmail)+":"+value]; !ok {
				method := &schema.ContactMethod{
					ProspectID: prospect.ID,
					Type:       domain.ContactEmail,
					Value:      value,
					CreatedAt:  now,
				}
				if source != "" {
					method.Source = &source
				}
				if err := tx.CreateContactMethod(ctx, method); err != nil {
					return err
				}
			}
		}
		if findings.Phone != "" {
			value := domain.NormalizePhone(findings.Phone)
			if _, ok := known[string(domain.ContactPhone)+":"+value]; !ok {
				method := &schema.ContactMethod{
					ProspectID: prospect.ID,
					Type:       domain.ContactPhone,
					Value:      value,
					CreatedAt:  now,
				}
				if source != "" {
					method.Source = &source
				}
				if err := tx.CreateContactMethod(ctx, method); err != nil {
					return err
				}
			}
		}

		updated := false
		if prospect.Title == nil && findings.Title != "" {
			title := findings.Title
			prospect.Title = &title
			updated = true
		}
		if updated {
			prospect.UpdatedAt = now
			if err := tx.UpdateProspect(ctx, prospect); err != nil {
				return err
			}
		}

		notes := fmt.Sprintf("research findings applied (source: %s)", firstNonEmpty(findings.Source, "unknown"))
		activity := &schema.Activity{
			ProspectID: prospect.ID,
			Type:       domain.ActivityResearch,
			Notes:      &notes,
			CreatedBy:  "system",
			CreatedAt:  now,
		}
		return tx.CreateActivity(ctx, activity)
	})
	if err != nil {
		return fmt.Errorf("failed to apply research findings: %w", err)
	}

	// Promote a repaired broken prospect once it has both channels
	if prospect.Population == domain.PopulationBroken {
		methods, err := w.store.GetContactMethods(ctx, prospect.ID)
		if err != nil {
			return err
		}
		hasEmail, hasPhone := false, false
		for _, m := range methods {
			switch m.Type {
			case domain.ContactEmail:
				hasEmail = true
			case domain.ContactPhone:
				hasPhone = true
			}
		}
		if hasEmail && hasPhone {
			err := w.machine.ApplyTransition(ctx, prospect.ID, domain.PopulationUnengaged,
				"contact data repaired by research", lifecycle.TransitionOptions{System: true})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Worker) failTask(ctx context.Context, task *schema.ResearchTask, cause error) error {
	logger.Warn("research task failed",
		zap.Int64("task_id", task.ID),
		zap.Int64("prospect_id", task.ProspectID),
		zap.Error(cause),
	)
	task.Status = schema.ResearchFailed
	task.UpdatedAt = w.clock.Now()
	return w.store.UpdateResearchTask(ctx, task)
}

// sleep waits for the duration but can be interrupted by context or Stop
func (w *Worker) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-w.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-w.stopChan:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
