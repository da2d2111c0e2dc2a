package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/messaging"
	"github.com/copperline/pipeline-core/internal/store"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

// DNCReversalWindow is how long after entering dead_dnc a transition back to
// the prior population remains possible. After it elapses DNC is absolute.
const DNCReversalWindow = 24 * time.Hour

type pair struct {
	from domain.Population
	to   domain.Population
}

// validTransitions is the explicit set of allowed population moves. DNC and
// closed_won have no outbound entries; the 24h DNC reversal is handled
// separately in ApplyTransition because it depends on time, not the pair.
var validTransitions = map[pair]struct{}{
	// from broken
	{domain.PopulationBroken, domain.PopulationUnengaged}: {},
	{domain.PopulationBroken, domain.PopulationDeadDNC}:   {},
	// from unengaged
	{domain.PopulationUnengaged, domain.PopulationBroken}:  {},
	{domain.PopulationUnengaged, domain.PopulationEngaged}: {},
	{domain.PopulationUnengaged, domain.PopulationParked}:  {},
	{domain.PopulationUnengaged, domain.PopulationDeadDNC}: {},
	{domain.PopulationUnengaged, domain.PopulationLost}:    {},
	// from engaged
	{domain.PopulationEngaged, domain.PopulationParked}:    {},
	{domain.PopulationEngaged, domain.PopulationDeadDNC}:   {},
	{domain.PopulationEngaged, domain.PopulationLost}:      {},
	{domain.PopulationEngaged, domain.PopulationClosedWon}: {},
	// from parked
	{domain.PopulationParked, domain.PopulationUnengaged}: {},
	{domain.PopulationParked, domain.PopulationDeadDNC}:   {},
	// from lost: manual resurrection only
	{domain.PopulationLost, domain.PopulationUnengaged}: {},
	// from partnership
	{domain.PopulationPartnership, domain.PopulationUnengaged}: {},
	{domain.PopulationPartnership, domain.PopulationEngaged}:   {},
}

// validStageTransitions is the forward-only engagement-stage chain
var validStageTransitions = map[[2]domain.EngagementStage]struct{}{
	{domain.StagePreDemo, domain.StageDemoScheduled}:  {},
	{domain.StageDemoScheduled, domain.StagePostDemo}: {},
	{domain.StagePostDemo, domain.StageClosing}:       {},
}

// CanTransition reports whether a population move is in the valid set.
// It is a pure membership check; the time-bound DNC reversal is not
// represented here.
func CanTransition(from, to domain.Population) bool {
	if from == to {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	_, ok := validTransitions[pair{from, to}]
	return ok
}

// CanTransitionStage reports whether an engagement-stage move is valid
func CanTransitionStage(from, to domain.EngagementStage) bool {
	_, ok := validStageTransitions[[2]domain.EngagementStage{from, to}]
	return ok
}

// AvailableTransitions returns the populations reachable from the given one
func AvailableTransitions(from domain.Population) []domain.Population {
	var targets []domain.Population
	for _, to := range domain.Populations() {
		if CanTransition(from, to) {
			targets = append(targets, to)
		}
	}
	return targets
}

// TransitionOptions carries the optional inputs of a transition
type TransitionOptions struct {
	// ToStage sets the engagement stage when entering engaged; defaults to pre_demo
	ToStage *domain.EngagementStage
	// FollowUpAt sets the follow-up date; required when entering engaged
	// unless the prospect already has one (no orphans)
	FollowUpAt *time.Time
	// ParkedMonth sets the reactivation bucket when parking; defaults to next month
	ParkedMonth *string
	// LostReason and LostCompetitor annotate a move to lost
	LostReason     *domain.LostReason
	LostCompetitor *string
	// DealValue and CloseNotes annotate a move to closed_won
	DealValue  *float64
	CloseNotes *string
	// System marks the transition as made by automation rather than a user
	System bool
}

// Machine applies lifecycle transitions. It is the only sanctioned write
// path for population and stage fields; every mutation commits atomically
// with its audit Activity row.
type Machine struct {
	store  store.Store
	clock  adapter.Clock
	events messaging.Publisher
}

// NewMachine creates a lifecycle machine. events may be nil when no broker
// is configured.
func NewMachine(st store.Store, clock adapter.Clock, events messaging.Publisher) *Machine {
	return &Machine{store: st, clock: clock, events: events}
}

// ApplyTransition validates and applies a population transition, appending
// the audit Activity in the same transaction. Invalid moves return
// InvalidTransitionError with zero store mutation; moves out of DNC outside
// the 24h grace window return DNCViolationError and are always logged.
func (m *Machine) ApplyTransition(ctx context.Context, prospectID int64, to domain.Population, reason string, opts TransitionOptions) error {
	if !domain.IsValidPopulation(to) {
		return domain.NewValidationError("population", fmt.Sprintf("unknown population %q", to))
	}

	var event *messaging.TransitionEvent
	err := m.store.WithinTransaction(ctx, func(tx store.Store) error {
		prospect, err := tx.GetProspect(ctx, prospectID)
		if err != nil {
			return err
		}
		if prospect == nil {
			return domain.ErrProspectNotFound
		}

		from := prospect.Population
		now := m.clock.Now()

		if from == to {
			return &domain.InvalidTransitionError{ProspectID: prospectID, From: from, To: to, AlreadyInState: true}
		}

		if from == domain.PopulationDeadDNC {
			if err := m.checkDNCReversal(prospect, to, reason, now); err != nil {
				logger.Error(err, zap.Int64("prospect_id", prospectID), zap.String("to", string(to)))
				return err
			}
		} else if !CanTransition(from, to) {
			return &domain.InvalidTransitionError{ProspectID: prospectID, From: from, To: to}
		}

		stageBefore := prospect.EngagementStage
		if err := m.mutate(prospect, to, reason, now, opts); err != nil {
			return err
		}
		if err := tx.UpdateProspect(ctx, prospect); err != nil {
			return err
		}

		notes := reason
		if notes == "" {
			notes = fmt.Sprintf("transition: %s -> %s", from, to)
		}
		actor := "user"
		if opts.System {
			actor = "system"
		}
		activity := &schema.Activity{
			ProspectID:       prospectID,
			Type:             domain.ActivityStatusChange,
			PopulationBefore: &from,
			PopulationAfter:  &to,
			StageBefore:      stageBefore,
			StageAfter:       prospect.EngagementStage,
			FollowUpSet:      prospect.FollowUpAt,
			Notes:            &notes,
			CreatedBy:        actor,
			CreatedAt:        now,
		}
		if err := tx.CreateActivity(ctx, activity); err != nil {
			return err
		}

		event = &messaging.TransitionEvent{
			ProspectID:  prospectID,
			From:        from,
			To:          to,
			StageBefore: stageBefore,
			StageAfter:  prospect.EngagementStage,
			Reason:      reason,
			Actor:       actor,
			OccurredAt:  now,
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("prospect transitioned",
		zap.Int64("prospect_id", prospectID),
		zap.String("from", string(event.From)),
		zap.String("to", string(to)),
		zap.String("reason", reason),
	)
	m.publish(ctx, event)
	return nil
}

// checkDNCReversal enforces the only path out of dead_dnc: back to the prior
// population, with a reason, within DNCReversalWindow of entering.
func (m *Machine) checkDNCReversal(prospect *schema.Prospect, to domain.Population, reason string, now time.Time) error {
	if prospect.DeadAt == nil || now.Sub(*prospect.DeadAt) > DNCReversalWindow {
		return &domain.DNCViolationError{ProspectID: prospect.ID, Operation: "transition out of dead_dnc after grace window"}
	}
	if prospect.PriorPopulation == nil || to != *prospect.PriorPopulation {
		return &domain.DNCViolationError{ProspectID: prospect.ID, Operation: fmt.Sprintf("reversal target %s is not the prior population", to)}
	}
	if reason == "" {
		return domain.NewValidationError("reason", "a reason is required to reverse a DNC transition")
	}
	return nil
}

// mutate applies the field changes of a transition to the prospect in memory
func (m *Machine) mutate(prospect *schema.Prospect, to domain.Population, reason string, now time.Time, opts TransitionOptions) error {
	from := prospect.Population

	switch to {
	case domain.PopulationEngaged:
		stage := domain.StagePreDemo
		if opts.ToStage != nil {
			if !domain.IsValidStage(*opts.ToStage) {
				return domain.NewValidationError("stage", fmt.Sprintf("unknown stage %q", *opts.ToStage))
			}
			stage = *opts.ToStage
		}
		prospect.EngagementStage = &stage

		// Every engaged prospect carries a follow-up date. Entering without
		// one and without supplying one is rejected, not silently allowed.
		if opts.FollowUpAt != nil {
			if opts.FollowUpAt.Before(startOfDay(now)) {
				return domain.NewValidationError("follow_up_at", "follow-up date cannot be in the past")
			}
			prospect.FollowUpAt = opts.FollowUpAt
		} else if prospect.FollowUpAt == nil {
			return domain.NewValidationError("follow_up_at", "entering engaged requires a follow-up date")
		}

	case domain.PopulationParked:
		prospect.EngagementStage = nil
		prospect.FollowUpAt = nil
		if opts.ParkedMonth != nil {
			prospect.ParkedMonth = opts.ParkedMonth
		} else if prospect.ParkedMonth == nil {
			next := nextMonth(now)
			prospect.ParkedMonth = &next
		}

	case domain.PopulationDeadDNC:
		prospect.EngagementStage = nil
		prospect.FollowUpAt = nil
		prior := from
		prospect.PriorPopulation = &prior
		deadReason := domain.DeadDNCRequest
		prospect.DeadReason = &deadReason
		deadAt := now
		prospect.DeadAt = &deadAt

	case domain.PopulationLost:
		prospect.EngagementStage = nil
		prospect.FollowUpAt = nil
		prospect.LostReason = opts.LostReason
		prospect.LostCompetitor = opts.LostCompetitor
		lostAt := now
		prospect.LostAt = &lostAt

	case domain.PopulationClosedWon:
		prospect.EngagementStage = nil
		prospect.FollowUpAt = nil
		prospect.DealValue = opts.DealValue
		prospect.CloseNotes = opts.CloseNotes
		closedAt := now
		prospect.ClosedAt = &closedAt

	default:
		// broken, unengaged, partnership: plain bucket moves.
		// Stage is cleared on any exit from engaged; re-entry starts at
		// pre_demo (the Activity trail keeps the history).
		prospect.EngagementStage = nil
	}

	if from == domain.PopulationDeadDNC {
		// Reversal within the grace window: clear the DNC bookkeeping.
		prospect.PriorPopulation = nil
		prospect.DeadReason = nil
		prospect.DeadAt = nil
	}
	if from == domain.PopulationParked && to != domain.PopulationParked {
		prospect.ParkedMonth = nil
	}

	prospect.Population = to
	prospect.UpdatedAt = now
	return nil
}

// TransitionStage moves a prospect along the engagement-stage chain. The
// prospect must be engaged; stage moves log an Activity with both axes.
func (m *Machine) TransitionStage(ctx context.Context, prospectID int64, toStage domain.EngagementStage, reason string) error {
	if !domain.IsValidStage(toStage) {
		return domain.NewValidationError("stage", fmt.Sprintf("unknown stage %q", toStage))
	}

	var event *messaging.TransitionEvent
	err := m.store.WithinTransaction(ctx, func(tx store.Store) error {
		prospect, err := tx.GetProspect(ctx, prospectID)
		if err != nil {
			return err
		}
		if prospect == nil {
			return domain.ErrProspectNotFound
		}

		if prospect.Population != domain.PopulationEngaged {
			return &domain.InvalidStageTransitionError{ProspectID: prospectID, Population: prospect.Population, To: toStage}
		}

		from := domain.StagePreDemo
		if prospect.EngagementStage != nil {
			from = *prospect.EngagementStage
		}
		if from == toStage {
			// Already there; nothing to record.
			return nil
		}
		if !CanTransitionStage(from, toStage) {
			return &domain.InvalidStageTransitionError{ProspectID: prospectID, Population: prospect.Population, From: from, To: toStage}
		}

		now := m.clock.Now()
		prospect.EngagementStage = &toStage
		prospect.UpdatedAt = now
		if err := tx.UpdateProspect(ctx, prospect); err != nil {
			return err
		}

		notes := reason
		if notes == "" {
			notes = fmt.Sprintf("stage: %s -> %s", from, toStage)
		}
		engaged := domain.PopulationEngaged
		activity := &schema.Activity{
			ProspectID:       prospectID,
			Type:             domain.ActivityStatusChange,
			PopulationBefore: &engaged,
			PopulationAfter:  &engaged,
			StageBefore:      &from,
			StageAfter:       &toStage,
			Notes:            &notes,
			CreatedBy:        "user",
			CreatedAt:        now,
		}
		if err := tx.CreateActivity(ctx, activity); err != nil {
			return err
		}

		event = &messaging.TransitionEvent{
			ProspectID:  prospectID,
			From:        engaged,
			To:          engaged,
			StageBefore: &from,
			StageAfter:  &toStage,
			Reason:      reason,
			Actor:       "user",
			OccurredAt:  now,
		}
		return nil
	})
	if err != nil {
		return err
	}

	if event != nil {
		logger.Info("engagement stage changed",
			zap.Int64("prospect_id", prospectID),
			zap.String("to_stage", string(toStage)),
		)
		m.publish(ctx, event)
	}
	return nil
}

// BulkTransition applies a population transition to every ID in the list.
// DNC-protected, invalid, already-in-state, and missing prospects are
// skipped and counted instead of aborting the batch; skipped items write no
// Activity. Only store-level failures abort.
func (m *Machine) BulkTransition(ctx context.Context, prospectIDs []int64, to domain.Population, reason string, opts TransitionOptions) (*domain.BulkResult, error) {
	result := &domain.BulkResult{SkipReason: make(map[int64]string)}
	for _, id := range prospectIDs {
		err := m.ApplyTransition(ctx, id, to, reason, opts)
		if err == nil {
			result.Applied = append(result.Applied, id)
			continue
		}
		skipReason, skip := domain.BulkSkipReason(err)
		if !skip {
			return result, fmt.Errorf("bulk transition failed at prospect %d: %w", id, err)
		}
		if skipReason != domain.SkipReasonDNC {
			// DNC violations are already logged where they are raised
			logger.Warn("bulk transition skipped prospect",
				zap.Int64("prospect_id", id),
				zap.String("to", string(to)),
				zap.String("skip_reason", skipReason),
			)
		}
		result.Skipped = append(result.Skipped, id)
		result.SkipReason[id] = skipReason
	}
	return result, nil
}

func (m *Machine) publish(ctx context.Context, event *messaging.TransitionEvent) {
	if m.events == nil || event == nil {
		return
	}
	if err := m.events.PublishTransition(ctx, event); err != nil {
		logger.Error(err, zap.Int64("prospect_id", event.ProspectID), zap.String("event", "transition"))
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nextMonth(t time.Time) string {
	year, month := t.Year(), int(t.Month())+1
	if month > 12 {
		month = 1
		year++
	}
	return domain.ParkedMonth(year, month)
}
