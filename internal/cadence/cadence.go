package cadence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/store"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

// MaxAutomatedAttempts is how many system-paced attempts are made before a
// human has to decide what happens to the prospect.
const MaxAutomatedAttempts = 4

// Interval is one row of the system-paced cadence table: how many business
// days to wait after an attempt, and which channel to suggest next.
type Interval struct {
	MinDays int
	MaxDays int
	Channel domain.Channel
}

// intervals maps the attempt number just made to the wait before the next
// touch. The gaps widen as attempts accumulate; the channel rotates off
// calls once two have gone unanswered.
var intervals = map[int]Interval{
	1: {MinDays: 3, MaxDays: 5, Channel: domain.ChannelCall},
	2: {MinDays: 5, MaxDays: 7, Channel: domain.ChannelCall},
	3: {MinDays: 7, MaxDays: 10, Channel: domain.ChannelEmail},
	4: {MinDays: 10, MaxDays: 14, Channel: domain.ChannelCombo},
}

// IntervalForAttempt returns the cadence interval following the given attempt
// number. Past MaxAutomatedAttempts it returns ErrManualDecisionRequired: the
// system never schedules a fifth automated touch.
func IntervalForAttempt(attemptNumber int) (Interval, error) {
	if attemptNumber < 1 {
		return Interval{}, domain.NewValidationError("attempt_number", "attempt number must be at least 1")
	}
	iv, ok := intervals[attemptNumber]
	if !ok {
		return Interval{}, domain.ErrManualDecisionRequired
	}
	return iv, nil
}

// NextContactDate computes the next contact date after an attempt: the
// interval's minimum business days past the attempt date, per the calendar.
// The returned channel is the suggested one for the next touch.
func NextContactDate(cal Calendar, lastAttempt time.Time, attemptNumber int) (time.Time, domain.Channel, error) {
	iv, err := IntervalForAttempt(attemptNumber)
	if err != nil {
		return time.Time{}, "", err
	}
	return AddBusinessDays(cal, lastAttempt, iv.MinDays), iv.Channel, nil
}

// AttemptInput describes a contact attempt being recorded
type AttemptInput struct {
	// Channel is the channel used (call or email)
	Channel domain.Channel
	// Type tags the attempt as personal or automated
	Type domain.AttemptType
	// VoicemailLeft marks that a call attempt ended in voicemail. A
	// voicemail is part of the same attempt, not a second one.
	VoicemailLeft bool
	// Notes is a free-form annotation
	Notes string
	// OccurredAt overrides the attempt timestamp; defaults to now. The
	// next contact date is always computed from when the attempt actually
	// happened, so a missed follow-up does not compress the cadence.
	OccurredAt *time.Time
}

// AttemptResult reports the outcome of recording an attempt
type AttemptResult struct {
	// AttemptNumber is the prospect's attempt count after this attempt
	AttemptNumber int
	// NextContactAt is the newly scheduled follow-up, nil for prospect-paced
	// populations and when a manual decision is required
	NextContactAt *time.Time
	// NextChannel is the suggested channel for the next touch
	NextChannel domain.Channel
	// ManualDecisionRequired is set when the attempt cap is reached and the
	// follow-up has been cleared
	ManualDecisionRequired bool
}

// Calculator drives both cadences: the system-paced interval ladder for
// unengaged prospects and the prospect-paced explicit follow-ups for engaged
// ones. Like the lifecycle machine, every mutation commits atomically with
// its Activity row.
type Calculator struct {
	store store.Store
	clock adapter.Clock
	cal   Calendar
}

// NewCalculator creates a cadence calculator. cal may be nil to use the
// default weekend calendar.
func NewCalculator(st store.Store, clock adapter.Clock, cal Calendar) *Calculator {
	if cal == nil {
		cal = NewWeekendCalendar()
	}
	return &Calculator{store: st, clock: clock, cal: cal}
}

// RecordAttempt logs a contact attempt and advances the cadence. For
// unengaged prospects the next follow-up is computed from the attempt date;
// hitting the attempt cap clears the follow-up and flags a manual decision.
// Engaged prospects get the attempt logged but keep their explicit follow-up.
// Attempts against DNC prospects are rejected and logged.
func (c *Calculator) RecordAttempt(ctx context.Context, prospectID int64, in AttemptInput) (*AttemptResult, error) {
	if in.Channel != domain.ChannelCall && in.Channel != domain.ChannelEmail {
		return nil, domain.NewValidationError("channel", fmt.Sprintf("attempts are recorded per channel, got %q", in.Channel))
	}
	if in.Type == "" {
		in.Type = domain.AttemptPersonal
	}

	var result *AttemptResult
	err := c.store.WithinTransaction(ctx, func(tx store.Store) error {
		prospect, err := tx.GetProspect(ctx, prospectID)
		if err != nil {
			return err
		}
		if prospect == nil {
			return domain.ErrProspectNotFound
		}
		if prospect.Population == domain.PopulationDeadDNC {
			violation := &domain.DNCViolationError{ProspectID: prospectID, Operation: "record contact attempt"}
			logger.Error(violation, zap.Int64("prospect_id", prospectID), zap.String("channel", string(in.Channel)))
			return violation
		}

		occurredAt := c.clock.Now()
		if in.OccurredAt != nil {
			occurredAt = *in.OccurredAt
		}

		prospect.AttemptCount++
		prospect.LastContactAt = &occurredAt
		result = &AttemptResult{AttemptNumber: prospect.AttemptCount}

		if prospect.Population == domain.PopulationUnengaged {
			next, channel, err := NextContactDate(c.cal, occurredAt, prospect.AttemptCount)
			switch {
			case err == nil:
				prospect.FollowUpAt = &next
				result.NextContactAt = &next
				result.NextChannel = channel
			case err == domain.ErrManualDecisionRequired:
				prospect.FollowUpAt = nil
				result.ManualDecisionRequired = true
			default:
				return err
			}
		}

		prospect.UpdatedAt = occurredAt
		if err := tx.UpdateProspect(ctx, prospect); err != nil {
			return err
		}

		activityType := domain.ActivityCall
		if in.Channel == domain.ChannelEmail {
			activityType = domain.ActivityEmailSent
		} else if in.VoicemailLeft {
			activityType = domain.ActivityVoicemail
		}
		channel := in.Channel
		attemptType := in.Type
		meta, _ := json.Marshal(map[string]any{
			"attempt_number":  prospect.AttemptCount,
			"voicemail_left":  in.VoicemailLeft,
			"manual_decision": result.ManualDecisionRequired,
		})
		activity := &schema.Activity{
			ProspectID:  prospectID,
			Type:        activityType,
			Channel:     &channel,
			AttemptType: &attemptType,
			FollowUpSet: result.NextContactAt,
			Meta:        datatypes.JSON(meta),
			CreatedBy:   actorFor(in.Type),
			CreatedAt:   occurredAt,
		}
		if in.Notes != "" {
			notes := in.Notes
			activity.Notes = &notes
		}
		if err := tx.CreateActivity(ctx, activity); err != nil {
			return err
		}

		attemptsToday, err := tx.CountAttemptsOnDay(ctx, prospectID, occurredAt)
		if err != nil {
			return err
		}
		logger.Info("attempt recorded",
			zap.Int64("prospect_id", prospectID),
			zap.String("channel", string(in.Channel)),
			zap.Int("attempt_number", prospect.AttemptCount),
			zap.Int64("attempts_today", attemptsToday),
			zap.Bool("manual_decision_required", result.ManualDecisionRequired),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetFollowUp sets an explicit follow-up date, the prospect-paced cadence.
// The date cannot be in the past; DNC prospects cannot be scheduled.
func (c *Calculator) SetFollowUp(ctx context.Context, prospectID int64, at time.Time, note string) error {
	return c.store.WithinTransaction(ctx, func(tx store.Store) error {
		prospect, err := tx.GetProspect(ctx, prospectID)
		if err != nil {
			return err
		}
		if prospect == nil {
			return domain.ErrProspectNotFound
		}
		if prospect.Population == domain.PopulationDeadDNC {
			violation := &domain.DNCViolationError{ProspectID: prospectID, Operation: "set follow-up date"}
			logger.Error(violation, zap.Int64("prospect_id", prospectID))
			return violation
		}

		now := c.clock.Now()
		if at.Before(startOfDay(now)) {
			return domain.NewValidationError("follow_up_at", "follow-up date cannot be in the past")
		}

		prospect.FollowUpAt = &at
		prospect.UpdatedAt = now
		if err := tx.UpdateProspect(ctx, prospect); err != nil {
			return err
		}

		followUp := at
		activity := &schema.Activity{
			ProspectID:  prospectID,
			Type:        domain.ActivityReminder,
			FollowUpSet: &followUp,
			CreatedBy:   "user",
			CreatedAt:   now,
		}
		if note != "" {
			notes := note
			activity.Notes = &notes
		}
		return tx.CreateActivity(ctx, activity)
	})
}

// BulkSetFollowUp applies a follow-up date to every ID in the list.
// DNC-protected and missing prospects are skipped and counted instead of
// aborting the batch; skipped items write no Activity.
func (c *Calculator) BulkSetFollowUp(ctx context.Context, prospectIDs []int64, at time.Time, note string) (*domain.BulkResult, error) {
	result := &domain.BulkResult{SkipReason: make(map[int64]string)}
	for _, id := range prospectIDs {
		err := c.SetFollowUp(ctx, id, at, note)
		if err == nil {
			result.Applied = append(result.Applied, id)
			continue
		}
		skipReason, skip := domain.BulkSkipReason(err)
		if !skip {
			return result, fmt.Errorf("bulk follow-up failed at prospect %d: %w", id, err)
		}
		if skipReason != domain.SkipReasonDNC {
			logger.Warn("bulk follow-up skipped prospect",
				zap.Int64("prospect_id", id),
				zap.String("skip_reason", skipReason),
			)
		}
		result.Skipped = append(result.Skipped, id)
		result.SkipReason[id] = skipReason
	}
	return result, nil
}

// FindOrphans returns engaged prospects missing a follow-up date. An engaged
// prospect with no follow-up has fallen out of both cadences and will never
// surface in a queue on its own.
func (c *Calculator) FindOrphans(ctx context.Context) ([]int64, error) {
	ids, err := c.store.ListEngagedWithoutFollowUp(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned prospects: %w", err)
	}
	if len(ids) > 0 {
		logger.Warn("engaged prospects without follow-up dates", zap.Int("count", len(ids)), zap.Int64s("prospect_ids", ids))
	}
	return ids, nil
}

// IsOverdue reports whether a prospect's follow-up is at or before asOf.
// Prospects with no follow-up date are never overdue, only orphaned.
func IsOverdue(prospect *schema.Prospect, asOf time.Time) bool {
	return prospect.FollowUpAt != nil && !prospect.FollowUpAt.After(asOf)
}

func actorFor(t domain.AttemptType) string {
	if t == domain.AttemptAutomated {
		return "system"
	}
	return "user"
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
