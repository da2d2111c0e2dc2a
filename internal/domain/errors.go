package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProspectNotFound is returned when a prospect lookup misses
	ErrProspectNotFound = errors.New("prospect not found")

	// ErrCompanyNotFound is returned when a company lookup misses
	ErrCompanyNotFound = errors.New("company not found")

	// ErrManualDecisionRequired is returned by the cadence calculator when an
	// attempt number has no automatic interval and a human must park,
	// continue, or kill the prospect
	ErrManualDecisionRequired = errors.New("manual decision required: park, continue, or kill")
)

// ValidationError indicates malformed caller input, e.g. a past-dated
// follow-up. Recoverable by correcting the input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidTransitionError indicates a lifecycle transition outside the valid
// set. AlreadyInState distinguishes "target equals current" from a genuinely
// illegal move.
type InvalidTransitionError struct {
	ProspectID     int64
	From           Population
	To             Population
	AlreadyInState bool
}

func (e *InvalidTransitionError) Error() string {
	if e.AlreadyInState {
		return fmt.Sprintf("prospect %d is already in population %s", e.ProspectID, e.To)
	}
	return fmt.Sprintf("invalid transition for prospect %d: %s -> %s", e.ProspectID, e.From, e.To)
}

// InvalidStageTransitionError indicates an engagement-stage move outside the
// forward chain, or a stage move attempted while not engaged.
type InvalidStageTransitionError struct {
	ProspectID int64
	Population Population
	From       EngagementStage
	To         EngagementStage
}

func (e *InvalidStageTransitionError) Error() string {
	if e.Population != PopulationEngaged {
		return fmt.Sprintf("prospect %d is not engaged (population=%s)", e.ProspectID, e.Population)
	}
	return fmt.Sprintf("invalid stage transition for prospect %d: %s -> %s", e.ProspectID, e.From, e.To)
}

// DNCViolationError indicates an attempt to move a record into or out of DNC
// outside the 24-hour grace window, or to contact/merge a DNC record. This
// error category is never swallowed: every code path that produces it also
// logs it.
type DNCViolationError struct {
	ProspectID int64
	Operation  string
}

func (e *DNCViolationError) Error() string {
	return fmt.Sprintf("DNC violation on prospect %d: %s", e.ProspectID, e.Operation)
}

// IsDNCViolation reports whether err is (or wraps) a DNCViolationError
func IsDNCViolation(err error) bool {
	var dnc *DNCViolationError
	return errors.As(err, &dnc)
}

// Skip reasons recorded in BulkResult.SkipReason
const (
	SkipReasonDNC               = "dnc"
	SkipReasonAlreadyInState    = "already_in_state"
	SkipReasonInvalidTransition = "invalid_transition"
	SkipReasonNotFound          = "not_found"
)

// BulkSkipReason classifies err as a per-item skip for bulk operations.
// DNC protection, invalid or redundant transitions, and missing prospects
// skip the item; any other error aborts the batch.
func BulkSkipReason(err error) (string, bool) {
	var (
		dnc   *DNCViolationError
		trans *InvalidTransitionError
	)
	switch {
	case errors.As(err, &dnc):
		return SkipReasonDNC, true
	case errors.As(err, &trans):
		if trans.AlreadyInState {
			return SkipReasonAlreadyInState, true
		}
		return SkipReasonInvalidTransition, true
	case errors.Is(err, ErrProspectNotFound):
		return SkipReasonNotFound, true
	}
	return "", false
}

// BulkResult reports the per-item outcome of a bulk operation. Rejected
// items are skipped and counted rather than aborting the batch; the caller
// always receives this breakdown, never a single pass/fail.
type BulkResult struct {
	Applied    []int64
	Skipped    []int64
	SkipReason map[int64]string
}
