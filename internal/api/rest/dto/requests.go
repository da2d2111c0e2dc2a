package dto

import (
	"time"
)

// TransitionRequest asks for a population change on one prospect
type TransitionRequest struct {
	To             string     `json:"to" binding:"required"`
	Reason         string     `json:"reason"`
	Stage          *string    `json:"stage,omitempty"`
	FollowUpAt     *time.Time `json:"follow_up_at,omitempty"`
	ParkedMonth    *string    `json:"parked_month,omitempty"`
	LostReason     *string    `json:"lost_reason,omitempty"`
	LostCompetitor *string    `json:"lost_competitor,omitempty"`
	DealValue      *float64   `json:"deal_value,omitempty"`
	CloseNotes     *string    `json:"close_notes,omitempty"`
}

// BulkTransitionRequest asks for the same population change on many prospects
type BulkTransitionRequest struct {
	ProspectIDs []int64 `json:"prospect_ids" binding:"required,min=1"`
	TransitionRequest
}

// StageRequest asks for an engagement stage change
type StageRequest struct {
	To     string `json:"to" binding:"required"`
	Reason string `json:"reason"`
}

// FollowUpRequest schedules an explicit follow-up
type FollowUpRequest struct {
	At   time.Time `json:"at" binding:"required"`
	Note string    `json:"note"`
}

// BulkFollowUpRequest schedules the same follow-up on many prospects
type BulkFollowUpRequest struct {
	ProspectIDs []int64   `json:"prospect_ids" binding:"required,min=1"`
	At          time.Time `json:"at" binding:"required"`
	Note        string    `json:"note"`
}

// AttemptRequest records an outbound contact attempt
type AttemptRequest struct {
	Channel       string     `json:"channel" binding:"required"`
	Type          string     `json:"type"`
	VoicemailLeft bool       `json:"voicemail_left"`
	Notes         string     `json:"notes"`
	OccurredAt    *time.Time `json:"occurred_at,omitempty"`
}

// ImportRecordRequest is a single incoming row of an import batch
type ImportRecordRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	CompanyName string  `json:"company_name"`
	Title       *string `json:"title,omitempty"`
	State       *string `json:"state,omitempty"`
	Source      *string `json:"source,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// ImportRequest carries an import batch for analysis or commit
type ImportRequest struct {
	SourceName string                `json:"source_name" binding:"required"`
	Filename   string                `json:"filename"`
	Records    []ImportRecordRequest `json:"records" binding:"required,min=1"`
}
