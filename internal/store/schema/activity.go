package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/copperline/pipeline-core/internal/domain"
)

// Activity represents the activities table - the append-only audit trail.
// Every transition and contact attempt writes exactly one row here, inside
// the same transaction as the entity mutation; nothing else counts as proof
// that a change happened.
type Activity struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProspectID references the prospect this activity belongs to
	ProspectID int64 `gorm:"column:prospect_id;not null;index:idx_activities_prospect_created,priority:1"`
	// Type identifies the kind of activity
	Type domain.ActivityType `gorm:"column:type;not null;type:text"`
	// PopulationBefore is the population before the change, if any
	PopulationBefore *domain.Population `gorm:"column:population_before;type:text"`
	// PopulationAfter is the population after the change, if any
	PopulationAfter *domain.Population `gorm:"column:population_after;type:text"`
	// StageBefore is the engagement stage before the change, if any.
	// Tracked independently of population: a prospect can move on one
	// axis without moving on the other.
	StageBefore *domain.EngagementStage `gorm:"column:stage_before;type:text"`
	// StageAfter is the engagement stage after the change, if any
	StageAfter *domain.EngagementStage `gorm:"column:stage_after;type:text"`
	// Channel is the contact channel for attempt activities
	Channel *domain.Channel `gorm:"column:channel;type:text"`
	// AttemptType tags attempts as personal or automated
	AttemptType *domain.AttemptType `gorm:"column:attempt_type;type:text"`
	// FollowUpSet records the follow-up date set by this activity
	FollowUpSet *time.Time `gorm:"column:follow_up_set;type:timestamptz"`
	// Notes is the free-form audit payload; opaque to the state machine
	Notes *string `gorm:"column:notes;type:text"`
	// Meta holds structured context about the change as JSON
	Meta datatypes.JSON `gorm:"column:meta;type:jsonb"`
	// CreatedBy records the actor: user or system
	CreatedBy string `gorm:"column:created_by;not null;type:text;default:user"`
	// CreatedAt is the timestamp when this activity was logged
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz;index:idx_activities_prospect_created,priority:2"`

	// Associations
	Prospect Prospect `gorm:"foreignKey:ProspectID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Activity model
func (Activity) TableName() string {
	return "activities"
}
