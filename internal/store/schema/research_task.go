package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ResearchStatus represents the state of a background research task
type ResearchStatus string

const (
	// ResearchPending means the task is queued and not yet attempted
	ResearchPending ResearchStatus = "pending"
	// ResearchInProgress means a worker has claimed the task
	ResearchInProgress ResearchStatus = "in_progress"
	// ResearchCompleted means findings are stored and ready to apply
	ResearchCompleted ResearchStatus = "completed"
	// ResearchFailed means the lookup exhausted its retries
	ResearchFailed ResearchStatus = "failed"
)

// ResearchTask represents the research_tasks table - the queue of pending
// external lookups for broken prospects. Lookups run and land their findings
// here; applying findings to the lifecycle happens separately so a slow or
// failed lookup never blocks an interactive transition.
type ResearchTask struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProspectID references the prospect being researched
	ProspectID int64 `gorm:"column:prospect_id;not null;index"`
	// Priority orders the queue (higher runs first)
	Priority int `gorm:"column:priority;not null;default:0"`
	// Status is the task state
	Status ResearchStatus `gorm:"column:status;not null;type:text;default:pending;index"`
	// Attempts counts lookup attempts so far
	Attempts int `gorm:"column:attempts;not null;default:0"`
	// LastAttemptAt records when the last lookup ran
	LastAttemptAt *time.Time `gorm:"column:last_attempt_at;type:timestamptz"`
	// Findings holds lookup results as JSON, pending application
	Findings datatypes.JSON `gorm:"column:findings;type:jsonb"`
	// CreatedAt is the timestamp when the task was enqueued
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Prospect Prospect `gorm:"foreignKey:ProspectID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the ResearchTask model
func (ResearchTask) TableName() string {
	return "research_tasks"
}
