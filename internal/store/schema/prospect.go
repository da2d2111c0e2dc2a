package schema

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/copperline/pipeline-core/internal/domain"
)

// Prospect represents the prospects table - the primary lifecycle entity.
// Population, engagement stage, and follow-up fields are mutated only
// through the lifecycle and cadence packages; prospects are never deleted.
//
// EngagementStage is only meaningful while Population is engaged; the
// lifecycle package clears it on exit. Go has no sum types, so the
// "engaged implies stage" invariant lives in the state machine rather
// than the schema.
type Prospect struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// CompanyID references the owning company
	CompanyID int64 `gorm:"column:company_id;not null;index"`
	// FirstName is the prospect's first name
	FirstName string `gorm:"column:first_name;not null;type:text"`
	// LastName is the prospect's last name
	LastName string `gorm:"column:last_name;not null;type:text"`
	// Title is the job title
	Title *string `gorm:"column:title;type:text"`
	// Population is the top-level pipeline bucket
	Population domain.Population `gorm:"column:population;not null;type:text;index:idx_prospects_population_follow_up,priority:1"`
	// EngagementStage is the sub-state while engaged, nil otherwise
	EngagementStage *domain.EngagementStage `gorm:"column:engagement_stage;type:text"`
	// FollowUpAt is the next scheduled contact (date+time granularity)
	FollowUpAt *time.Time `gorm:"column:follow_up_at;type:timestamptz;index:idx_prospects_population_follow_up,priority:2"`
	// LastContactAt is when the last attempt was made
	LastContactAt *time.Time `gorm:"column:last_contact_at;type:timestamptz"`
	// ParkedMonth is the YYYY-MM bucket a parked prospect reactivates in
	ParkedMonth *string `gorm:"column:parked_month;type:text;index"`
	// AttemptCount is the number of outbound attempts made
	AttemptCount int `gorm:"column:attempt_count;not null;default:0"`
	// Score is the 0-100 priority score
	Score int `gorm:"column:score;not null;default:0"`
	// DataConfidence is the 0-100 data quality score
	DataConfidence int `gorm:"column:data_confidence;not null;default:0"`
	// Source is the lead source
	Source *string `gorm:"column:source;type:text"`
	// PriorPopulation records the population held before entering DNC,
	// so a grace-window reversal can restore it
	PriorPopulation *domain.Population `gorm:"column:prior_population;type:text"`
	// DeadReason records why the prospect entered dead_dnc
	DeadReason *domain.DeadReason `gorm:"column:dead_reason;type:text"`
	// DeadAt records when the prospect entered dead_dnc; the 24h reversal
	// window is measured from this timestamp
	DeadAt *time.Time `gorm:"column:dead_at;type:timestamptz"`
	// LostReason records why the prospect was lost
	LostReason *domain.LostReason `gorm:"column:lost_reason;type:text"`
	// LostCompetitor names the competitor for lost_to_competitor
	LostCompetitor *string `gorm:"column:lost_competitor;type:text"`
	// LostAt records when the prospect was lost
	LostAt *time.Time `gorm:"column:lost_at;type:timestamptz"`
	// DealValue is the closed deal value in dollars
	DealValue *float64 `gorm:"column:deal_value;type:numeric(12,2)"`
	// ClosedAt records when the deal closed
	ClosedAt *time.Time `gorm:"column:closed_at;type:timestamptz"`
	// CloseNotes holds free-form close notes
	CloseNotes *string `gorm:"column:close_notes;type:text"`
	// Notes holds static context notes (opaque to the state machine)
	Notes *string `gorm:"column:notes;type:text"`
	// CustomFields is a JSON blob for user-defined fields
	CustomFields datatypes.JSON `gorm:"column:custom_fields;type:jsonb"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Company        Company         `gorm:"foreignKey:CompanyID"`
	ContactMethods []ContactMethod `gorm:"foreignKey:ProspectID;constraint:OnDelete:CASCADE"`
	Activities     []Activity      `gorm:"foreignKey:ProspectID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the Prospect model
func (Prospect) TableName() string {
	return "prospects"
}

// FullName returns the prospect's display name
func (p *Prospect) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
