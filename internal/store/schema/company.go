package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/copperline/pipeline-core/internal/domain"
)

// Company represents the companies table. Companies are created on first
// reference from an accepted import record or manual entry, updated in place,
// and never deleted because history references them.
type Company struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Name is the display name as entered
	Name string `gorm:"column:name;not null;type:text"`
	// NameNormalized is the dedup key: lowercase with legal suffixes stripped
	NameNormalized string `gorm:"column:name_normalized;not null;type:text;uniqueIndex"`
	// Domain is the company website domain
	Domain *string `gorm:"column:domain;type:text"`
	// Size is the company size bucket (small/medium/large/enterprise)
	Size *string `gorm:"column:size;type:text"`
	// LoanTypes lists the loan products the company originates, as JSON
	LoanTypes datatypes.JSON `gorm:"column:loan_types;type:jsonb"`
	// State is the two-letter US state code
	State *string `gorm:"column:state;type:text"`
	// Timezone is derived via the state -> area-code -> default cascade
	Timezone domain.Timezone `gorm:"column:timezone;not null;type:text;default:central"`
	// Notes holds company-level notes
	Notes *string `gorm:"column:notes;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Prospects []Prospect `gorm:"foreignKey:CompanyID"`
}

// TableName specifies the table name for the Company model
func (Company) TableName() string {
	return "companies"
}
