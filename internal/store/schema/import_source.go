package schema

import "time"

// ImportSource represents the import_sources table - one row per import
// batch, recording the final outcome counts for auditability.
type ImportSource struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// BatchID is the ULID assigned to the import batch
	BatchID string `gorm:"column:batch_id;not null;uniqueIndex;type:text"`
	// SourceName is the caller-supplied name for the source
	SourceName string `gorm:"column:source_name;not null;type:text"`
	// Filename is the original filename, if any
	Filename *string `gorm:"column:filename;type:text"`
	// TotalRecords is the number of records analyzed
	TotalRecords int `gorm:"column:total_records;not null;default:0"`
	// NewRecords is the number of prospects created
	NewRecords int `gorm:"column:new_records;not null;default:0"`
	// MergedRecords is the number merged into existing prospects
	MergedRecords int `gorm:"column:merged_records;not null;default:0"`
	// NeedsReview is the number flagged for manual review (phone-only matches)
	NeedsReview int `gorm:"column:needs_review;not null;default:0"`
	// BlockedDNC is the number excluded by the DNC gate
	BlockedDNC int `gorm:"column:blocked_dnc;not null;default:0"`
	// Incomplete is the number rejected for missing identity data
	Incomplete int `gorm:"column:incomplete;not null;default:0"`
	// CreatedAt is the timestamp when the batch was committed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ImportSource model
func (ImportSource) TableName() string {
	return "import_sources"
}
