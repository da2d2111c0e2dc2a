package schema

import (
	"time"

	"github.com/copperline/pipeline-core/internal/domain"
)

// ContactMethod represents the contact_methods table. Each method is owned by
// exactly one prospect and doubles as a dedup/DNC-matching key.
type ContactMethod struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// ProspectID references the owning prospect
	ProspectID int64 `gorm:"column:prospect_id;not null;index"`
	// Type is email or phone
	Type domain.ContactMethodType `gorm:"column:type;not null;type:text"`
	// Value is the normalized address or number (lowercase email, 10-digit phone)
	Value string `gorm:"column:value;not null;type:text;index"`
	// Label distinguishes work/personal/cell/main
	Label *string `gorm:"column:label;type:text"`
	// IsPrimary marks the preferred method of this type
	IsPrimary bool `gorm:"column:is_primary;not null;default:false"`
	// IsVerified marks a method confirmed reachable
	IsVerified bool `gorm:"column:is_verified;not null;default:false"`
	// VerifiedAt records when the method was last verified
	VerifiedAt *time.Time `gorm:"column:verified_at;type:timestamptz"`
	// IsSuspect flags a method believed to be wrong
	IsSuspect bool `gorm:"column:is_suspect;not null;default:false"`
	// Source records where the method came from
	Source *string `gorm:"column:source;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`

	// Associations
	Prospect Prospect `gorm:"foreignKey:ProspectID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the ContactMethod model
func (ContactMethod) TableName() string {
	return "contact_methods"
}
