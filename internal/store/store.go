package store

import (
	"context"
	"time"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

// ProspectQuery describes a filtered prospect listing
type ProspectQuery struct {
	// Populations filters to these populations when non-empty
	Populations []domain.Population
	// CompanyID filters to one company when set
	CompanyID *int64
	// ScoreMin and ScoreMax bound the score range when set
	ScoreMin *int
	ScoreMax *int
	// Search is a free-text match against name, title, and notes
	Search string
	// SortBy is a whitelisted sort column (score, follow_up_at, created_at, last_name)
	SortBy string
	// SortDesc reverses the sort direction
	SortDesc bool
	// Limit and Offset page the results
	Limit  int
	Offset int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// WithinTransaction runs fn against a store bound to a single database
	// transaction; fn returning an error rolls everything back
	WithinTransaction(ctx context.Context, fn func(Store) error) error

	// GetCompany retrieves a company by ID, nil if not found
	GetCompany(ctx context.Context, id int64) (*schema.Company, error)
	// GetCompanyByNormalizedName retrieves a company by its dedup key, nil if not found
	GetCompanyByNormalizedName(ctx context.Context, normalized string) (*schema.Company, error)
	// CreateCompany inserts a company and backfills its ID
	CreateCompany(ctx context.Context, company *schema.Company) error
	// UpdateCompany saves a modified company
	UpdateCompany(ctx context.Context, company *schema.Company) error

	// GetProspect retrieves a prospect by ID, nil if not found
	GetProspect(ctx context.Context, id int64) (*schema.Prospect, error)
	// CreateProspect inserts a prospect and backfills its ID
	CreateProspect(ctx context.Context, prospect *schema.Prospect) error
	// UpdateProspect saves a modified prospect
	UpdateProspect(ctx context.Context, prospect *schema.Prospect) error
	// QueryProspects lists prospects matching the query
	QueryProspects(ctx context.Context, q ProspectQuery) ([]*schema.Prospect, error)
	// ListProspectsByCompany lists prospects belonging to a company
	ListProspectsByCompany(ctx context.Context, companyID int64, limit int) ([]*schema.Prospect, error)
	// FindProspectsByContactValue finds prospects owning a contact method with
	// the given normalized value
	FindProspectsByContactValue(ctx context.Context, methodType domain.ContactMethodType, value string) ([]*schema.Prospect, error)
	// ListEngagedWithoutFollowUp returns IDs of engaged prospects lacking a
	// follow-up date (orphans)
	ListEngagedWithoutFollowUp(ctx context.Context) ([]int64, error)
	// ListDueProspects lists prospects of a population whose follow-up is at
	// or before asOf; for unengaged this includes prospects with no follow-up
	// date yet (fresh imports)
	ListDueProspects(ctx context.Context, population domain.Population, asOf time.Time) ([]*schema.Prospect, error)
	// ListParkedDue lists parked prospects whose parked_month is at or before
	// the given YYYY-MM bucket
	ListParkedDue(ctx context.Context, month string) ([]*schema.Prospect, error)
	// GetCompaniesByIDs retrieves companies keyed by ID
	GetCompaniesByIDs(ctx context.Context, ids []int64) (map[int64]*schema.Company, error)

	// GetContactMethods lists contact methods for a prospect
	GetContactMethods(ctx context.Context, prospectID int64) ([]*schema.ContactMethod, error)
	// CreateContactMethod inserts a contact method
	CreateContactMethod(ctx context.Context, method *schema.ContactMethod) error

	// CreateActivity appends an audit activity
	CreateActivity(ctx context.Context, activity *schema.Activity) error
	// ListActivities lists a prospect's activities, newest first
	ListActivities(ctx context.Context, prospectID int64, limit int) ([]*schema.Activity, error)
	// CountAttemptsOnDay counts attempt activities (call/voicemail/email)
	// logged for a prospect on the given calendar day
	CountAttemptsOnDay(ctx context.Context, prospectID int64, day time.Time) (int64, error)

	// CreateImportSource inserts an import batch audit row
	CreateImportSource(ctx context.Context, source *schema.ImportSource) error

	// CreateResearchTask enqueues a research task
	CreateResearchTask(ctx context.Context, task *schema.ResearchTask) error
	// ListResearchTasks lists tasks in a status, highest priority first
	ListResearchTasks(ctx context.Context, status schema.ResearchStatus, limit int) ([]*schema.ResearchTask, error)
	// UpdateResearchTask saves a modified research task
	UpdateResearchTask(ctx context.Context, task *schema.ResearchTask) error
}
