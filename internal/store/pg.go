package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the schema for every table the store manages
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.Company{},
		&schema.Prospect{},
		&schema.ContactMethod{},
		&schema.Activity{},
		&schema.ImportSource{},
		&schema.ResearchTask{},
		&schema.KeyValueStore{},
	)
}

// ConfigureConnectionPool applies pool settings to the underlying sql.DB,
// substituting safe defaults for zero values.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 10
	}
	if maxIdleConns == 0 {
		maxIdleConns = 2
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// WithinTransaction runs fn against a store bound to a single transaction
func (s *pgStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx})
	})
}

// GetCompany retrieves a company by ID
func (s *pgStore) GetCompany(ctx context.Context, id int64) (*schema.Company, error) {
	var company schema.Company
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

// GetCompanyByNormalizedName retrieves a company by its dedup key
func (s *pgStore) GetCompanyByNormalizedName(ctx context.Context, normalized string) (*schema.Company, error) {
	var company schema.Company
	err := s.db.WithContext(ctx).Where("name_normalized = ?", normalized).First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company by normalized name: %w", err)
	}
	return &company, nil
}

// CreateCompany inserts a company
func (s *pgStore) CreateCompany(ctx context.Context, company *schema.Company) error {
	if err := s.db.WithContext(ctx).Create(company).Error; err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// UpdateCompany saves a modified company
func (s *pgStore) UpdateCompany(ctx context.Context, company *schema.Company) error {
	if err := s.db.WithContext(ctx).Save(company).Error; err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}

// GetProspect retrieves a prospect by ID
func (s *pgStore) GetProspect(ctx context.Context, id int64) (*schema.Prospect, error) {
	var prospect schema.Prospect
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&prospect).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prospect: %w", err)
	}
	return &prospect, nil
}

// CreateProspect inserts a prospect
func (s *pgStore) CreateProspect(ctx context.Context, prospect *schema.Prospect) error {
	if err := s.db.WithContext(ctx).Create(prospect).Error; err != nil {
		return fmt.Errorf("failed to create prospect: %w", err)
	}
	return nil
}

// UpdateProspect saves a modified prospect
func (s *pgStore) UpdateProspect(ctx context.Context, prospect *schema.Prospect) error {
	if err := s.db.WithContext(ctx).Save(prospect).Error; err != nil {
		return fmt.Errorf("failed to update prospect: %w", err)
	}
	return nil
}

var sortColumns = map[string]string{
	"score":        "score",
	"follow_up_at": "follow_up_at",
	"created_at":   "created_at",
	"last_name":    "last_name",
}

// QueryProspects lists prospects matching the query
func (s *pgStore) QueryProspects(ctx context.Context, q ProspectQuery) ([]*schema.Prospect, error) {
	tx := s.db.WithContext(ctx).Model(&schema.Prospect{})

	if len(q.Populations) > 0 {
		tx = tx.Where("population IN ?", q.Populations)
	}
	if q.CompanyID != nil {
		tx = tx.Where("company_id = ?", *q.CompanyID)
	}
	if q.ScoreMin != nil {
		tx = tx.Where("score >= ?", *q.ScoreMin)
	}
	if q.ScoreMax != nil {
		tx = tx.Where("score <= ?", *q.ScoreMax)
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		tx = tx.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR title ILIKE ? OR notes ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}
	tx = tx.Order(fmt.Sprintf("%s %s, id ASC", column, direction))

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var prospects []*schema.Prospect
	if err := tx.Find(&prospects).Error; err != nil {
		return nil, fmt.Errorf("failed to query prospects: %w", err)
	}
	return prospects, nil
}

// ListProspectsByCompany lists prospects belonging to a company
func (s *pgStore) ListProspectsByCompany(ctx context.Context, companyID int64, limit int) ([]*schema.Prospect, error) {
	tx := s.db.WithContext(ctx).Where("company_id = ?", companyID).Order("id ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var prospects []*schema.Prospect
	if err := tx.Find(&prospects).Error; err != nil {
		return nil, fmt.Errorf("failed to list prospects by company: %w", err)
	}
	return prospects, nil
}

// FindProspectsByContactValue finds prospects owning a matching contact method
func (s *pgStore) FindProspectsByContactValue(ctx context.Context, methodType domain.ContactMethodType, value string) ([]*schema.Prospect, error) {
	var prospects []*schema.Prospect
	err := s.db.WithContext(ctx).
		Joins("JOIN contact_methods ON contact_methods.prospect_id = prospects.id").
		Where("contact_methods.type = ? AND contact_methods.value = ?", methodType, value).
		Order("prospects.id ASC").
		Find(&prospects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find prospects by contact value: %w", err)
	}
	return prospects, nil
}

// ListEngagedWithoutFollowUp returns IDs of engaged prospects lacking a follow-up
func (s *pgStore) ListEngagedWithoutFollowUp(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).
		Model(&schema.Prospect{}).
		Where("population = ? AND follow_up_at IS NULL", domain.PopulationEngaged).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned engaged prospects: %w", err)
	}
	return ids, nil
}

// ListDueProspects lists prospects of a population due at or before asOf.
// The comparison is <=, never ==, so missed days roll forward instead of
// silently expiring. Unengaged prospects with no follow-up date yet are
// also due (fresh imports awaiting a first attempt).
func (s *pgStore) ListDueProspects(ctx context.Context, population domain.Population, asOf time.Time) ([]*schema.Prospect, error) {
	endOfDay := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 23, 59, 59, 0, asOf.Location())

	tx := s.db.WithContext(ctx).Where("population = ?", population)
	if population == domain.PopulationUnengaged {
		tx = tx.Where("follow_up_at IS NULL OR follow_up_at <= ?", endOfDay)
	} else {
		tx = tx.Where("follow_up_at IS NOT NULL AND follow_up_at <= ?", endOfDay)
	}

	var prospects []*schema.Prospect
	if err := tx.Order("follow_up_at ASC NULLS LAST, id ASC").Find(&prospects).Error; err != nil {
		return nil, fmt.Errorf("failed to list due prospects: %w", err)
	}
	return prospects, nil
}

// ListParkedDue lists parked prospects whose month bucket has arrived
func (s *pgStore) ListParkedDue(ctx context.Context, month string) ([]*schema.Prospect, error) {
	var prospects []*schema.Prospect
	err := s.db.WithContext(ctx).
		Where("population = ? AND parked_month IS NOT NULL AND parked_month <= ?", domain.PopulationParked, month).
		Order("id ASC").
		Find(&prospects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list parked prospects due: %w", err)
	}
	return prospects, nil
}

// GetCompaniesByIDs retrieves companies keyed by ID
func (s *pgStore) GetCompaniesByIDs(ctx context.Context, ids []int64) (map[int64]*schema.Company, error) {
	result := make(map[int64]*schema.Company, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var companies []*schema.Company
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get companies by IDs: %w", err)
	}
	for _, c := range companies {
		result[c.ID] = c
	}
	return result, nil
}

// GetContactMethods lists contact methods for a prospect
func (s *pgStore) GetContactMethods(ctx context.Context, prospectID int64) ([]*schema.ContactMethod, error) {
	var methods []*schema.ContactMethod
	err := s.db.WithContext(ctx).
		Where("prospect_id = ?", prospectID).
		Order("id ASC").
		Find(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get contact methods: %w", err)
	}
	return methods, nil
}

// CreateContactMethod inserts a contact method
func (s *pgStore) CreateContactMethod(ctx context.Context, method *schema.ContactMethod) error {
	if err := s.db.WithContext(ctx).Create(method).Error; err != nil {
		return fmt.Errorf("failed to create contact method: %w", err)
	}
	return nil
}

// CreateActivity appends an audit activity
func (s *pgStore) CreateActivity(ctx context.Context, activity *schema.Activity) error {
	if err := s.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// ListActivities lists a prospect's activities, newest first
func (s *pgStore) ListActivities(ctx context.Context, prospectID int64, limit int) ([]*schema.Activity, error) {
	tx := s.db.WithContext(ctx).
		Where("prospect_id = ?", prospectID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var activities []*schema.Activity
	if err := tx.Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// CountAttemptsOnDay counts attempt activities for a prospect on a calendar
// day. A call that went to voicemail is stored as a voicemail activity and is
// still one attempt.
func (s *pgStore) CountAttemptsOnDay(ctx context.Context, prospectID int64, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.Activity{}).
		Where("prospect_id = ? AND type IN ? AND created_at >= ? AND created_at < ?",
			prospectID,
			[]domain.ActivityType{domain.ActivityCall, domain.ActivityVoicemail, domain.ActivityEmailSent},
			start, end,
		).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

// CreateImportSource inserts an import batch audit row
func (s *pgStore) CreateImportSource(ctx context.Context, source *schema.ImportSource) error {
	if err := s.db.WithContext(ctx).Create(source).Error; err != nil {
		return fmt.Errorf("failed to create import source: %w", err)
	}
	return nil
}

// CreateResearchTask enqueues a research task
func (s *pgStore) CreateResearchTask(ctx context.Context, task *schema.ResearchTask) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create research task: %w", err)
	}
	return nil
}

// ListResearchTasks lists tasks in a status, highest priority first
func (s *pgStore) ListResearchTasks(ctx context.Context, status schema.ResearchStatus, limit int) ([]*schema.ResearchTask, error) {
	tx := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("priority DESC, id ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var tasks []*schema.ResearchTask
	if err := tx.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list research tasks: %w", err)
	}
	return tasks, nil
}

// UpdateResearchTask saves a modified research task
func (s *pgStore) UpdateResearchTask(ctx context.Context, task *schema.ResearchTask) error {
	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("failed to update research task: %w", err)
	}
	return nil
}
