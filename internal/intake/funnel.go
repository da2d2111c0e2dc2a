// Package intake admits raw imported records into the pipeline. Analysis and
// commit are split so a caller can preview an import before anything is
// written: Analyze categorizes every record without touching the store, and
// Commit applies exactly that plan in one transaction.
//
// Deduplication runs in three passes, stopping at the first hit:
//  1. exact case-insensitive email match: merge
//  2. normalized company name plus name similarity at or above the
//     threshold: merge
//  3. phone match with no corroboration: needs manual review, never
//     auto-merged (shared office lines)
//
// The DNC gate runs before any of this. A record matching a DNC prospect by
// email, phone, or name+company is blocked outright: never merged, never
// created, never reactivated.
package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/messaging"
	"github.com/copperline/pipeline-core/internal/store"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

// fuzzyMatchScanLimit bounds how many same-company prospects pass 2 compares
const fuzzyMatchScanLimit = 500

// ImportRecord is a single incoming row
type ImportRecord struct {
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

// FullName returns the record's display name
func (r ImportRecord) FullName() string {
	if r.FirstName == "" {
		return r.LastName
	}
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}

// RecordStatus is the analysis outcome for one record
type RecordStatus string

const (
	StatusNew         RecordStatus = "new"
	StatusMerge       RecordStatus = "merge"
	StatusNeedsReview RecordStatus = "needs_review"
	StatusBlockedDNC  RecordStatus = "blocked_dnc"
	StatusIncomplete  RecordStatus = "incomplete"
)

// MatchReason names which dedup pass matched a record
type MatchReason string

const (
	MatchEmail     MatchReason = "email"
	MatchFuzzyName MatchReason = "fuzzy_name"
	MatchPhone     MatchReason = "phone"
)

// Analysis is the categorization of a single record
type Analysis struct {
	Record            ImportRecord
	Status            RecordStatus
	MatchedProspectID int64
	MatchReason       MatchReason
	MatchConfidence   float64
}

// Report is the full analysis of an import batch, grouped by outcome. It is
// the unit handed back to the caller for preview and forward to Commit.
type Report struct {
	SourceName  string
	Filename    string
	New         []Analysis
	Merge       []Analysis
	NeedsReview []Analysis
	BlockedDNC  []Analysis
	Incomplete  []Analysis
}

// TotalRecords returns the number of records analyzed
func (r *Report) TotalRecords() int {
	return len(r.New) + len(r.Merge) + len(r.NeedsReview) + len(r.BlockedDNC) + len(r.Incomplete)
}

// CanImport reports whether committing the report would write anything
func (r *Report) CanImport() bool {
	return len(r.New) > 0 || len(r.Merge) > 0
}

// CommitResult reports what a committed import wrote
type CommitResult struct {
	BatchID       string
	ImportedCount int
	MergedCount   int
	BrokenCount   int
	SourceID      int64
}

// Funnel is the import intake: DNC gate, then dedup, then completeness.
// events may be nil when no broker is configured.
type Funnel struct {
	store  store.Store
	clock  adapter.Clock
	events messaging.Publisher
}

// NewFunnel creates an intake funnel
func NewFunnel(st store.Store, clock adapter.Clock, events messaging.Publisher) *Funnel {
	return &Funnel{store: st, clock: clock, events: events}
}

// Analyze categorizes every record without writing anything. Records missing
// both names are incomplete; records matching any DNC prospect are blocked
// and excluded from all further matching.
func (f *Funnel) Analyze(ctx context.Context, records []ImportRecord, sourceName, filename string) (*Report, error) {
	report := &Report{SourceName: sourceName, Filename: filename}

	for _, record := range records {
		analysis := Analysis{Record: record}

		if record.FirstName == "" && record.LastName == "" {
			analysis.Status = StatusIncomplete
			report.Incomplete = append(report.Incomplete, analysis)
			continue
		}

		blocked, err := f.matchesDNC(ctx, record)
		if err != nil {
			return nil, err
		}
		if blocked {
			analysis.Status = StatusBlockedDNC
			report.BlockedDNC = append(report.BlockedDNC, analysis)
			violation := &domain.DNCViolationError{Operation: fmt.Sprintf("import record %q matches a DNC prospect", record.FullName())}
			logger.Error(violation, zap.String("record", record.FullName()), zap.String("source", sourceName))
			continue
		}

		// Pass 1: exact email
		if record.Email != "" {
			matched, err := f.findByEmail(ctx, record.Email)
			if err != nil {
				return nil, err
			}
			if matched != nil {
				analysis.Status = StatusMerge
				analysis.MatchedProspectID = matched.ID
				analysis.MatchReason = MatchEmail
				analysis.MatchConfidence = 1.0
				report.Merge = append(report.Merge, analysis)
				continue
			}
		}

		// Pass 2: same company, similar name
		if record.FirstName != "" && record.LastName != "" && record.CompanyName != "" {
			matched, confidence, err := f.findByFuzzyName(ctx, record)
			if err != nil {
				return nil, err
			}
			if matched != nil {
				analysis.Status = StatusMerge
				analysis.MatchedProspectID = matched.ID
				analysis.MatchReason = MatchFuzzyName
				analysis.MatchConfidence = confidence
				report.Merge = append(report.Merge, analysis)
				continue
			}
		}

		// Pass 3: phone only
		if record.Phone != "" {
			matched, err := f.findByPhone(ctx, record.Phone)
			if err != nil {
				return nil, err
			}
			if matched != nil {
				analysis.Status = StatusNeedsReview
				analysis.MatchedProspectID = matched.ID
				analysis.MatchReason = MatchPhone
				report.NeedsReview = append(report.NeedsReview, analysis)
				continue
			}
		}

		analysis.Status = StatusNew
		report.New = append(report.New, analysis)
	}

	logger.Info("import analysis complete",
		zap.String("source", sourceName),
		zap.Int("total", report.TotalRecords()),
		zap.Int("new", len(report.New)),
		zap.Int("merge", len(report.Merge)),
		zap.Int("needs_review", len(report.NeedsReview)),
		zap.Int("blocked_dnc", len(report.BlockedDNC)),
		zap.Int("incomplete", len(report.Incomplete)),
	)
	return report, nil
}

// Commit applies the analyzed plan in a single transaction: new companies,
// prospects, and contact methods; fill-blank-only merges; one Activity per
// touched prospect; research tasks for broken prospects; and the ImportSource
// audit row whose counts mirror the report.
func (f *Funnel) Commit(ctx context.Context, report *Report) (*CommitResult, error) {
	now := f.clock.Now()
	batchID := ulid.MustNewDefault(now).String()
	result := &CommitResult{BatchID: batchID}

	err := f.store.WithinTransaction(ctx, func(tx store.Store) error {
		for _, analysis := range report.New {
			if err := f.commitNew(ctx, tx, report, analysis.Record, result); err != nil {
				return err
			}
		}
		for _, analysis := range report.Merge {
			if err := f.commitMerge(ctx, tx, report, analysis, result); err != nil {
				return err
			}
		}

		filename := report.Filename
		source := &schema.ImportSource{
			BatchID:       batchID,
			SourceName:    report.SourceName,
			TotalRecords:  report.TotalRecords(),
			NewRecords:    result.ImportedCount,
			MergedRecords: result.MergedCount,
			NeedsReview:   len(report.NeedsReview),
			BlockedDNC:    len(report.BlockedDNC),
			Incomplete:    len(report.Incomplete),
			CreatedAt:     now,
		}
		if filename != "" {
			source.Filename = &filename
		}
		if err := tx.CreateImportSource(ctx, source); err != nil {
			return err
		}
		result.SourceID = source.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("import committed",
		zap.String("batch_id", batchID),
		zap.String("source", report.SourceName),
		zap.Int("imported", result.ImportedCount),
		zap.Int("merged", result.MergedCount),
		zap.Int("broken", result.BrokenCount),
	)

	if f.events != nil {
		event := &messaging.ImportEvent{
			BatchID:     batchID,
			SourceName:  report.SourceName,
			NewRecords:  result.ImportedCount,
			Merged:      result.MergedCount,
			NeedsReview: len(report.NeedsReview),
			BlockedDNC:  len(report.BlockedDNC),
			Incomplete:  len(report.Incomplete),
			OccurredAt:  now,
		}
		if err := f.events.PublishImport(ctx, event); err != nil {
			logger.Error(err, zap.String("batch_id", batchID), zap.String("event", "import"))
		}
	}
	return result, nil
}

func (f *Funnel) commitNew(ctx context.Context, tx store.Store, report *Report, record ImportRecord, result *CommitResult) error {
	now := f.clock.Now()

	companyID, err := f.getOrCreateCompany(ctx, tx, record, now)
	if err != nil {
		return err
	}

	hasEmail := record.Email != ""
	hasPhone := record.Phone != ""
	population := domain.PopulationUnengaged
	if !hasEmail || !hasPhone {
		population = domain.PopulationBroken
		result.BrokenCount++
	}

	source := report.SourceName
	if record.Source != nil && *record.Source != "" {
		source = *record.Source
	}
	prospect := &schema.Prospect{
		CompanyID:  companyID,
		FirstName:  record.FirstName,
		LastName:   record.LastName,
		Title:      record.Title,
		Population: population,
		Notes:      record.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if source != "" {
		prospect.Source = &source
	}
	if err := tx.CreateProspect(ctx, prospect); err != nil {
		return err
	}

	if hasEmail {
		method := &schema.ContactMethod{
			ProspectID: prospect.ID,
			Type:       domain.ContactEmail,
			Value:      domain.NormalizeEmail(record.Email),
			IsPrimary:  true,
			CreatedAt:  now,
		}
		if report.SourceName != "" {
			src := report.SourceName
			method.Source = &src
		}
		if err := tx.CreateContactMethod(ctx, method); err != nil {
			return err
		}
	}
	if hasPhone {
		method := &schema.ContactMethod{
			ProspectID: prospect.ID,
			Type:       domain.ContactPhone,
			Value:      domain.NormalizePhone(record.Phone),
			IsPrimary:  !hasEmail,
			CreatedAt:  now,
		}
		if report.SourceName != "" {
			src := report.SourceName
			method.Source = &src
		}
		if err := tx.CreateContactMethod(ctx, method); err != nil {
			return err
		}
	}

	notes := fmt.Sprintf("imported from %s", firstNonEmpty(report.SourceName, report.Filename, "manual entry"))
	pop := population
	activity := &schema.Activity{
		ProspectID:      prospect.ID,
		Type:            domain.ActivityImport,
		PopulationAfter: &pop,
		Notes:           &notes,
		CreatedBy:       "system",
		CreatedAt:       now,
	}
	if err := tx.CreateActivity(ctx, activity); err != nil {
		return err
	}

	// Broken prospects go straight onto the research queue
	if population == domain.PopulationBroken {
		task := &schema.ResearchTask{
			ProspectID: prospect.ID,
			Status:     schema.ResearchPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.CreateResearchTask(ctx, task); err != nil {
			return err
		}
	}

	result.ImportedCount++
	return nil
}

func (f *Funnel) commitMerge(ctx context.Context, tx store.Store, report *Report, analysis Analysis, result *CommitResult) error {
	if analysis.MatchedProspectID == 0 {
		return nil
	}
	prospect, err := tx.GetProspect(ctx, analysis.MatchedProspectID)
	if err != nil {
		return err
	}
	if prospect == nil {
		return nil
	}

	now := f.clock.Now()
	record := analysis.Record

	// Merge fills blanks only; existing values are never overwritten
	updated := false
	if prospect.Title == nil && record.Title != nil && *record.Title != "" {
		prospect.Title = record.Title
		updated = true
	}
	if prospect.Notes == nil && record.Notes != nil && *record.Notes != "" {
		prospect.Notes = record.Notes
		updated = true
	}
	if updated {
		prospect.UpdatedAt = now
		if err := tx.UpdateProspect(ctx, prospect); err != nil {
			return err
		}
	}

	existing, err := tx.GetContactMethods(ctx, prospect.ID)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		known[string(m.Type)+":"+m.Value] = struct{}{}
	}

	if record.Email != "" {
		value := domain.NormalizeEmail(record.Email)
		if _, ok := known[string(domain.ContactEmail)+":"+value]; !ok {
			method := &schema.ContactMethod{
				ProspectID: prospect.ID,
				Type:       domain.ContactEmail,
				Value:      value,
				CreatedAt:  now,
			}
			if err := tx.CreateContactMethod(ctx, method); err != nil {
				return err
			}
		}
	}
	if record.Phone != "" {
		value := domain.NormalizePhone(record.Phone)
		if _, ok := known[string(domain.ContactPhone)+":"+value]; !ok {
			method := &schema.ContactMethod{
				ProspectID: prospect.ID,
				Type:       domain.ContactPhone,
				Value:      value,
				CreatedAt:  now,
			}
			if err := tx.CreateContactMethod(ctx, method); err != nil {
				return err
			}
		}
	}

	notes := fmt.Sprintf("merged from import %s (match: %s)", firstNonEmpty(report.SourceName, report.Filename, "manual entry"), analysis.MatchReason)
	activity := &schema.Activity{
		ProspectID: prospect.ID,
		Type:       domain.ActivityEnrichment,
		Notes:      &notes,
		CreatedBy:  "system",
		CreatedAt:  now,
	}
	if err := tx.CreateActivity(ctx, activity); err != nil {
		return err
	}

	result.MergedCount++
	return nil
}

func (f *Funnel) getOrCreateCompany(ctx context.Context, tx store.Store, record ImportRecord, now time.Time) (int64, error) {
	name := record.CompanyName
	if name == "" {
		name = "Unknown"
	}
	normalized := domain.NormalizeCompanyName(name)

	existing, err := tx.GetCompanyByNormalizedName(ctx, normalized)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	state := ""
	if record.State != nil {
		state = *record.State
	}
	company := &schema.Company{
		Name:           name,
		NameNormalized: normalized,
		State:          record.State,
		Timezone:       domain.DeriveTimezone(state, record.Phone),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.CreateCompany(ctx, company); err != nil {
		return 0, err
	}
	return company.ID, nil
}

// matchesDNC runs every dedup signal against the DNC population only. Any hit
// blocks the record.
func (f *Funnel) matchesDNC(ctx context.Context, record ImportRecord) (bool, error) {
	if record.Email != "" {
		prospects, err := f.store.FindProspectsByContactValue(ctx, domain.ContactEmail, domain.NormalizeEmail(record.Email))
		if err != nil {
			return false, err
		}
		if anyDNC(prospects) {
			return true, nil
		}
	}
	if record.Phone != "" {
		prospects, err := f.store.FindProspectsByContactValue(ctx, domain.ContactPhone, domain.NormalizePhone(record.Phone))
		if err != nil {
			return false, err
		}
		if anyDNC(prospects) {
			return true, nil
		}
	}
	if record.CompanyName != "" && (record.FirstName != "" || record.LastName != "") {
		company, err := f.store.GetCompanyByNormalizedName(ctx, domain.NormalizeCompanyName(record.CompanyName))
		if err != nil {
			return false, err
		}
		if company != nil {
			prospects, err := f.store.ListProspectsByCompany(ctx, company.ID, fuzzyMatchScanLimit)
			if err != nil {
				return false, err
			}
			fullName := record.FullName()
			for _, p := range prospects {
				if p.Population != domain.PopulationDeadDNC {
					continue
				}
				if NameSimilarity(fullName, p.FullName()) >= NameSimilarityThreshold {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func (f *Funnel) findByEmail(ctx context.Context, email string) (*schema.Prospect, error) {
	prospects, err := f.store.FindProspectsByContactValue(ctx, domain.ContactEmail, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if len(prospects) == 0 {
		return nil, nil
	}
	return prospects[0], nil
}

func (f *Funnel) findByPhone(ctx context.Context, phone string) (*schema.Prospect, error) {
	prospects, err := f.store.FindProspectsByContactValue(ctx, domain.ContactPhone, domain.NormalizePhone(phone))
	if err != nil {
		return nil, err
	}
	if len(prospects) == 0 {
		return nil, nil
	}
	return prospects[0], nil
}

func (f *Funnel) findByFuzzyName(ctx context.Context, record ImportRecord) (*schema.Prospect, float64, error) {
	company, err := f.store.GetCompanyByNormalizedName(ctx, domain.NormalizeCompanyName(record.CompanyName))
	if err != nil {
		return nil, 0, err
	}
	if company == nil {
		return nil, 0, nil
	}

	prospects, err := f.store.ListProspectsByCompany(ctx, company.ID, fuzzyMatchScanLimit)
	if err != nil {
		return nil, 0, err
	}
	fullName := record.FullName()
	for _, p := range prospects {
		similarity := NameSimilarity(fullName, p.FullName())
		if similarity >= NameSimilarityThreshold {
			return p, similarity, nil
		}
	}
	return nil, 0, nil
}

func anyDNC(prospects []*schema.Prospect) bool {
	for _, p := range prospects {
		if p.Population == domain.PopulationDeadDNC {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
