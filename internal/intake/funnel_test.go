package intake_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/intake"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/mocks"
	"github.com/copperline/pipeline-core/internal/store"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type testFunnelMocks struct {
	ctrl   *gomock.Controller
	store  *mocks.MockStore
	clock  *mocks.MockClock
	funnel *intake.Funnel
}

func setupTestFunnel(t *testing.T) *testFunnelMocks {
	ctrl := gomock.NewController(t)
	tm := &testFunnelMocks{
		ctrl:  ctrl,
		store: mocks.NewMockStore(ctrl),
		clock: mocks.NewMockClock(ctrl),
	}
	tm.funnel = intake.NewFunnel(tm.store, tm.clock, nil)
	return tm
}

func tearDownTestFunnel(tm *testFunnelMocks) {
	tm.ctrl.Finish()
}

func strPtr(s string) *string { return &s }

func TestNameSimilarity(t *testing.T) {
	// Golden values pin the similarity function so dedup stays deterministic
	assert.Equal(t, 1.0, intake.NameSimilarity("John Smith", "john smith"))
	assert.InDelta(t, 0.947, intake.NameSimilarity("John Smith", "Jon Smith"), 0.001)
	assert.Greater(t, intake.NameSimilarity("Robert Chen", "Rob Chen"), 0.8)
	assert.Less(t, intake.NameSimilarity("John Smith", "Maria Gonzalez"), 0.5)
	assert.Equal(t, 1.0, intake.NameSimilarity("", ""))
	assert.Equal(t, 0.0, intake.NameSimilarity("John", ""))
}

func TestAnalyze_BlockedByDNCEmail(t *testing.T) {
	tm := setupTestFunnel(t)
	defer tearDownTestFunnel(tm)

	ctx := context.Background()
	dnc := &schema.Prospect{ID: 5, Population: domain.PopulationDeadDNC}

	tm.store.EXPECT().FindProspectsByContactValue(ctx, domain.ContactEmail, "pat@example.com").
		Return([]*schema.Prospect{dnc}, nil)

	report, err := tm.funnel.Analyze(ctx, []intake.ImportRecord{{
		FirstName:   "Pat",
		LastName:    "Doyle",
		Email:       "Pat@Example.com",
		CompanyName: "Doyle Lending",
	}}, "spring list", "")
	require.NoError(t, err)

	require.Len(t, report.BlockedDNC, 1)
	assert.Equal(t, intake.StatusBlockedDNC, report.BlockedDNC[0].Status)
	assert.Empty(t, report.New)
	assert.Empty(t, report.Merge)
}

func TestAnalyze_DNCByNameAndCompany(t *testing.T) {
	tm := setupTestFunnel(t)
	defer tearDownTestFunnel(tm)

	ctx := context.Background()
	company := &schema.Company{ID: 3, NameNormalized: "doyle lending"}
	dnc := &schema.Prospect{ID: 5, FirstName: "Pat", LastName: "Doyle", Population: domain.PopulationDeadDNC}

	// No email or phone on the record: the DNC gate still runs via name+company
	tm.store.EXPECT().GetCompanyByNormalizedName(ctx, "doyle lending").Return(company, nil)
	tm.store.EXPECT().ListProspectsByCompany(ctx, int64(3), gomock.Any()).
		Return([]*schema.Prospect{dnc}, nil)

	report, err := tm.funnel.Analyze(ctx, []intake.ImportRecord{{
		FirstName:   "Pat",
		LastName:    "Doyle",
		CompanyName: "Doyle Lending, LLC",
	}}, "", "")
	require.NoError(t, err)

	require.Len(t, report.BlockedDNC, 1)
}

func TestAnalyze_EmailMergeBeatsFuzzy(t *testing.T) {
	tm := setupTestFunnel(t)
	defer tearDownTestFunnel(tm)

	ctx := context.Background()
	existing := &schema.Prospect{ID: 7, FirstName: "Sam", LastName: "Ortiz", Population: domain.PopulationUnengaged}

	// DNC gate: email, phone, then name+company all clear
	tm.store.EXPECT().FindProspectsByContactValue(ctx, domain.ContactEmail, "sam@acme.com").
		Return(nil, nil)
	tm.store.EXPECT().FindProspectsByContactValue(ctx, domain.ContactPhone, "5125550101").
		Return(nil, nil)
	tm.store.EXPECT().GetCompanyByNormalizedName(ctx, "acme lending").Return(nil, nil)

	// Pass 1 hits, so passes 2 and 3 never run
	tm.store.EXPECT().FindProspectsByContactValue(ctx, domain.ContactEmail, "sam@acme.com").
		Return([]*schema.Prospect{existing}, nil)

	report, err := tm.funnel.Analyze(ctx, []intake.ImportRecord{{
		FirstName:   "Sam",
		LastName:    "Ortiz",
		Email:       "sam@acme.com",
		Phone:       "(512) 555-0101",
		CompanyName: "Acme Lending LLC",
	}}, "", "")
	require.NoError(t, err)

	require.Len(t, report.Merge, 1)
	assert.Equal(t, intake.MatchEmail, report.Merge[0].MatchReason)
	assert.Equal(t, int64(7), report.Merge[0].MatchedProspectID)
	assert.Equal(t, 1.0, report.Merge[0].MatchConfidence)
}

func TestAnalyze_FuzzyNameMatch(t *testing.T) {
	tm := setupTestFunnel(t)
	defer tearDownTestFunnel(tm)

	ctx := context.Background()
	company := &schema.Company{ID: 2, NameNormalized: "first national holdings"}
	existing := &schema.Prospect{ID: 9, FirstName: "Jon", LastName: "Smith", Population: domain.PopulationUnengaged}

	// DNC gate via name+company finds the company but no DNC prospects
	tm.store.EXPECT().GetCompanyByNormalizedName(ctx, "first national holdings").
		Return(company, nil).Times(2)
	tm.store.EXPECT().ListProspectsByCompany(ctx, int64(2), gomock.Any()).
		Return([]*schema.Prospect{existing}, nil).Times(2)

	report, err := tm.funnel.Analyze(ctx, []intake.ImportRecord{{
		FirstName:   "John",
		LastName:    "Smith",
		CompanyName: "First National Holdings, Inc.",
	}}, "", "")
	require.NoError(t, err)

	require.Len(t, report.Merge, 1)
	assert.Equal(t, intake.MatchFuzzyName, report.Merge[0].MatchReason)
	assert.GreaterOrEqual(t, report.Merge[0].MatchConfidence, intake.NameSimilarityThreshold)
}

func TestAnalyze_PhoneMatchNeedsReview(t *testing.T) {
	tm := setupTestFunnel(t)
	defer tearDownTestFunnel(tm)

	ctx := context.Background()
	existing := &schema.Prospect{ID: 11, FirstName: "Casey", LastName: "Vu", Population: domain.PopulationUnengaged}

	tm.store.EXPECT().FindProspectsByContactValue(ctx, domain.ContactPhone, "5125550199").
		Return([]*schema.Prospect{existing}, nil).Times(2)

	report, err := tm.funnel.Analyze(ctx, []intake.ImportRecord{{
		FirstName: "Morgan",
		LastName:  "Vu",
		Phone:     "512-555-0199",
	}}, "", "")
	require.NoError(t, err)

	// Shared office line: flagged, never auto-merged
	require.Len(t, report.NeedsReview, 1)
	assert.Equal(t, intake.MatchPhone, report.NeedsReview[0].MatchReason)
	assert.Empty(t, report.Merge)
}

func TestAnalyze_Incomplete(t *testing.T) {
	tm := setupTestFunnel(t)
	defer tearDownTestFunnel(tm)

	report, err := tm.funnel.Analyze(context.Background(), []intake.ImportRecord{{
		Email:       "somebody@example.com",
		CompanyName: "Acme",
	}}, "", "")
	require.NoError(t, err)

	require.Len(t, report.Incomplete, 1)
	assert.False(t, report.CanImport())
}

func TestCommit_NewRecords(t *testing.T) {
	tm := setupTestFunnel(t)
	defer tearDownTestFunnel(tm)

	ctx := context.Background()
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	tm.clock.EXPECT().Now().Return(now).AnyTimes()

	report := &intake.Report{
		SourceName: "conference leads",
		New: []intake.Analysis{
			{
				Status: intake.StatusNew,
				Record: intake.ImportRecord{
					FirstName:   "Dana",
					LastName:    "Reyes",
					Email:       "dana@acme.com",
					Phone:       "15125550142",
					CompanyName: "Acme Lending LLC",
					State:       strPtr("TX"),
				},
			},
			{
				// Missing phone: lands in broken and gets a research task
				Status: intake.StatusNew,
				Record: intake.ImportRecord{
					FirstName:   "Lee",
					LastName:    "Okafor",
					Email:       "lee@acme.com",
					CompanyName: "Acme Lending LLC",
				},
			},
		},
	}

	tm.store.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(store.Store) error) error {
			return fn(tm.store)
		})

	// First record creates the company; second reuses it
	tm.store.EXPECT().GetCompanyByNormalizedName(ctx, "acme lending").Return(nil, nil)
	tm.store.EXPECT().CreateCompany(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, c *schema.Company) error {
			assert.Equal(t, "Acme Lending LLC", c.Name)
			assert.Equal(t, domain.TimezoneCentral, c.Timezone)
			c.ID = 1
			return nil
		})
	tm.store.EXPECT().GetCompanyByNormalizedName(ctx, "acme lending").
		Return(&schema.Company{ID: 1, NameNormalized: "acme lending"}, nil)

	var created []*schema.Prospect
	tm.store.EXPECT().CreateProspect(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p *schema.Prospect) error {
			p.ID = int64(len(created) + 100)
			created = append(created, p)
			return nil
		}).Times(2)

	var methods []*schema.ContactMethod
	tm.store.EXPECT().CreateContactMethod(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, m *schema.ContactMethod) error {
			methods = append(methods, m)
			return nil
		}).Times(3)

	tm.store.EXPECT().CreateActivity(ctx, gomock.Any()).Return(nil).Times(2)
	tm.store.EXPECT().CreateResearchTask(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, task *schema.ResearchTask) error {
			assert.Equal(t, schema.ResearchPending, task.Status)
			return nil
		})

	var source *schema.ImportSource
	tm.store.EXPECT().CreateImportSource(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *schema.ImportSource) error {
			s.ID = 77
			source = s
			return nil
		})

	result, err := tm.funnel.Commit(ctx, report)
	require.NoError(t, err)

	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 1, result.BrokenCount)
	assert.Equal(t, int64(77), result.SourceID)
	assert.NotEmpty(t, result.BatchID)

	require.Len(t, created, 2)
	assert.Equal(t, domain.PopulationUnengaged, created[0].Population)
	assert.Equal(t, domain.PopulationBroken, created[1].Population)

	// Phone stored normalized to 10 digits
	assert.Equal(t, "5125550142", methods[1].Value)

	// The audit row mirrors the report and the commit result
	require.NotNil(t, source)
	assert.Equal(t, 2, source.TotalRecords)
	assert.Equal(t, 2, source.NewRecords)
	assert.Equal(t, 0, source.MergedRecords)
	assert.Equal(t, result.BatchID, source.BatchID)
}

func TestCommit_MergeFillsBlanksOnly(t *testing.T) {
	tm := setupTestFunnel(t)
	defer tearDownTestFunnel(tm)

	ctx := context.Background()
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	tm.clock.EXPECT().Now().Return(now).AnyTimes()

	existingTitle := "VP Lending"
	existing := &schema.Prospect{
		ID:         7,
		FirstName:  "Sam",
		LastName:   "Ortiz",
		Title:      &existingTitle,
		Population: domain.PopulationUnengaged,
	}

	report := &intake.Report{
		SourceName: "refresh",
		Merge: []intake.Analysis{{
			Status:            intake.StatusMerge,
			MatchedProspectID: 7,
			MatchReason:       intake.MatchEmail,
			Record: intake.ImportRecord{
				FirstName:   "Sam",
				LastName:    "Ortiz",
				Email:       "sam@acme.com",
				Title:       strPtr("Analyst"),
				Notes:       strPtr("met at the booth"),
				CompanyName: "Acme",
			},
		}},
	}

	tm.store.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(store.Store) error) error {
			return fn(tm.store)
		})
	tm.store.EXPECT().GetProspect(ctx, int64(7)).Return(existing, nil)

	var updated *schema.Prospect
	tm.store.EXPECT().UpdateProspect(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p *schema.Prospect) error {
			updated = p
			return nil
		})
	tm.store.EXPECT().GetContactMethods(ctx, int64(7)).
		Return([]*schema.ContactMethod{
			{ProspectID: 7, Type: domain.ContactEmail, Value: "sam@acme.com"},
		}, nil)
	// Email already known: no new contact method created
	tm.store.EXPECT().CreateActivity(ctx, gomock.Any()).Return(nil)
	tm.store.EXPECT().CreateImportSource(ctx, gomock.Any()).Return(nil)

	result, err := tm.funnel.Commit(ctx, report)
	require.NoError(t, err)

	assert.Equal(t, 1, result.MergedCount)
	require.NotNil(t, updated)
	// Title was already set and must not be overwritten; notes was blank
	assert.Equal(t, "VP Lending", *updated.Title)
	assert.Equal(t, "met at the booth", *updated.Notes)
}

func TestCommit_NoOpReportWritesOnlyAudit(t *testing.T) {
	tm := setupTestFunnel(t)
	defer tearDownTestFunnel(tm)

	ctx := context.Background()
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	tm.clock.EXPECT().Now().Return(now).AnyTimes()

	// Everything was blocked or flagged: nothing to create or merge
	report := &intake.Report{
		SourceName:  "dupes",
		BlockedDNC:  []intake.Analysis{{Status: intake.StatusBlockedDNC}},
		NeedsReview: []intake.Analysis{{Status: intake.StatusNeedsReview, MatchedProspectID: 3}},
	}

	tm.store.EXPECT().WithinTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(store.Store) error) error {
			return fn(tm.store)
		})

	var source *schema.ImportSource
	tm.store.EXPECT().CreateImportSource(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s *schema.ImportSource) error {
			source = s
			return nil
		})

	result, err := tm.funnel.Commit(ctx, report)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ImportedCount)
	assert.Equal(t, 0, result.MergedCount)
	require.NotNil(t, source)
	assert.Equal(t, 2, source.TotalRecords)
	assert.Equal(t, 1, source.BlockedDNC)
	assert.Equal(t, 1, source.NeedsReview)
}
