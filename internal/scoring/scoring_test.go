package scoring_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/mocks"
	"github.com/copperline/pipeline-core/internal/scoring"
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

func strPtr(s string) *string { return &s }

func TestScore_Range(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	empty := scoring.Score(&schema.Prospect{}, &schema.Company{}, now)
	assert.GreaterOrEqual(t, empty, 0)
	assert.LessOrEqual(t, empty, 100)

	recent := now.AddDate(0, 0, -2)
	followUp := now.AddDate(0, 0, 3)
	stage := domain.StageClosing
	strong := scoring.Score(&schema.Prospect{
		FirstName:       "Avery",
		LastName:        "Nilsson",
		Title:           strPtr("CEO"),
		Population:      domain.PopulationEngaged,
		EngagementStage: &stage,
		LastContactAt:   &recent,
		FollowUpAt:      &followUp,
		Source:          strPtr("Referral from client"),
	}, &schema.Company{
		Size:      strPtr("large"),
		State:     strPtr("TX"),
		Domain:    strPtr("example.com"),
		LoanTypes: datatypes.JSON(`["conventional","fha"]`),
	}, now)
	assert.LessOrEqual(t, strong, 100)
	assert.Greater(t, strong, empty)
}

func TestScore_SeniorTitleBeatsJunior(t *testing.T) {
	now := time.Now()
	company := &schema.Company{}

	ceo := scoring.Score(&schema.Prospect{Title: strPtr("CEO"), Population: domain.PopulationUnengaged}, company, now)
	analyst := scoring.Score(&schema.Prospect{Title: strPtr("Analyst"), Population: domain.PopulationUnengaged}, company, now)
	assert.Greater(t, ceo, analyst)
}

func TestScore_SubstringTitleMatchTakesBest(t *testing.T) {
	now := time.Now()
	company := &schema.Company{}

	// "Senior Vice President" contains both "vp"-family keys and "president";
	// the highest seniority among the matches must win.
	svp := scoring.Score(&schema.Prospect{Title: strPtr("Senior Vice President"), Population: domain.PopulationUnengaged}, company, now)
	vp := scoring.Score(&schema.Prospect{Title: strPtr("VP Operations"), Population: domain.PopulationUnengaged}, company, now)
	assert.GreaterOrEqual(t, svp, vp)
}

func TestScore_EngagementOrdering(t *testing.T) {
	now := time.Now()
	company := &schema.Company{}

	engaged := scoring.Score(&schema.Prospect{Population: domain.PopulationEngaged}, company, now)
	unengaged := scoring.Score(&schema.Prospect{Population: domain.PopulationUnengaged}, company, now)
	broken := scoring.Score(&schema.Prospect{Population: domain.PopulationBroken}, company, now)

	assert.Greater(t, engaged, unengaged)
	assert.Greater(t, unengaged, broken)
}

func TestScore_StageBonus(t *testing.T) {
	now := time.Now()
	company := &schema.Company{}

	closing := domain.StageClosing
	preDemo := domain.StagePreDemo
	hot := scoring.Score(&schema.Prospect{Population: domain.PopulationEngaged, EngagementStage: &closing}, company, now)
	early := scoring.Score(&schema.Prospect{Population: domain.PopulationEngaged, EngagementStage: &preDemo}, company, now)
	assert.Greater(t, hot, early)
}

func TestScore_RecencyDecay(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	company := &schema.Company{}

	thisWeek := now.AddDate(0, 0, -3)
	lastMonth := now.AddDate(0, 0, -25)
	stale := now.AddDate(0, 0, -120)

	hot := scoring.Score(&schema.Prospect{Population: domain.PopulationUnengaged, LastContactAt: &thisWeek}, company, now)
	cooling := scoring.Score(&schema.Prospect{Population: domain.PopulationUnengaged, LastContactAt: &lastMonth}, company, now)
	cold := scoring.Score(&schema.Prospect{Population: domain.PopulationUnengaged, LastContactAt: &stale}, company, now)

	assert.Greater(t, hot, cooling)
	assert.Greater(t, cooling, cold)
}

func TestScore_SourceQuality(t *testing.T) {
	now := time.Now()
	company := &schema.Company{}

	referral := scoring.Score(&schema.Prospect{Population: domain.PopulationUnengaged, Source: strPtr("referral")}, company, now)
	cold := scoring.Score(&schema.Prospect{Population: domain.PopulationUnengaged, Source: strPtr("cold outreach")}, company, now)
	assert.Greater(t, referral, cold)

	// "purchased list" must not be shadowed by the generic "list" ranking
	purchased := scoring.Score(&schema.Prospect{Population: domain.PopulationUnengaged, Source: strPtr("purchased list Q2")}, company, now)
	list := scoring.Score(&schema.Prospect{Population: domain.PopulationUnengaged, Source: strPtr("list import")}, company, now)
	assert.Less(t, purchased, list)
}

func TestScore_NilCompany(t *testing.T) {
	got := scoring.Score(&schema.Prospect{Population: domain.PopulationUnengaged}, nil, time.Now())
	assert.GreaterOrEqual(t, got, 0)
	assert.LessOrEqual(t, got, 100)
}

func TestConfidence_Completeness(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	bare := scoring.Confidence(&schema.Prospect{}, nil, now)

	verifiedAt := now.AddDate(0, 0, -10)
	full := scoring.Confidence(&schema.Prospect{
		CompanyID: 1,
		FirstName: "Avery",
		LastName:  "Nilsson",
		Title:     strPtr("COO"),
		Source:    strPtr("referral"),
		Notes:     strPtr("met at the spring conference, wants a demo in July"),
	}, []*schema.ContactMethod{
		{Type: domain.ContactEmail, Value: "avery@example.com", IsVerified: true, VerifiedAt: &verifiedAt},
		{Type: domain.ContactPhone, Value: "5125550147"},
	}, now)

	assert.Greater(t, full, bare)
	assert.LessOrEqual(t, full, 100)
	assert.GreaterOrEqual(t, full, 90)
}

func TestConfidence_StaleVerificationScoresLower(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	fresh := now.AddDate(0, 0, -30)
	stale := now.AddDate(0, 0, -180)

	prospect := &schema.Prospect{CompanyID: 1, FirstName: "Kim", LastName: "Okafor"}

	freshScore := scoring.Confidence(prospect, []*schema.ContactMethod{
		{Type: domain.ContactEmail, IsVerified: true, VerifiedAt: &fresh},
	}, now)
	staleScore := scoring.Confidence(prospect, []*schema.ContactMethod{
		{Type: domain.ContactEmail, IsVerified: true, VerifiedAt: &stale},
	}, now)

	assert.Greater(t, freshScore, staleScore)
}

func TestRescoreAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	clock := mocks.NewMockClock(ctrl)
	rescorer := scoring.NewRescorer(st, clock)

	ctx := context.Background()
	now := time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC)
	clock.EXPECT().Now().Return(now)

	prospect := &schema.Prospect{ID: 1, CompanyID: 2, FirstName: "Lee", LastName: "Tran", Population: domain.PopulationUnengaged, Score: 0}
	company := &schema.Company{ID: 2, Name: "Acme Lending", State: strPtr("TX")}

	st.EXPECT().QueryProspects(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, q store.ProspectQuery) ([]*schema.Prospect, error) {
			require.Len(t, q.Populations, 1)
			if q.Populations[0] == domain.PopulationUnengaged {
				return []*schema.Prospect{prospect}, nil
			}
			return nil, nil
		}).Times(3)
	st.EXPECT().GetCompany(ctx, int64(2)).Return(company, nil)
	st.EXPECT().GetContactMethods(ctx, int64(1)).Return(nil, nil)

	var updated *schema.Prospect
	st.EXPECT().UpdateProspect(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, p *schema.Prospect) error {
			updated = p
			return nil
		})

	count, err := rescorer.RescoreAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.NotNil(t, updated)
	assert.NotZero(t, updated.Score)
	assert.NotZero(t, updated.DataConfidence)
}

func TestRescoreAll_NoChangesNoWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	st := mocks.NewMockStore(ctrl)
	clock := mocks.NewMockClock(ctrl)
	rescorer := scoring.NewRescorer(st, clock)

	ctx := context.Background()
	now := time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC)
	clock.EXPECT().Now().Return(now)

	prospect := &schema.Prospect{ID: 1, CompanyID: 2, Population: domain.PopulationUnengaged}
	company := &schema.Company{ID: 2}
	// Pre-seed the stored scores with what the calculator will produce
	prospect.Score = scoring.Score(prospect, company, now)
	prospect.DataConfidence = scoring.Confidence(prospect, nil, now)

	st.EXPECT().QueryProspects(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, q store.ProspectQuery) ([]*schema.Prospect, error) {
			if q.Populations[0] == domain.PopulationUnengaged {
				return []*schema.Prospect{prospect}, nil
			}
			return nil, nil
		}).Times(3)
	st.EXPECT().GetCompany(ctx, int64(2)).Return(company, nil)
	st.EXPECT().GetContactMethods(ctx, int64(1)).Return(nil, nil)
	// No UpdateProspect expected: unchanged scores skip the write

	count, err := rescorer.RescoreAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
