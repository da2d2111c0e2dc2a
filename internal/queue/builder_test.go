package queue_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/mocks"
	"github.com/copperline/pipeline-core/internal/queue"
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

func engagedProspect(id, companyID int64, stage domain.EngagementStage, followUp time.Time) *schema.Prospect {
	return &schema.Prospect{
		ID:              id,
		CompanyID:       companyID,
		Population:      domain.PopulationEngaged,
		EngagementStage: &stage,
		FollowUpAt:      &followUp,
	}
}

func ids(entries []queue.Entry) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.ProspectID
	}
	return out
}

func TestBuild_OverdueBeforeOnTimeWithinStage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockStore(ctrl)
	builder := queue.NewBuilder(st)

	ctx := context.Background()
	asOf := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	yesterday := asOf.AddDate(0, 0, -1)
	today := asOf.Add(-time.Hour)

	onTime := engagedProspect(1, 10, domain.StagePostDemo, today)
	overdue := engagedProspect(2, 10, domain.StagePostDemo, yesterday)

	st.EXPECT().ListDueProspects(ctx, domain.PopulationEngaged, asOf).
		Return([]*schema.Prospect{onTime, overdue}, nil)
	st.EXPECT().ListDueProspects(ctx, domain.PopulationUnengaged, asOf).
		Return(nil, nil)
	st.EXPECT().GetCompaniesByIDs(ctx, gomock.Any()).
		Return(map[int64]*schema.Company{10: {ID: 10, Timezone: domain.TimezoneCentral}}, nil)

	entries, err := builder.Build(ctx, asOf)
	require.NoError(t, err)

	// Yesterday's missed follow-up surfaces ahead of today's on-time item
	assert.Equal(t, []int64{2, 1}, ids(entries))
	assert.True(t, entries[0].Overdue)
	assert.False(t, entries[1].Overdue)
}

func TestBuild_StagePriorityOrdering(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockStore(ctrl)
	builder := queue.NewBuilder(st)

	ctx := context.Background()
	asOf := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	due := asOf.Add(-time.Hour)

	preDemo := engagedProspect(1, 10, domain.StagePreDemo, due)
	closing := engagedProspect(2, 10, domain.StageClosing, due)
	demo := engagedProspect(3, 10, domain.StageDemoScheduled, due)
	postDemo := engagedProspect(4, 10, domain.StagePostDemo, due)

	st.EXPECT().ListDueProspects(ctx, domain.PopulationEngaged, asOf).
		Return([]*schema.Prospect{preDemo, closing, demo, postDemo}, nil)
	st.EXPECT().ListDueProspects(ctx, domain.PopulationUnengaged, asOf).
		Return(nil, nil)
	st.EXPECT().GetCompaniesByIDs(ctx, gomock.Any()).
		Return(map[int64]*schema.Company{10: {ID: 10, Timezone: domain.TimezoneCentral}}, nil)

	entries, err := builder.Build(ctx, asOf)
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 4, 3, 1}, ids(entries))
}

func TestBuild_EngagedBeforeUnengagedByScore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockStore(ctrl)
	builder := queue.NewBuilder(st)

	ctx := context.Background()
	asOf := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	due := asOf.Add(-time.Hour)

	engaged := engagedProspect(1, 10, domain.StagePreDemo, due)
	lowScore := &schema.Prospect{ID: 2, CompanyID: 10, Population: domain.PopulationUnengaged, Score: 30}
	highScore := &schema.Prospect{ID: 3, CompanyID: 10, Population: domain.PopulationUnengaged, Score: 85}

	st.EXPECT().ListDueProspects(ctx, domain.PopulationEngaged, asOf).
		Return([]*schema.Prospect{engaged}, nil)
	st.EXPECT().ListDueProspects(ctx, domain.PopulationUnengaged, asOf).
		Return([]*schema.Prospect{lowScore, highScore}, nil)
	st.EXPECT().GetCompaniesByIDs(ctx, gomock.Any()).
		Return(map[int64]*schema.Company{10: {ID: 10, Timezone: domain.TimezoneCentral}}, nil)

	entries, err := builder.Build(ctx, asOf)
	require.NoError(t, err)

	// The lowest-priority engaged prospect still outranks the best unengaged one
	assert.Equal(t, []int64{1, 3, 2}, ids(entries))
}

func TestBuild_TimezoneOrdersEastToWest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockStore(ctrl)
	builder := queue.NewBuilder(st)

	ctx := context.Background()
	asOf := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	pacific := &schema.Prospect{ID: 1, CompanyID: 20, Population: domain.PopulationUnengaged, Score: 50}
	eastern := &schema.Prospect{ID: 2, CompanyID: 21, Population: domain.PopulationUnengaged, Score: 50}

	st.EXPECT().ListDueProspects(ctx, domain.PopulationEngaged, asOf).Return(nil, nil)
	st.EXPECT().ListDueProspects(ctx, domain.PopulationUnengaged, asOf).
		Return([]*schema.Prospect{pacific, eastern}, nil)
	st.EXPECT().GetCompaniesByIDs(ctx, gomock.Any()).
		Return(map[int64]*schema.Company{
			20: {ID: 20, Timezone: domain.TimezonePacific},
			21: {ID: 21, Timezone: domain.TimezoneEastern},
		}, nil)

	entries, err := builder.Build(ctx, asOf)
	require.NoError(t, err)

	// Equal scores: the east-coast office is already at its desk
	assert.Equal(t, []int64{2, 1}, ids(entries))
}

func TestBuild_TiesBrokenByProspectID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockStore(ctrl)
	builder := queue.NewBuilder(st)

	ctx := context.Background()
	asOf := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	b := &schema.Prospect{ID: 8, CompanyID: 10, Population: domain.PopulationUnengaged, Score: 50}
	a := &schema.Prospect{ID: 4, CompanyID: 10, Population: domain.PopulationUnengaged, Score: 50}

	st.EXPECT().ListDueProspects(ctx, domain.PopulationEngaged, asOf).Return(nil, nil)
	st.EXPECT().ListDueProspects(ctx, domain.PopulationUnengaged, asOf).
		Return([]*schema.Prospect{b, a}, nil)
	st.EXPECT().GetCompaniesByIDs(ctx, gomock.Any()).
		Return(map[int64]*schema.Company{10: {ID: 10, Timezone: domain.TimezoneCentral}}, nil)

	entries, err := builder.Build(ctx, asOf)
	require.NoError(t, err)

	assert.Equal(t, []int64{4, 8}, ids(entries))
}

func TestBuild_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockStore(ctrl)
	builder := queue.NewBuilder(st)

	ctx := context.Background()
	asOf := time.Now()

	st.EXPECT().ListDueProspects(ctx, domain.PopulationEngaged, asOf).Return(nil, nil)
	st.EXPECT().ListDueProspects(ctx, domain.PopulationUnengaged, asOf).Return(nil, nil)
	st.EXPECT().GetCompaniesByIDs(ctx, gomock.Any()).Return(map[int64]*schema.Company{}, nil)

	entries, err := builder.Build(ctx, asOf)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
