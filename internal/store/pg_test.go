package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/copperline/pipeline-core/internal/domain"
	"github.com/copperline/pipeline-core/internal/store/schema"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
)

// TestMain sets up the test database before running tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	// Check if we should use an external database (for CI or local development)
	dbHost := os.Getenv("TEST_DB_HOST")
	dbPort := os.Getenv("TEST_DB_PORT")
	dbUser := os.Getenv("TEST_DB_USER")
	dbPassword := os.Getenv("TEST_DB_PASSWORD")
	dbName := os.Getenv("TEST_DB_NAME")

	var dsn string
	var err error

	if dbHost != "" {
		// Use external database
		if dbPort == "" {
			dbPort = "5432"
		}
		if dbUser == "" {
			dbUser = "postgres"
		}
		if dbPassword == "" {
			dbPassword = "postgres"
		}
		if dbName == "" {
			dbName = "test_db"
		}

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPassword, dbName)

		fmt.Printf("Using external database: %s:%s/%s\n", dbHost, dbPort, dbName)
	} else {
		// Start a PostgreSQL container for testing
		pgContainer, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("test_db"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			fmt.Printf("Failed to start PostgreSQL container: %v\n", err)
			os.Exit(1)
		}

		dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("Started PostgreSQL container\n")
	}

	// Connect to the database
	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		if pgContainer != nil {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
		}
		os.Exit(1)
	}

	// Initialize the database schema
	if err := Migrate(testDB); err != nil {
		fmt.Printf("Failed to migrate database: %v\n", err)
		if pgContainer != nil {
			if err := pgContainer.Terminate(ctx); err != nil {
				fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
			}
		}
		os.Exit(1)
	}

	// Run tests
	code := m.Run()

	// Cleanup
	if pgContainer != nil {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
		}
	}

	os.Exit(code)
}

// initPGTestDB returns a store bound to a transaction that rolls back when
// the test ends, so tests never see each other's rows
func initPGTestDB(t *testing.T) (Store, *gorm.DB) {
	tx := testDB.Begin()
	require.NotNil(t, tx)
	require.NoError(t, tx.Error)

	t.Cleanup(func() {
		tx.Rollback()
	})

	return NewPGStore(tx), tx
}

func createTestCompany(t *testing.T, st Store, name string) *schema.Company {
	company := &schema.Company{
		Name:           name,
		NameNormalized: domain.NormalizeCompanyName(name),
		Timezone:       domain.TimezoneCentral,
	}
	require.NoError(t, st.CreateCompany(context.Background(), company))
	return company
}

func createTestProspect(t *testing.T, st Store, companyID int64, lastName string, population domain.Population) *schema.Prospect {
	prospect := &schema.Prospect{
		CompanyID:  companyID,
		FirstName:  "Test",
		LastName:   lastName,
		Population: population,
	}
	require.NoError(t, st.CreateProspect(context.Background(), prospect))
	return prospect
}

func TestCompanyRoundTrip(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()

	created := createTestCompany(t, st, "First National Holdings, Inc.")
	require.NotZero(t, created.ID)

	found, err := st.GetCompanyByNormalizedName(ctx, "first national holdings")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "First National Holdings, Inc.", found.Name)

	missing, err := st.GetCompanyByNormalizedName(ctx, "no such company")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byID, err := st.GetCompany(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, created.NameNormalized, byID.NameNormalized)
}

func TestGetProspect_Missing(t *testing.T) {
	st, _ := initPGTestDB(t)

	prospect, err := st.GetProspect(context.Background(), 999999)
	require.NoError(t, err)
	assert.Nil(t, prospect)
}

func TestQueryProspects_FiltersAndSort(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()
	company := createTestCompany(t, st, "Query Co")

	low := createTestProspect(t, st, company.ID, "Low", domain.PopulationUnengaged)
	low.Score = 20
	require.NoError(t, st.UpdateProspect(ctx, low))

	high := createTestProspect(t, st, company.ID, "High", domain.PopulationUnengaged)
	high.Score = 90
	require.NoError(t, st.UpdateProspect(ctx, high))

	createTestProspect(t, st, company.ID, "Parked", domain.PopulationParked)

	// Population filter plus score sort, highest first
	results, err := st.QueryProspects(ctx, ProspectQuery{
		Populations: []domain.Population{domain.PopulationUnengaged},
		SortBy:      "score",
		SortDesc:    true,
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "High", results[0].LastName)
	assert.Equal(t, "Low", results[1].LastName)

	// Score range excludes the low scorer
	min := 50
	results, err = st.QueryProspects(ctx, ProspectQuery{
		Populations: []domain.Population{domain.PopulationUnengaged},
		ScoreMin:    &min,
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "High", results[0].LastName)

	// Case-insensitive search on name
	results, err = st.QueryProspects(ctx, ProspectQuery{Search: "hIgH", Limit: 10})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "High", results[0].LastName)

	// Offset pages past the first row
	results, err = st.QueryProspects(ctx, ProspectQuery{
		Populations: []domain.Population{domain.PopulationUnengaged},
		SortBy:      "score",
		SortDesc:    true,
		Limit:       1,
		Offset:      1,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Low", results[0].LastName)
}

func TestFindProspectsByContactValue(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()
	company := createTestCompany(t, st, "Contact Co")

	owner := createTestProspect(t, st, company.ID, "Owner", domain.PopulationUnengaged)
	require.NoError(t, st.CreateContactMethod(ctx, &schema.ContactMethod{
		ProspectID: owner.ID,
		Type:       domain.ContactEmail,
		Value:      "owner@example.com",
	}))
	createTestProspect(t, st, company.ID, "Other", domain.PopulationUnengaged)

	found, err := st.FindProspectsByContactValue(ctx, domain.ContactEmail, "owner@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, owner.ID, found[0].ID)

	// A phone lookup on an email value misses
	found, err = st.FindProspectsByContactValue(ctx, domain.ContactPhone, "owner@example.com")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestListEngagedWithoutFollowUp(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()
	company := createTestCompany(t, st, "Orphan Co")

	orphan := createTestProspect(t, st, company.ID, "Orphan", domain.PopulationEngaged)

	scheduled := createTestProspect(t, st, company.ID, "Scheduled", domain.PopulationEngaged)
	followUp := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	scheduled.FollowUpAt = &followUp
	require.NoError(t, st.UpdateProspect(ctx, scheduled))

	// Unengaged prospects without a follow-up are not orphans
	createTestProspect(t, st, company.ID, "Unengaged", domain.PopulationUnengaged)

	ids, err := st.ListEngagedWithoutFollowUp(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{orphan.ID}, ids)
}

func TestListDueProspects(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()
	company := createTestCompany(t, st, "Due Co")
	asOf := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	// Unengaged with no follow-up yet: due (fresh import)
	fresh := createTestProspect(t, st, company.ID, "Fresh", domain.PopulationUnengaged)

	// Overdue from last week rolls forward
	overdueAt := asOf.AddDate(0, 0, -7)
	overdue := createTestProspect(t, st, company.ID, "Overdue", domain.PopulationUnengaged)
	overdue.FollowUpAt = &overdueAt
	require.NoError(t, st.UpdateProspect(ctx, overdue))

	// Due later the same day still counts
	laterToday := time.Date(2025, 6, 10, 17, 0, 0, 0, time.UTC)
	today := createTestProspect(t, st, company.ID, "Today", domain.PopulationUnengaged)
	today.FollowUpAt = &laterToday
	require.NoError(t, st.UpdateProspect(ctx, today))

	// Tomorrow is not due
	tomorrow := asOf.AddDate(0, 0, 1)
	future := createTestProspect(t, st, company.ID, "Future", domain.PopulationUnengaged)
	future.FollowUpAt = &tomorrow
	require.NoError(t, st.UpdateProspect(ctx, future))

	due, err := st.ListDueProspects(ctx, domain.PopulationUnengaged, asOf)
	require.NoError(t, err)
	dueIDs := make([]int64, 0, len(due))
	for _, p := range due {
		dueIDs = append(dueIDs, p.ID)
	}
	assert.ElementsMatch(t, []int64{fresh.ID, overdue.ID, today.ID}, dueIDs)
	// Dated prospects sort before the NULL-follow-up fresh import
	assert.Equal(t, overdue.ID, due[0].ID)
	assert.Equal(t, fresh.ID, due[len(due)-1].ID)

	// Engaged prospects without a follow-up are orphans, never due
	createTestProspect(t, st, company.ID, "EngagedOrphan", domain.PopulationEngaged)
	engaged, err := st.ListDueProspects(ctx, domain.PopulationEngaged, asOf)
	require.NoError(t, err)
	assert.Empty(t, engaged)
}

func TestListParkedDue(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()
	company := createTestCompany(t, st, "Parked Co")

	dueMonth := "2025-05"
	dueNow := createTestProspect(t, st, company.ID, "DueNow", domain.PopulationParked)
	dueNow.ParkedMonth = &dueMonth
	require.NoError(t, st.UpdateProspect(ctx, dueNow))

	thisMonth := "2025-06"
	current := createTestProspect(t, st, company.ID, "Current", domain.PopulationParked)
	current.ParkedMonth = &thisMonth
	require.NoError(t, st.UpdateProspect(ctx, current))

	nextMonth := "2025-07"
	later := createTestProspect(t, st, company.ID, "Later", domain.PopulationParked)
	later.ParkedMonth = &nextMonth
	require.NoError(t, st.UpdateProspect(ctx, later))

	due, err := st.ListParkedDue(ctx, "2025-06")
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, dueNow.ID, due[0].ID)
	assert.Equal(t, current.ID, due[1].ID)
}

func TestCountAttemptsOnDay(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()
	company := createTestCompany(t, st, "Attempt Co")
	prospect := createTestProspect(t, st, company.ID, "Caller", domain.PopulationUnengaged)

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	morning := day.Add(9 * time.Hour)
	afternoon := day.Add(15 * time.Hour)

	require.NoError(t, st.CreateActivity(ctx, &schema.Activity{
		ProspectID: prospect.ID, Type: domain.ActivityCall, CreatedBy: "user", CreatedAt: morning,
	}))
	require.NoError(t, st.CreateActivity(ctx, &schema.Activity{
		ProspectID: prospect.ID, Type: domain.ActivityEmailSent, CreatedBy: "system", CreatedAt: afternoon,
	}))
	// A call that went to voicemail is still an attempt
	require.NoError(t, st.CreateActivity(ctx, &schema.Activity{
		ProspectID: prospect.ID, Type: domain.ActivityVoicemail, CreatedBy: "user", CreatedAt: day.Add(11 * time.Hour),
	}))
	// Status changes are not attempt activities
	require.NoError(t, st.CreateActivity(ctx, &schema.Activity{
		ProspectID: prospect.ID, Type: domain.ActivityStatusChange, CreatedBy: "user", CreatedAt: morning,
	}))
	// Yesterday's call is outside the window
	require.NoError(t, st.CreateActivity(ctx, &schema.Activity{
		ProspectID: prospect.ID, Type: domain.ActivityCall, CreatedBy: "user", CreatedAt: day.Add(-2 * time.Hour),
	}))

	count, err := st.CountAttemptsOnDay(ctx, prospect.ID, day)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestListActivities_NewestFirst(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()
	company := createTestCompany(t, st, "Audit Co")
	prospect := createTestProspect(t, st, company.ID, "Audited", domain.PopulationUnengaged)

	base := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	for i := range 3 {
		require.NoError(t, st.CreateActivity(ctx, &schema.Activity{
			ProspectID: prospect.ID,
			Type:       domain.ActivityNote,
			CreatedBy:  "user",
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	activities, err := st.ListActivities(ctx, prospect.ID, 2)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.True(t, activities[0].CreatedAt.After(activities[1].CreatedAt))
}

func TestResearchTaskQueue(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()
	company := createTestCompany(t, st, "Research Co")
	prospect := createTestProspect(t, st, company.ID, "Broken", domain.PopulationBroken)

	normal := &schema.ResearchTask{ProspectID: prospect.ID, Status: schema.ResearchPending}
	require.NoError(t, st.CreateResearchTask(ctx, normal))
	urgent := &schema.ResearchTask{ProspectID: prospect.ID, Status: schema.ResearchPending, Priority: 5}
	require.NoError(t, st.CreateResearchTask(ctx, urgent))
	done := &schema.ResearchTask{ProspectID: prospect.ID, Status: schema.ResearchCompleted}
	require.NoError(t, st.CreateResearchTask(ctx, done))

	// Pending only, highest priority first
	tasks, err := st.ListResearchTasks(ctx, schema.ResearchPending, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, urgent.ID, tasks[0].ID)
	assert.Equal(t, normal.ID, tasks[1].ID)

	// Claiming a task removes it from the pending queue
	tasks[0].Status = schema.ResearchInProgress
	require.NoError(t, st.UpdateResearchTask(ctx, tasks[0]))
	tasks, err = st.ListResearchTasks(ctx, schema.ResearchPending, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, normal.ID, tasks[0].ID)
}

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	st, _ := initPGTestDB(t)
	ctx := context.Background()
	company := createTestCompany(t, st, "Rollback Co")

	err := st.WithinTransaction(ctx, func(tx Store) error {
		if err := tx.CreateProspect(ctx, &schema.Prospect{
			CompanyID:  company.ID,
			FirstName:  "Never",
			LastName:   "Persisted",
			Population: domain.PopulationUnengaged,
		}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	results, err := st.QueryProspects(ctx, ProspectQuery{Search: "Persisted", Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCheckpointStore(t *testing.T) {
	_, tx := initPGTestDB(t)
	checkpoints := NewCheckpointStore(tx)
	ctx := context.Background()

	value, err := checkpoints.GetCheckpoint(ctx, "nightly:2025-06-10:rescore")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, checkpoints.SetCheckpoint(ctx, "nightly:2025-06-10:rescore", "rescored=42"))

	value, err = checkpoints.GetCheckpoint(ctx, "nightly:2025-06-10:rescore")
	require.NoError(t, err)
	assert.Equal(t, "rescored=42", value)

	// Overwrite replaces the stored value
	require.NoError(t, checkpoints.SetCheckpoint(ctx, "nightly:2025-06-10:rescore", "rescored=50"))
	value, err = checkpoints.GetCheckpoint(ctx, "nightly:2025-06-10:rescore")
	require.NoError(t, err)
	assert.Equal(t, "rescored=50", value)
}
