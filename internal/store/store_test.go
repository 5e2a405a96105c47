package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kiranshivaraju/rfpmarket/internal/store"
	"github.com/kiranshivaraju/rfpmarket/pkg/models"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool + cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rfpmarket_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	// Second run is a no-op.
	require.NoError(t, store.RunMigrations(connStr, migrationsDir()))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func newAudit(consultantID uuid.UUID, airline string, created time.Time) *models.AdoptionAudit {
	id := uuid.New()
	return &models.AdoptionAudit{
		ID:           id,
		AirlineName:  airline,
		ConsultantID: consultantID,
		OverallScore: 53,
		Summary:      "Digital adoption is below optimal levels.",
		AuditDate:    created.Truncate(24 * time.Hour),
		CreatedAt:    created,
		Items: []*models.AuditItemRecord{
			{ID: uuid.New(), AuditID: id, ToolName: "Slack", UtilizationMetric: 93, SentimentScore: 8, CalculatedScore: 88, Recommendation: "Keep going."},
			{ID: uuid.New(), AuditID: id, ToolName: "Jira", UtilizationMetric: 9, SentimentScore: 3, CalculatedScore: 17, Recommendation: "Investigate."},
		},
	}
}

// --- User role tests ---

func TestGetUserRole(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	userID := uuid.New()
	_, err := pool.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, 'consultant')`, userID)
	require.NoError(t, err)

	role, err := s.GetUserRole(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleConsultant, role)

	_, err = s.GetUserRole(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Audit tests ---

func TestAudit_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	consultant := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)
	audit := newAudit(consultant, "Acme Air", now)

	require.NoError(t, s.CreateAudit(ctx, audit))

	got, err := s.GetAudit(ctx, audit.ID, consultant)
	require.NoError(t, err)
	assert.Equal(t, audit.ID, got.ID)
	assert.Equal(t, "Acme Air", got.AirlineName)
	assert.Nil(t, got.AirlineID)
	assert.Equal(t, 53, got.OverallScore)
	assert.True(t, now.Equal(got.CreatedAt))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Jira", got.Items[0].ToolName)
	assert.Equal(t, 17, got.Items[0].CalculatedScore)
	assert.Equal(t, "Slack", got.Items[1].ToolName)
	assert.Equal(t, 93.0, got.Items[1].UtilizationMetric)
}

func TestAudit_WithAirlineID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	consultant := uuid.New()
	airlineID := uuid.New()
	audit := newAudit(consultant, "", time.Now().UTC())
	audit.AirlineID = &airlineID
	audit.Items = nil

	require.NoError(t, s.CreateAudit(ctx, audit))

	got, err := s.GetAudit(ctx, audit.ID, consultant)
	require.NoError(t, err)
	require.NotNil(t, got.AirlineID)
	assert.Equal(t, airlineID, *got.AirlineID)
	assert.Empty(t, got.AirlineName)
	assert.Empty(t, got.Items)
}

func TestAudit_GetScopedToConsultant(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	audit := newAudit(uuid.New(), "Acme Air", time.Now().UTC())
	require.NoError(t, s.CreateAudit(ctx, audit))

	_, err := s.GetAudit(ctx, audit.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAudit_CreateIsAtomic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	consultant := uuid.New()
	audit := newAudit(consultant, "Acme Air", time.Now().UTC())
	audit.Items[1].SentimentScore = 42 // violates the CHECK constraint

	require.Error(t, s.CreateAudit(ctx, audit))

	_, err := s.GetAudit(ctx, audit.ID, consultant)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAudit_DuplicateID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	audit := newAudit(uuid.New(), "Acme Air", time.Now().UTC())
	require.NoError(t, s.CreateAudit(ctx, audit))

	audit.Items = nil
	assert.ErrorIs(t, s.CreateAudit(ctx, audit), store.ErrDuplicateKey)
}

func TestAudit_ListWithFiltersAndPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	consultant := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		airline := "Acme Air"
		if i%2 == 1 {
			airline = "Blue Sky"
		}
		require.NoError(t, s.CreateAudit(ctx, newAudit(consultant, airline, base.Add(time.Duration(i)*time.Minute))))
	}
	require.NoError(t, s.CreateAudit(ctx, newAudit(uuid.New(), "Acme Air", base)))

	all, total, err := s.ListAudits(ctx, store.AuditFilter{ConsultantID: consultant})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, all, 5)
	assert.True(t, all[0].CreatedAt.After(all[4].CreatedAt), "newest first")

	acme, total, err := s.ListAudits(ctx, store.AuditFilter{ConsultantID: consultant, AirlineName: "acme air"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, acme, 3)

	page2, total, err := s.ListAudits(ctx, store.AuditFilter{ConsultantID: consultant, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page2, 2)

	recent, total, err := s.ListAudits(ctx, store.AuditFilter{ConsultantID: consultant, Since: base.Add(3 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, recent, 2)
}

// --- Upload tests ---

func TestUpload_CreateAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	consultant := uuid.New()
	audit := newAudit(consultant, "Acme Air", time.Now().UTC())
	require.NoError(t, s.CreateAudit(ctx, audit))

	upload := &models.AdoptionUpload{
		ID:               uuid.New(),
		AuditID:          audit.ID,
		ConsultantID:     consultant,
		FileName:         "usage.csv",
		RecordsProcessed: 3,
		ToolsProcessed:   2,
		UploadStatus:     models.UploadStatusCompleted,
		ProcessedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, s.CreateUpload(ctx, upload))

	uploads, err := s.ListUploads(ctx, audit.ID)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "usage.csv", uploads[0].FileName)
	assert.Equal(t, 3, uploads[0].RecordsProcessed)
	assert.Equal(t, 2, uploads[0].ToolsProcessed)
}

func TestUpload_UnknownAudit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.CreateUpload(context.Background(), &models.AdoptionUpload{
		ID:           uuid.New(),
		AuditID:      uuid.New(),
		ConsultantID: uuid.New(),
		FileName:     "usage.csv",
		UploadStatus: models.UploadStatusCompleted,
		ProcessedAt:  time.Now().UTC(),
	})
	assert.Error(t, err)
}
