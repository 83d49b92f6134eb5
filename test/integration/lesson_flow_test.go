package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/questlingo/backend/internal/catalog"
	"github.com/questlingo/backend/internal/config"
	"github.com/questlingo/backend/internal/handlers"
	"github.com/questlingo/backend/internal/middleware"
	"github.com/questlingo/backend/internal/models"
	"github.com/questlingo/backend/internal/repositories"
	"github.com/questlingo/backend/internal/runner"
	"github.com/questlingo/backend/internal/services"
	"github.com/questlingo/backend/internal/telemetry"
	"github.com/questlingo/backend/internal/writeback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "integration-secret"

var (
	testDB         *sql.DB
	testRouter     chi.Router
	testLogger     *zap.Logger
	testDispatcher *writeback.LocalDispatcher
	testVerifier   = middleware.NewTokenVerifier(testSecret)
)

// setupTestRouter creates a test router with all API handlers behind token auth
func setupTestRouter(db *sql.DB, logger *zap.Logger) chi.Router {
	lessons, err := catalog.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load catalog: %v", err))
	}

	profileRepo := repositories.NewProfileRepository(db, logger)
	progressRepo := repositories.NewProgressRepository(db, logger)
	recorder := services.NewCompletionService(profileRepo, progressRepo, lessons, logger)

	testDispatcher = writeback.NewLocalDispatcher(writeback.Targets{
		Progress: progressRepo,
		Profiles: profileRepo,
		Recorder: recorder,
	}, writeback.LocalConfig{
		Workers:        2,
		QueueSize:      64,
		MaxAttempts:    3,
		AttemptTimeout: 5 * time.Second,
		Backoff:        50 * time.Millisecond,
	}, logger)

	store := services.NewProfileStore()
	profileSvc := services.NewProfileService(profileRepo, store, testDispatcher, 3*time.Second, logger)
	lessonSvc := services.NewLessonService(lessons, profileSvc, logger)
	sessionSvc := services.NewSessionService(lessons, progressRepo, profileSvc, store, profileRepo, testDispatcher, telemetry.Nop(), services.SessionConfig{
		RemoteCallTimeout:    3 * time.Second,
		ProfileUpdateTimeout: 2 * time.Second,
		CompletionTimeout:    5 * time.Second,
	}, logger)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(testVerifier))
		handlers.NewLessonHandler(lessonSvc, logger).RegisterRoutes(r)
		handlers.NewSessionHandler(sessionSvc, logger).RegisterRoutes(r)
		handlers.NewProfileHandler(profileSvc, sessionSvc, logger).RegisterRoutes(r)
	})
	return r
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	// Initialize logger
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Setup test database
	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	dsn := "root:password@tcp(localhost:3306)/questlingo_test?parseTime=true&charset=utf8mb4&clientFoundRows=true"
	if cfg.Database.Host != "" {
		dsn = cfg.DSN()
	}

	testDB, err = sql.Open("mysql", dsn)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}

	// Test connection
	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}

	if err := migrateTestSchema(testDB); err != nil {
		panic(fmt.Sprintf("Failed to migrate test database: %v", err))
	}

	testRouter = setupTestRouter(testDB, testLogger)

	// Run tests
	code := m.Run()

	// Cleanup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	_ = testDispatcher.Close(ctx)
	cancel()
	testDB.Close()
	os.Exit(code)
}

// migrateTestSchema applies the service migrations to the test database
func migrateTestSchema(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{MigrationsTable: "questlingo_schema_migrations"})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "mysql", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// cleanupUser removes every row written for a user
func cleanupUser(t *testing.T, userID string) {
	t.Helper()
	for _, query := range []string{
		"DELETE FROM lesson_progress WHERE user_id = ?",
		"DELETE FROM user_completed_lessons WHERE user_id = ?",
		"DELETE FROM user_profiles WHERE id = ?",
	} {
		_, err := testDB.Exec(query, userID)
		require.NoError(t, err, "Failed to cleanup test data")
	}
}

// do sends an authenticated request and decodes the JSON response into out
func do(t *testing.T, userID, method, path string, body any, out any) int {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	token, err := testVerifier.Issue(userID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(method, "/api/v1"+path, &payload)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)

	if out != nil && w.Code < http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func intPtr(v int) *int { return &v }

func TestIntegration_CompleteLesson(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	const userID = "it-complete-lesson"
	cleanupUser(t, userID)
	defer cleanupUser(t, userID)

	var view services.SessionView
	require.Equal(t, http.StatusOK, do(t, userID, http.MethodPost, "/lessons/es-lesson-1/session", nil, &view))
	assert.Equal(t, runner.StateInProgress, view.State)
	require.NotNil(t, view.Step)

	responses := []models.StepResponse{
		{},
		{},
		{OptionIndex: intPtr(1)},
		{Text: "buenos días"},
		{OptionIndex: intPtr(1)},
	}
	for i, resp := range responses {
		var result services.AnswerResult
		require.Equal(t, http.StatusOK, do(t, userID, http.MethodPost, "/lessons/es-lesson-1/session/answer", resp, &result), "step %d", i)
		assert.True(t, result.Feedback.Correct, "step %d", i)
		require.Equal(t, http.StatusOK, do(t, userID, http.MethodPost, "/lessons/es-lesson-1/session/advance", nil, &view), "step %d", i)
	}

	require.Equal(t, runner.StateCompleted, view.State)
	require.NotNil(t, view.Outcome)
	assert.Equal(t, 100, view.Outcome.FinalScore)
	assert.Equal(t, 150, view.Outcome.XPGained)
	assert.Equal(t, 2, view.Outcome.NewLevel)

	// Remote writes are delivered asynchronously
	profileRepo := repositories.NewProfileRepository(testDB, testLogger)
	require.Eventually(t, func() bool {
		profile, err := profileRepo.Get(context.Background(), userID)
		return err == nil && profile.XP == 150 && profile.HasCompleted("es-lesson-1")
	}, 5*time.Second, 50*time.Millisecond)

	var completed bool
	err := testDB.QueryRow("SELECT is_completed FROM lesson_progress WHERE user_id = ? AND lesson_id = ?", userID, "es-lesson-1").Scan(&completed)
	require.NoError(t, err)
	assert.True(t, completed)

	var profile models.UserProfile
	require.Equal(t, http.StatusOK, do(t, userID, http.MethodGet, "/profile", nil, &profile))
	assert.Equal(t, 150, profile.XP)
	assert.Equal(t, 2, profile.Level)
	assert.Equal(t, 1, profile.Streak)
}

func TestIntegration_ListLessons(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	const userID = "it-list-lessons"
	cleanupUser(t, userID)
	defer cleanupUser(t, userID)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{name: "default target language", query: "", expectedStatus: http.StatusOK, expectedCount: 8},
		{name: "french", query: "?language=fr", expectedStatus: http.StatusOK, expectedCount: 3},
		{name: "unsupported language", query: "?language=xx", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lessons []models.LessonListItem
			status := do(t, userID, http.MethodGet, "/lessons"+tt.query, nil, &lessons)
			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedStatus == http.StatusOK {
				require.Len(t, lessons, tt.expectedCount)
				assert.False(t, lessons[0].Locked)
			}
		})
	}
}

func TestIntegration_UpdateProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	const userID = "it-update-profile"
	cleanupUser(t, userID)
	defer cleanupUser(t, userID)

	var profile models.UserProfile
	require.Equal(t, http.StatusOK, do(t, userID, http.MethodGet, "/profile", nil, &profile))
	assert.Equal(t, 1, profile.Level)

	body := map[string]any{"name": "Ana", "characterType": "warrior", "targetLanguage": "fr"}
	require.Equal(t, http.StatusOK, do(t, userID, http.MethodPatch, "/profile", body, &profile))
	assert.Equal(t, "Ana", profile.Name)
	assert.Equal(t, models.CharacterWarrior, profile.CharacterType)

	profileRepo := repositories.NewProfileRepository(testDB, testLogger)
	require.Eventually(t, func() bool {
		stored, err := profileRepo.Get(context.Background(), userID)
		return err == nil && stored.Name == "Ana" && stored.TargetLanguage == "fr"
	}, 5*time.Second, 50*time.Millisecond)

	assert.Equal(t, http.StatusBadRequest, do(t, userID, http.MethodPatch, "/profile", map[string]any{"xp": 1000}, nil))
}
