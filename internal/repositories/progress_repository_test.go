package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/questlingo/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var progressColumns = []string{
	"user_id", "lesson_id", "current_step", "completed_steps", "is_completed",
	"score", "time_spent", "started_at", "completed_at",
}

// setupProgressRepository creates a repository with a mock database
func setupProgressRepository(t *testing.T) (*progressRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	repo := NewProgressRepository(db, logger)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestNewProgressRepository(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	db := &sql.DB{}

	repo := NewProgressRepository(db, logger)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
	assert.Equal(t, logger, repo.logger)
}

func TestProgressRepository_Get(t *testing.T) {
	startedAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	completedAt := startedAt.Add(time.Minute)
	query := regexp.QuoteMeta("FROM lesson_progress WHERE user_id = ? AND lesson_id = ?")

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		validate      func(*testing.T, *models.LessonProgress)
	}{
		{
			name: "success in progress",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(progressColumns).
					AddRow("u1", "l1", 2, `["s1","s2"]`, false, 0, 0, startedAt, nil)
				mock.ExpectQuery(query).WithArgs("u1", "l1").WillReturnRows(rows)
			},
			validate: func(t *testing.T, p *models.LessonProgress) {
				assert.Equal(t, 2, p.CurrentStep)
				assert.Equal(t, []string{"s1", "s2"}, p.CompletedSteps)
				assert.False(t, p.IsCompleted)
				assert.Equal(t, startedAt, p.StartedAt)
				assert.Nil(t, p.CompletedAt)
			},
		},
		{
			name: "success completed",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(progressColumns).
					AddRow("u1", "l1", 3, `["s1","s2","s3"]`, true, 100, 60, startedAt, completedAt)
				mock.ExpectQuery(query).WithArgs("u1", "l1").WillReturnRows(rows)
			},
			validate: func(t *testing.T, p *models.LessonProgress) {
				assert.True(t, p.IsCompleted)
				assert.Equal(t, 100, p.Score)
				assert.Equal(t, 60, p.TimeSpent)
				require.NotNil(t, p.CompletedAt)
				assert.Equal(t, completedAt, *p.CompletedAt)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("u1", "l1").WillReturnError(sql.ErrNoRows)
			},
			expectedError: models.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("u1", "l1").WillReturnError(errors.New("connection refused"))
			},
			expectedError: errors.New("failed to get lesson progress: connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupProgressRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.Get(context.Background(), "u1", "l1")

			if tt.expectedError != nil {
				require.Error(t, err)
				if errors.Is(tt.expectedError, models.ErrNotFound) {
					assert.ErrorIs(t, err, models.ErrNotFound)
				} else {
					assert.EqualError(t, err, tt.expectedError.Error())
				}
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				tt.validate(t, result)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProgressRepository_ListByUser(t *testing.T) {
	repo, mock, cleanup := setupProgressRepository(t)
	defer cleanup()

	startedAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(progressColumns).
		AddRow("u1", "l1", 5, `["s1"]`, true, 80, 30, startedAt, startedAt).
		AddRow("u1", "l2", 1, `[]`, false, 0, 0, startedAt, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM lesson_progress WHERE user_id = ? ORDER BY started_at")).
		WithArgs("u1").
		WillReturnRows(rows)

	result, err := repo.ListByUser(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "l1", result[0].LessonID)
	assert.Equal(t, []string{}, result[1].CompletedSteps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressRepository_ListByUser_ScanError(t *testing.T) {
	repo, mock, cleanup := setupProgressRepository(t)
	defer cleanup()

	rows := sqlmock.NewRows(progressColumns).
		AddRow("u1", "l1", 5, `not json`, true, 80, 30, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM lesson_progress WHERE user_id = ?")).
		WithArgs("u1").
		WillReturnRows(rows)

	result, err := repo.ListByUser(context.Background(), "u1")

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestProgressRepository_Create(t *testing.T) {
	startedAt := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	query := regexp.QuoteMeta("INSERT IGNORE INTO lesson_progress")

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).
					WithArgs("u1", "l1", 0, `[]`, false, 0, 0, startedAt, nil).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "already exists is ignored",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).
					WithArgs("u1", "l1", 0, `[]`, false, 0, 0, startedAt, nil).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(query).WillReturnError(errors.New("deadlock"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupProgressRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), &models.LessonProgress{
				UserID:    "u1",
				LessonID:  "l1",
				StartedAt: startedAt,
			})

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProgressRepository_Update(t *testing.T) {
	step := 3
	completed := true
	score := 80

	tests := []struct {
		name          string
		update        *models.ProgressUpdate
		setupMock     func(sqlmock.Sqlmock)
		expectedError string
		notFound      bool
	}{
		{
			name:   "answer update",
			update: &models.ProgressUpdate{CurrentStep: &step, CompletedSteps: []string{"s1", "s2", "s3"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE lesson_progress SET completed_steps = IF(? >= current_step, ?, completed_steps), current_step = GREATEST(current_step, ?) WHERE user_id = ? AND lesson_id = ?")).
					WithArgs(3, `["s1","s2","s3"]`, 3, "u1", "l1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:   "steps without current step",
			update: &models.ProgressUpdate{CompletedSteps: []string{"s1"}},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("SET completed_steps = ? WHERE")).
					WithArgs(`["s1"]`, "u1", "l1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:   "completion update",
			update: &models.ProgressUpdate{IsCompleted: &completed, Score: &score},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("SET is_completed = ?, score = ?")).
					WithArgs(true, 80, "u1", "l1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:   "not found",
			update: &models.ProgressUpdate{CurrentStep: &step},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE lesson_progress")).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			notFound: true,
		},
		{
			name:          "no fields",
			update:        &models.ProgressUpdate{},
			setupMock:     func(mock sqlmock.Sqlmock) {},
			expectedError: "no fields to update",
		},
		{
			name:   "database error",
			update: &models.ProgressUpdate{CurrentStep: &step},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta("UPDATE lesson_progress")).
					WillReturnError(errors.New("lock wait timeout"))
			},
			expectedError: "failed to update lesson progress: lock wait timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupProgressRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Update(context.Background(), "u1", "l1", tt.update)

			switch {
			case tt.notFound:
				assert.ErrorIs(t, err, models.ErrNotFound)
			case tt.expectedError != "":
				assert.EqualError(t, err, tt.expectedError)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
