package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/questlingo/backend/internal/models"
	"go.uber.org/zap"
)

type progressRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProgressRepository creates a new lesson progress repository
func NewProgressRepository(db *sql.DB, logger *zap.Logger) *progressRepository {
	return &progressRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the progress of a user on a lesson
func (r *progressRepository) Get(ctx context.Context, userID, lessonID string) (*models.LessonProgress, error) {
	query := `
		SELECT user_id, lesson_id, current_step, completed_steps, is_completed, score, time_spent, started_at, completed_at
		FROM lesson_progress
		WHERE user_id = ? AND lesson_id = ?
		LIMIT 1
	`

	progress, err := scanProgress(r.db.QueryRowContext(ctx, query, userID, lessonID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lesson progress %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson progress: %w", err)
	}
	return progress, nil
}

// ListByUser retrieves every progress record of a user
func (r *progressRepository) ListByUser(ctx context.Context, userID string) ([]models.LessonProgress, error) {
	query := `
		SELECT user_id, lesson_id, current_step, completed_steps, is_completed, score, time_spent, started_at, completed_at
		FROM lesson_progress
		WHERE user_id = ?
		ORDER BY started_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query lesson progress", zap.Error(err))
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	result := []models.LessonProgress{}
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			r.logger.Error("failed to scan lesson progress", zap.Error(err))
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		result = append(result, *progress)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// Create inserts a progress record. An existing record for the same user and
// lesson is left untouched, which makes the call safe to retry.
func (r *progressRepository) Create(ctx context.Context, progress *models.LessonProgress) error {
	steps, err := encodeSteps(progress.CompletedSteps)
	if err != nil {
		return err
	}

	query := `
		INSERT IGNORE INTO lesson_progress
			(user_id, lesson_id, current_step, completed_steps, is_completed, score, time_spent, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query,
		progress.UserID,
		progress.LessonID,
		progress.CurrentStep,
		steps,
		progress.IsCompleted,
		progress.Score,
		progress.TimeSpent,
		progress.StartedAt,
		progress.CompletedAt,
	); err != nil {
		return fmt.Errorf("failed to create lesson progress: %w", err)
	}
	return nil
}

// Update applies a partial update to a progress record.
//
// current_step never moves backwards: a stale update arriving after a newer
// one keeps the stored step and, when it carries both fields, the stored
// completed steps too. MySQL evaluates the assignments left to right, so the
// completed steps are compared against current_step before it changes.
func (r *progressRepository) Update(ctx context.Context, userID, lessonID string, update *models.ProgressUpdate) error {
	setClauses := []string{}
	args := []any{}
	if update.CompletedSteps != nil {
		steps, err := encodeSteps(update.CompletedSteps)
		if err != nil {
			return err
		}
		if update.CurrentStep != nil {
			setClauses = append(setClauses, "completed_steps = IF(? >= current_step, ?, completed_steps)")
			args = append(args, *update.CurrentStep, steps)
		} else {
			setClauses = append(setClauses, "completed_steps = ?")
			args = append(args, steps)
		}
	}
	if update.CurrentStep != nil {
		setClauses = append(setClauses, "current_step = GREATEST(current_step, ?)")
		args = append(args, *update.CurrentStep)
	}
	if update.IsCompleted != nil {
		setClauses = append(setClauses, "is_completed = ?")
		args = append(args, *update.IsCompleted)
	}
	if update.Score != nil {
		setClauses = append(setClauses, "score = ?")
		args = append(args, *update.Score)
	}
	if update.TimeSpent != nil {
		setClauses = append(setClauses, "time_spent = ?")
		args = append(args, *update.TimeSpent)
	}
	if update.CompletedAt != nil {
		setClauses = append(setClauses, "completed_at = ?")
		args = append(args, *update.CompletedAt)
	}
	if len(setClauses) == 0 {
		return fmt.Errorf("no fields to update")
	}

	args = append(args, userID, lessonID)
	query := fmt.Sprintf(`
		UPDATE lesson_progress
		SET %s
		WHERE user_id = ? AND lesson_id = ?
	`, strings.Join(setClauses, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update lesson progress: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("lesson progress %w", models.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*models.LessonProgress, error) {
	progress := &models.LessonProgress{}
	var steps string
	var completedAt sql.NullTime
	if err := row.Scan(
		&progress.UserID,
		&progress.LessonID,
		&progress.CurrentStep,
		&steps,
		&progress.IsCompleted,
		&progress.Score,
		&progress.TimeSpent,
		&progress.StartedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(steps), &progress.CompletedSteps); err != nil {
		return nil, fmt.Errorf("failed to decode completed steps: %w", err)
	}
	if progress.CompletedSteps == nil {
		progress.CompletedSteps = []string{}
	}
	if completedAt.Valid {
		t := completedAt.Time
		progress.CompletedAt = &t
	}
	return progress, nil
}

func encodeSteps(steps []string) (string, error) {
	if steps == nil {
		steps = []string{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("failed to encode completed steps: %w", err)
	}
	return string(data), nil
}
