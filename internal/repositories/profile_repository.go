package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/questlingo/backend/internal/models"
	"go.uber.org/zap"
)

type profileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new user profile repository
func NewProfileRepository(db *sql.DB, logger *zap.Logger) *profileRepository {
	return &profileRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a profile together with its completed lessons
func (r *profileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `
		SELECT id, email, name, xp, level, streak, last_active_date, character_type,
			source_language, target_language, created_at, updated_at
		FROM user_profiles
		WHERE id = ?
		LIMIT 1
	`

	profile := &models.UserProfile{}
	var lastActive sql.NullTime
	var characterType string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.Email,
		&profile.Name,
		&profile.XP,
		&profile.Level,
		&profile.Streak,
		&lastActive,
		&characterType,
		&profile.SourceLanguage,
		&profile.TargetLanguage,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user profile %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	profile.CharacterType = models.CharacterType(characterType)
	if lastActive.Valid {
		profile.LastActiveDate = lastActive.Time
	}

	completed, err := r.GetCompletedLessons(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.CompletedLessonIDs = completed

	return profile, nil
}

// Create inserts a profile, leaving an existing one untouched
func (r *profileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	query := `
		INSERT IGNORE INTO user_profiles
			(id, email, name, xp, level, streak, last_active_date, character_type, source_language, target_language, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var lastActive any
	if !profile.LastActiveDate.IsZero() {
		lastActive = profile.LastActiveDate
	}

	if _, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.Email,
		profile.Name,
		profile.XP,
		profile.Level,
		profile.Streak,
		lastActive,
		string(profile.CharacterType),
		profile.SourceLanguage,
		profile.TargetLanguage,
		profile.CreatedAt,
		profile.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to create user profile: %w", err)
	}
	return nil
}

// Update applies a partial update to a profile. Completed lessons in the
// update are added to the completed set; lessons are never removed from it.
func (r *profileRepository) Update(ctx context.Context, userID string, update *models.ProfileUpdate) error {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP(3)"}
	args := []any{}
	if update.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *update.Name)
	}
	if update.CharacterType != nil {
		setClauses = append(setClauses, "character_type = ?")
		args = append(args, string(*update.CharacterType))
	}
	if update.SourceLanguage != nil {
		setClauses = append(setClauses, "source_language = ?")
		args = append(args, *update.SourceLanguage)
	}
	if update.TargetLanguage != nil {
		setClauses = append(setClauses, "target_language = ?")
		args = append(args, *update.TargetLanguage)
	}
	if update.XP != nil {
		setClauses = append(setClauses, "xp = ?")
		args = append(args, *update.XP)
	}
	if update.Level != nil {
		setClauses = append(setClauses, "level = ?")
		args = append(args, *update.Level)
	}
	if update.Streak != nil {
		setClauses = append(setClauses, "streak = ?")
		args = append(args, *update.Streak)
	}
	if update.LastActiveDate != nil {
		setClauses = append(setClauses, "last_active_date = ?")
		args = append(args, *update.LastActiveDate)
	}
	if len(setClauses) == 1 && update.CompletedLessonIDs == nil {
		return fmt.Errorf("no fields to update")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args = append(args, userID)
	query := fmt.Sprintf(`
		UPDATE user_profiles
		SET %s
		WHERE id = ?
	`, strings.Join(setClauses, ", "))

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user profile %w", models.ErrNotFound)
	}

	for _, lessonID := range update.CompletedLessonIDs {
		if _, err := tx.ExecContext(ctx, insertCompletedLessonQuery, userID, lessonID); err != nil {
			return fmt.Errorf("failed to add completed lesson: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const insertCompletedLessonQuery = `INSERT IGNORE INTO user_completed_lessons (user_id, lesson_id) VALUES (?, ?)`

// AddCompletedLesson adds a lesson to the completed set and reports whether
// it was not there before.
func (r *profileRepository) AddCompletedLesson(ctx context.Context, userID, lessonID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, insertCompletedLessonQuery, userID, lessonID)
	if err != nil {
		return false, fmt.Errorf("failed to add completed lesson: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// GetCompletedLessons retrieves the ids of the lessons a user completed
func (r *profileRepository) GetCompletedLessons(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT lesson_id
		FROM user_completed_lessons
		WHERE user_id = ?
		ORDER BY completed_at, lesson_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("failed to query completed lessons", zap.Error(err))
		return nil, fmt.Errorf("failed to query completed lessons: %w", err)
	}
	defer rows.Close()

	lessons := []string{}
	for rows.Next() {
		var lessonID string
		if err := rows.Scan(&lessonID); err != nil {
			r.logger.Error("failed to scan completed lesson", zap.Error(err))
			return nil, fmt.Errorf("failed to scan completed lesson: %w", err)
		}
		lessons = append(lessons, lessonID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}
