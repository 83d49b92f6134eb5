package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questlingo/backend/internal/models"
	"github.com/questlingo/backend/internal/progress"
	"github.com/questlingo/backend/internal/rewards"
	"go.uber.org/zap"
)

// CompletionProfileRepository is the profile data access used to record completions
type CompletionProfileRepository interface {
	// Get retrieves a profile with its completed lessons
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Update applies a partial update to an existing profile
	Update(ctx context.Context, userID string, update *models.ProfileUpdate) error
	// AddCompletedLesson adds a lesson to the completed set.
	//
	// The returned flag reports whether the lesson was newly added.
	AddCompletedLesson(ctx context.Context, userID, lessonID string) (bool, error)
}

// CompletionProgressRepository is the progress data access used to record completions
type CompletionProgressRepository interface {
	// Create inserts a progress record. An existing record is left untouched.
	Create(ctx context.Context, progress *models.LessonProgress) error
	// Update applies a partial update to an existing progress record
	Update(ctx context.Context, userID, lessonID string, update *models.ProgressUpdate) error
}

// LessonLookup returns catalog lessons by id
type LessonLookup interface {
	GetLesson(id string) (*models.Lesson, error)
}

type completionService struct {
	profiles CompletionProfileRepository
	progress CompletionProgressRepository
	lessons  LessonLookup
	logger   *zap.Logger
	now      func() time.Time
}

// NewCompletionService creates the remote completion recorder
func NewCompletionService(profiles CompletionProfileRepository, progressRepo CompletionProgressRepository, lessons LessonLookup, logger *zap.Logger) *completionService {
	return &completionService{
		profiles: profiles,
		progress: progressRepo,
		lessons:  lessons,
		logger:   logger,
		now:      time.Now,
	}
}

// CompleteLessonAndUpdateUser records a completed lesson in the remote store.
//
// The progress record is marked completed and the lesson is added to the
// completed set of the user. XP is granted only when the lesson was not in
// that set before, so replaying the same completion never grants XP twice.
// The streak is recomputed from the stored last active date.
func (s *completionService) CompleteLessonAndUpdateUser(ctx context.Context, userID, lessonID string, score, timeSpent int) (*models.CompletionResult, error) {
	lesson, err := s.lessons.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	if err := s.markProgressCompleted(ctx, userID, lesson, score, timeSpent, now); err != nil {
		return nil, err
	}

	added, err := s.profiles.AddCompletedLesson(ctx, userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to add completed lesson: %w", err)
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	xpGained := 0
	if added {
		xpGained = rewards.ComputeXPGain(lesson.XPReward, score)
	}
	newXP := profile.XP + xpGained
	newLevel := rewards.ComputeLevel(newXP)
	newStreak := rewards.ComputeStreak(*profile, now)

	if err := s.profiles.Update(ctx, userID, &models.ProfileUpdate{
		XP:             &newXP,
		Level:          &newLevel,
		Streak:         &newStreak,
		LastActiveDate: &now,
	}); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Lesson completion recorded",
		zap.String("user_id", userID),
		zap.String("lesson_id", lessonID),
		zap.Int("score", score),
		zap.Int("xp_gained", xpGained),
		zap.Bool("first_completion", added),
	)

	return &models.CompletionResult{
		XPGained:  xpGained,
		NewXP:     newXP,
		NewLevel:  newLevel,
		NewStreak: newStreak,
	}, nil
}

func (s *completionService) markProgressCompleted(ctx context.Context, userID string, lesson *models.Lesson, score, timeSpent int, now time.Time) error {
	completed := progress.MarkCompleted(progress.Init(userID, lesson.ID, now), lesson, score, timeSpent, now)
	update := progress.CompletionUpdate(completed)

	err := s.progress.Update(ctx, userID, lesson.ID, &update)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to update lesson progress: %w", err)
	}

	if err := s.progress.Create(ctx, &completed); err != nil {
		return fmt.Errorf("failed to create lesson progress: %w", err)
	}
	return nil
}
