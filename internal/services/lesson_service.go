package services

import (
	"context"
	"fmt"

	"github.com/questlingo/backend/internal/catalog"
	"github.com/questlingo/backend/internal/models"
	"go.uber.org/zap"
)

// LessonCatalog is the read-only lesson table
type LessonCatalog interface {
	// GetLesson returns a lesson by id, or an error wrapping catalog.ErrLessonNotFound
	GetLesson(id string) (*models.Lesson, error)
	// WithLockStatus lists the lessons of a language with lock and completion flags
	WithLockStatus(code string, completed []string) []models.LessonListItem
	// NextLessonID returns the lesson that follows id in its language, or ""
	NextLessonID(id string) string
}

// ProfileProvider returns the local profile of a user, loading it on first access
type ProfileProvider interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

type lessonService struct {
	catalog  LessonCatalog
	profiles ProfileProvider
	logger   *zap.Logger
}

// NewLessonService creates a new lesson service
func NewLessonService(lessons LessonCatalog, profiles ProfileProvider, logger *zap.Logger) *lessonService {
	return &lessonService{
		catalog:  lessons,
		profiles: profiles,
		logger:   logger,
	}
}

// ListLessons lists the lessons of a language for the dashboard of a user.
// An empty language means the user's target language.
func (s *lessonService) ListLessons(ctx context.Context, userID, language string) ([]models.LessonListItem, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if language == "" {
		language = profile.TargetLanguage
	}
	if language == "" {
		language = models.DefaultTargetLanguage
	}
	if _, ok := catalog.LanguageByCode(language); !ok {
		return nil, fmt.Errorf("%w: unsupported language %q", models.ErrInvalidInput, language)
	}

	return s.catalog.WithLockStatus(language, profile.CompletedLessonIDs), nil
}

// GetLesson returns a lesson. Answers are not part of its JSON form.
func (s *lessonService) GetLesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
	return s.catalog.GetLesson(lessonID)
}

// Languages returns the supported languages
func (s *lessonService) Languages() []models.Language {
	return catalog.SupportedLanguages()
}

// Characters returns the selectable character classes
func (s *lessonService) Characters() []models.CharacterInfo {
	return catalog.Characters()
}
