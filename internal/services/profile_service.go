package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/questlingo/backend/internal/catalog"
	"github.com/questlingo/backend/internal/models"
	"github.com/questlingo/backend/internal/rewards"
	"github.com/questlingo/backend/internal/writeback"
	"go.uber.org/zap"
)

// ProfileRepository is the interface that wraps methods for user profile data access
type ProfileRepository interface {
	// Get retrieves a profile with its completed lessons.
	//
	// A missing profile is reported with an error wrapping models.ErrNotFound.
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	// Create inserts a profile. An existing profile is left untouched.
	Create(ctx context.Context, profile *models.UserProfile) error
	// Update applies a partial update to an existing profile.
	//
	// Completed lesson ids in the update are added to the completed set.
	Update(ctx context.Context, userID string, update *models.ProfileUpdate) error
}

const maxNameLength = 100

type profileService struct {
	repo          ProfileRepository
	store         *ProfileStore
	sync          writeback.Dispatcher
	remoteTimeout time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewProfileService creates a new profile service
func NewProfileService(repo ProfileRepository, store *ProfileStore, dispatcher writeback.Dispatcher, remoteTimeout time.Duration, logger *zap.Logger) *profileService {
	return &profileService{
		repo:          repo,
		store:         store,
		sync:          dispatcher,
		remoteTimeout: remoteTimeout,
		logger:        logger,
		now:           time.Now,
	}
}

// GetProfile returns the local profile of a user.
//
// On first access the profile is read from the remote store. A user unknown
// to the remote store gets a default profile, which is persisted best effort.
// Level is always recomputed from XP.
func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if p, ok := s.store.Get(userID); ok {
		return &p, nil
	}

	remoteCtx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	var profile models.UserProfile
	remote, err := s.repo.Get(remoteCtx, userID)
	switch {
	case err == nil:
		profile = *remote
		profile.Level = rewards.ComputeLevel(profile.XP)
		if profile.CompletedLessonIDs == nil {
			profile.CompletedLessonIDs = []string{}
		}
	case errors.Is(err, models.ErrNotFound):
		profile = newDefaultProfile(userID, s.now())
		if err := s.repo.Create(remoteCtx, &profile); err != nil {
			s.logger.Warn("failed to persist default profile", zap.String("user_id", userID), zap.Error(err))
		}
	default:
		s.logger.Error("failed to load profile", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	stored := s.store.LoadOrStore(profile)
	return &stored, nil
}

// UpdateProfile changes the settings of a profile.
//
// Only name, character type and languages may be changed here; rewards are
// owned by lesson completion.
func (s *profileService) UpdateProfile(ctx context.Context, userID string, update *models.ProfileUpdate) (*models.UserProfile, error) {
	settings, err := validateSettings(update)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	updated := s.store.Mutate(userID, func(p models.UserProfile) models.UserProfile {
		p = settings.Apply(p)
		p.UpdatedAt = now
		return p
	})

	_ = s.sync.Dispatch(&writeback.ProfileUpdate{UserID: userID, Update: *settings})
	return &updated, nil
}

func validateSettings(update *models.ProfileUpdate) (*models.ProfileUpdate, error) {
	if update == nil {
		return nil, fmt.Errorf("%w: empty update", models.ErrInvalidInput)
	}
	if update.XP != nil || update.Level != nil || update.Streak != nil ||
		update.LastActiveDate != nil || update.CompletedLessonIDs != nil {
		return nil, fmt.Errorf("%w: progress fields cannot be changed", models.ErrInvalidInput)
	}

	settings := &models.ProfileUpdate{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" || len([]rune(name)) > maxNameLength {
			return nil, fmt.Errorf("%w: name must be 1 to %d characters", models.ErrInvalidInput, maxNameLength)
		}
		settings.Name = &name
	}
	if update.CharacterType != nil {
		if !update.CharacterType.Valid() {
			return nil, fmt.Errorf("%w: unknown character type %q", models.ErrInvalidInput, *update.CharacterType)
		}
		ct := *update.CharacterType
		settings.CharacterType = &ct
	}
	if update.SourceLanguage != nil {
		if _, ok := catalog.LanguageByCode(*update.SourceLanguage); !ok {
			return nil, fmt.Errorf("%w: unsupported source language %q", models.ErrInvalidInput, *update.SourceLanguage)
		}
		lang := *update.SourceLanguage
		settings.SourceLanguage = &lang
	}
	if update.TargetLanguage != nil {
		if _, ok := catalog.LanguageByCode(*update.TargetLanguage); !ok {
			return nil, fmt.Errorf("%w: unsupported target language %q", models.ErrInvalidInput, *update.TargetLanguage)
		}
		lang := *update.TargetLanguage
		settings.TargetLanguage = &lang
	}
	if settings.Name == nil && settings.CharacterType == nil && settings.SourceLanguage == nil && settings.TargetLanguage == nil {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrInvalidInput)
	}
	return settings, nil
}
