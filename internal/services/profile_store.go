package services

import (
	"sync"
	"time"

	"github.com/questlingo/backend/internal/models"
)

// ProfileStore is the in-memory, authoritative copy of the profiles of
// active users. The remote store only mirrors it.
type ProfileStore struct {
	mu       sync.Mutex
	profiles map[string]models.UserProfile
	now      func() time.Time
}

// NewProfileStore creates an empty profile store
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[string]models.UserProfile),
		now:      time.Now,
	}
}

// Get returns a copy of the stored profile
func (s *ProfileStore) Get(userID string) (models.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	return p.Clone(), ok
}

// LoadOrStore keeps an existing profile, or stores p when none is present
func (s *ProfileStore) LoadOrStore(p models.UserProfile) models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.profiles[p.ID]; ok {
		return existing.Clone()
	}
	s.profiles[p.ID] = p.Clone()
	return p.Clone()
}

// Mutate applies fn to the stored profile under the store lock. A user
// without a profile starts from the default one.
func (s *ProfileStore) Mutate(userID string, fn func(models.UserProfile) models.UserProfile) models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = newDefaultProfile(userID, s.now())
	}
	p = fn(p.Clone())
	s.profiles[userID] = p
	return p.Clone()
}

// newDefaultProfile builds the profile a user gets on first access
func newDefaultProfile(userID string, now time.Time) models.UserProfile {
	return models.UserProfile{
		ID:                 userID,
		XP:                 0,
		Level:              1,
		Streak:             0,
		CompletedLessonIDs: []string{},
		CharacterType:      models.CharacterMage,
		TargetLanguage:     models.DefaultTargetLanguage,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
