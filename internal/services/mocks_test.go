package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/questlingo/backend/internal/models"
	"github.com/questlingo/backend/internal/writeback"
)

// mockProfileRepository is a mock implementation of the profile repositories
type mockProfileRepository struct {
	mu        sync.Mutex
	profiles  map[string]models.UserProfile
	getErr    error
	createErr error
	updateErr error
	addErr    error
	getCalls  int
	created   []models.UserProfile
	updates   []models.ProfileUpdate
}

func newMockProfileRepository(profiles ...models.UserProfile) *mockProfileRepository {
	m := &mockProfileRepository{profiles: make(map[string]models.UserProfile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockProfileRepository) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %w", models.ErrNotFound)
	}
	p = p.Clone()
	return &p, nil
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, profile.Clone())
	if _, ok := m.profiles[profile.ID]; !ok {
		m.profiles[profile.ID] = profile.Clone()
	}
	return nil
}

func (m *mockProfileRepository) Update(ctx context.Context, userID string, update *models.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return fmt.Errorf("profile %w", models.ErrNotFound)
	}
	m.updates = append(m.updates, *update)
	m.profiles[userID] = update.Apply(p)
	return nil
}

func (m *mockProfileRepository) AddCompletedLesson(ctx context.Context, userID, lessonID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return false, m.addErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return false, fmt.Errorf("profile %w", models.ErrNotFound)
	}
	if p.HasCompleted(lessonID) {
		return false, nil
	}
	p.CompletedLessonIDs = append(p.CompletedLessonIDs, lessonID)
	m.profiles[userID] = p
	return true, nil
}

func (m *mockProfileRepository) profile(userID string) models.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID].Clone()
}

// mockProgressRepository is a mock implementation of the progress repositories
type mockProgressRepository struct {
	mu        sync.Mutex
	records   map[string]models.LessonProgress
	getErr    error
	listErr   error
	updateErr error
	created   []models.LessonProgress
	updates   []models.ProgressUpdate
}

func newMockProgressRepository(records ...models.LessonProgress) *mockProgressRepository {
	m := &mockProgressRepository{records: make(map[string]models.LessonProgress)}
	for _, r := range records {
		m.records[r.UserID+"/"+r.LessonID] = r
	}
	return m
}

func (m *mockProgressRepository) Get(ctx context.Context, userID, lessonID string) (*models.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.records[userID+"/"+lessonID]
	if !ok {
		return nil, fmt.Errorf("lesson progress %w", models.ErrNotFound)
	}
	r = r.Clone()
	return &r, nil
}

func (m *mockProgressRepository) ListByUser(ctx context.Context, userID string) ([]models.LessonProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.LessonProgress
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *mockProgressRepository) Create(ctx context.Context, progress *models.LessonProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, progress.Clone())
	key := progress.UserID + "/" + progress.LessonID
	if _, ok := m.records[key]; !ok {
		m.records[key] = progress.Clone()
	}
	return nil
}

func (m *mockProgressRepository) Update(ctx context.Context, userID, lessonID string, update *models.ProgressUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.records[userID+"/"+lessonID]; !ok {
		return fmt.Errorf("lesson progress %w", models.ErrNotFound)
	}
	m.updates = append(m.updates, *update)
	return nil
}

// recordingDispatcher keeps every dispatched intent
type recordingDispatcher struct {
	mu      sync.Mutex
	intents []writeback.Intent
}

func (d *recordingDispatcher) Dispatch(intent writeback.Intent) writeback.Receipt {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.intents = append(d.intents, intent)
	return writeback.Receipt{Kind: intent.Kind(), Key: intent.Key(), Accepted: true}
}

func (d *recordingDispatcher) kinds() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	kinds := make([]string, 0, len(d.intents))
	for _, i := range d.intents {
		kinds = append(kinds, i.Kind())
	}
	return kinds
}

func (d *recordingDispatcher) last(kind string) writeback.Intent {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := len(d.intents) - 1; i >= 0; i-- {
		if d.intents[i].Kind() == kind {
			return d.intents[i]
		}
	}
	return nil
}

// stubProfiles returns a fixed profile
type stubProfiles struct {
	profile *models.UserProfile
	err     error
}

func (s *stubProfiles) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	p := s.profile.Clone()
	return &p, nil
}
