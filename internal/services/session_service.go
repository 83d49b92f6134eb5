package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/questlingo/backend/internal/models"
	"github.com/questlingo/backend/internal/runner"
	"github.com/questlingo/backend/internal/telemetry"
	"github.com/questlingo/backend/internal/writeback"
	"go.uber.org/zap"
)

// ProgressRepository is the interface that wraps methods for lesson progress data access
type ProgressRepository interface {
	// Get retrieves the progress of a user in a lesson.
	//
	// A missing record is reported with an error wrapping models.ErrNotFound.
	Get(ctx context.Context, userID, lessonID string) (*models.LessonProgress, error)
	// ListByUser retrieves every progress record of a user
	ListByUser(ctx context.Context, userID string) ([]models.LessonProgress, error)
}

// SessionConfig holds the deadlines used by lesson sessions
type SessionConfig struct {
	// RemoteCallTimeout bounds reads from the remote store
	RemoteCallTimeout time.Duration
	// ProfileUpdateTimeout bounds the remote profile update on completion
	ProfileUpdateTimeout time.Duration
	// CompletionTimeout bounds the whole completion sequence
	CompletionTimeout time.Duration
	// IdleTTL evicts sessions in progress that were not touched for this long
	IdleTTL time.Duration
	// CompletedTTL keeps completed sessions readable for this long
	CompletedTTL time.Duration
}

const (
	defaultIdleTTL      = 30 * time.Minute
	defaultCompletedTTL = 5 * time.Minute
)

// SessionView is a session snapshot together with the step to show
type SessionView struct {
	runner.Snapshot
	Step *models.Step `json:"step,omitempty"`
	// NextLessonID is set once the lesson is completed
	NextLessonID string `json:"nextLessonId,omitempty"`
}

// AnswerResult is the evaluation of a submitted answer
type AnswerResult struct {
	Feedback models.AnswerFeedback `json:"feedback"`
	Session  SessionView           `json:"session"`
}

type sessionKey struct {
	userID   string
	lessonID string
}

type sessionEntry struct {
	runner   *runner.Runner
	lastSeen time.Time
}

type sessionService struct {
	catalog  LessonCatalog
	progress ProgressRepository
	profiles ProfileProvider
	store    *ProfileStore
	remote   runner.RemoteProfiles
	sync     writeback.Dispatcher
	observer telemetry.Observer
	cfg      SessionConfig
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.Mutex
	sessions  map[sessionKey]*sessionEntry
	lastSweep time.Time
}

// NewSessionService creates a new session service
func NewSessionService(
	lessons LessonCatalog,
	progressRepo ProgressRepository,
	profiles ProfileProvider,
	store *ProfileStore,
	remote runner.RemoteProfiles,
	dispatcher writeback.Dispatcher,
	observer telemetry.Observer,
	cfg SessionConfig,
	logger *zap.Logger,
) *sessionService {
	if observer == nil {
		observer = telemetry.Nop()
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.CompletedTTL <= 0 {
		cfg.CompletedTTL = defaultCompletedTTL
	}
	return &sessionService{
		catalog:  lessons,
		progress: progressRepo,
		profiles: profiles,
		store:    store,
		remote:   remote,
		sync:     dispatcher,
		observer: observer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[sessionKey]*sessionEntry),
	}
}

// StartSession starts a lesson for a user, or returns the session already
// running for it.
//
// Unfinished progress in the remote store is resumed. A completed lesson is
// replayed from the first step.
func (s *sessionService) StartSession(ctx context.Context, userID, lessonID string) (*SessionView, error) {
	lesson, err := s.catalog.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return nil, err
	}

	key := sessionKey{userID: userID, lessonID: lessonID}
	if r := s.active(key); r != nil {
		view := s.view(r)
		return &view, nil
	}

	existing := s.loadProgress(ctx, userID, lessonID)

	r, err := runner.New(lesson, userID, runner.Config{
		ProfileUpdateTimeout: s.cfg.ProfileUpdateTimeout,
		CompletionTimeout:    s.cfg.CompletionTimeout,
	}, runner.Deps{
		Profiles: s.store,
		Remote:   s.remote,
		Sync:     s.sync,
		Monitor:  s.observer.Start(context.WithoutCancel(ctx), lessonID, userID),
		Logger:   s.logger,
		Now:      s.now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if _, err := r.Start(existing); err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	s.mu.Lock()
	if cur, ok := s.sessions[key]; ok && cur.runner.State() != runner.StateCompleted {
		cur.lastSeen = s.now()
		s.mu.Unlock()
		r.Close()
		view := s.view(cur.runner)
		return &view, nil
	}
	if prev, ok := s.sessions[key]; ok {
		prev.runner.Close()
	}
	s.sessions[key] = &sessionEntry{runner: r, lastSeen: s.now()}
	s.sweepLocked()
	s.mu.Unlock()

	s.logger.Info("Lesson session started",
		zap.String("user_id", userID),
		zap.String("lesson_id", lessonID),
		zap.Bool("resumed", existing != nil),
	)
	view := s.view(r)
	return &view, nil
}

// GetSession returns the current view of a session
func (s *sessionService) GetSession(ctx context.Context, userID, lessonID string) (*SessionView, error) {
	r, err := s.lookup(userID, lessonID)
	if err != nil {
		return nil, err
	}
	view := s.view(r)
	return &view, nil
}

// Answer evaluates a response to the current step of a session
func (s *sessionService) Answer(ctx context.Context, userID, lessonID string, resp models.StepResponse) (*AnswerResult, error) {
	r, err := s.lookup(userID, lessonID)
	if err != nil {
		return nil, err
	}
	if r.State() == runner.StateInProgress {
		if err := validateResponse(r.CurrentStep(), resp); err != nil {
			return nil, err
		}
	}

	feedback, _, err := r.Submit(resp)
	if err != nil {
		return nil, err
	}
	return &AnswerResult{Feedback: feedback, Session: s.view(r)}, nil
}

// Advance moves a session to its next step, completing the lesson after the last one
func (s *sessionService) Advance(ctx context.Context, userID, lessonID string) (*SessionView, error) {
	r, err := s.lookup(userID, lessonID)
	if err != nil {
		return nil, err
	}
	if _, _, err := r.Advance(ctx); err != nil {
		return nil, err
	}
	view := s.view(r)
	return &view, nil
}

// Complete finishes a session. While another completion of the same session
// is running the view is returned in the completing state.
func (s *sessionService) Complete(ctx context.Context, userID, lessonID string) (*SessionView, error) {
	r, err := s.lookup(userID, lessonID)
	if err != nil {
		return nil, err
	}
	if _, err := r.Complete(ctx); err != nil {
		return nil, err
	}
	view := s.view(r)
	return &view, nil
}

// ListProgress returns the progress records of a user. Records of running
// sessions take precedence over the remote ones.
func (s *sessionService) ListProgress(ctx context.Context, userID string) ([]models.LessonProgress, error) {
	remoteCtx, cancel := context.WithTimeout(ctx, s.cfg.RemoteCallTimeout)
	defer cancel()

	records, err := s.progress.ListByUser(remoteCtx, userID)
	if err != nil {
		s.logger.Warn("failed to list remote progress, using local sessions",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		records = nil
	}

	local := make(map[string]models.LessonProgress)
	s.mu.Lock()
	for key, e := range s.sessions {
		if key.userID == userID {
			local[key.lessonID] = e.runner.Snapshot().Progress
		}
	}
	s.mu.Unlock()

	result := make([]models.LessonProgress, 0, len(records)+len(local))
	for _, rec := range records {
		if p, ok := local[rec.LessonID]; ok {
			result = append(result, p)
			delete(local, rec.LessonID)
			continue
		}
		result = append(result, rec)
	}
	for _, p := range local {
		result = append(result, p)
	}
	return result, nil
}

// Close stops the monitors of every session
func (s *sessionService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.sessions {
		e.runner.Close()
		delete(s.sessions, key)
	}
}

func (s *sessionService) active(key sessionKey) *runner.Runner {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[key]
	if !ok || e.runner.State() == runner.StateCompleted {
		return nil
	}
	if s.expiredLocked(e, s.now()) {
		e.runner.Close()
		delete(s.sessions, key)
		return nil
	}
	e.lastSeen = s.now()
	return e.runner
}

func (s *sessionService) lookup(userID, lessonID string) (*runner.Runner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey{userID: userID, lessonID: lessonID}
	e, ok := s.sessions[key]
	if ok && s.expiredLocked(e, s.now()) {
		e.runner.Close()
		delete(s.sessions, key)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("%w: user %s, lesson %s", models.ErrSessionNotFound, userID, lessonID)
	}
	if e.runner.State() != runner.StateCompleted {
		e.lastSeen = s.now()
	}
	return e.runner, nil
}

// expiredLocked reports whether a session may be dropped. A completion in
// flight is never dropped. A completed session lives for CompletedTTL after
// its last use in progress.
func (s *sessionService) expiredLocked(e *sessionEntry, now time.Time) bool {
	idle := now.Sub(e.lastSeen)
	switch e.runner.State() {
	case runner.StateCompleting:
		return false
	case runner.StateCompleted:
		return idle >= s.cfg.CompletedTTL
	default:
		return idle >= s.cfg.IdleTTL
	}
}

// sweepLocked drops expired sessions, at most once per CompletedTTL
func (s *sessionService) sweepLocked() {
	now := s.now()
	if now.Sub(s.lastSweep) < s.cfg.CompletedTTL {
		return
	}
	s.lastSweep = now
	for key, e := range s.sessions {
		if s.expiredLocked(e, now) {
			e.runner.Close()
			delete(s.sessions, key)
		}
	}
}

// loadProgress reads resumable progress from the remote store. Any failure
// starts the lesson fresh.
func (s *sessionService) loadProgress(ctx context.Context, userID, lessonID string) *models.LessonProgress {
	remoteCtx, cancel := context.WithTimeout(ctx, s.cfg.RemoteCallTimeout)
	defer cancel()

	existing, err := s.progress.Get(remoteCtx, userID, lessonID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("failed to load lesson progress, starting fresh",
				zap.String("user_id", userID),
				zap.String("lesson_id", lessonID),
				zap.Error(err),
			)
		}
		return nil
	}
	if existing.IsCompleted {
		return nil
	}
	return existing
}

func (s *sessionService) view(r *runner.Runner) SessionView {
	snap := r.Snapshot()
	view := SessionView{Snapshot: snap}
	if snap.State == runner.StateInProgress {
		step := *r.CurrentStep()
		view.Step = &step
	}
	if snap.State == runner.StateCompleted {
		view.NextLessonID = s.catalog.NextLessonID(snap.LessonID)
	}
	return view
}

func validateResponse(step *models.Step, resp models.StepResponse) error {
	switch step.Kind {
	case models.StepKindMultipleChoice:
		if resp.OptionIndex == nil || *resp.OptionIndex < 0 {
			return fmt.Errorf("%w: an option must be selected", models.ErrInvalidInput)
		}
	case models.StepKindFreeText:
		if strings.TrimSpace(resp.Text) == "" {
			return fmt.Errorf("%w: answer must not be empty", models.ErrInvalidInput)
		}
	}
	return nil
}
