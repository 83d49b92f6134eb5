// Package runner drives a learner through the steps of one lesson.
//
// A Runner moves through NotStarted, InProgress, Completing and Completed.
// Local state is updated synchronously and is always authoritative; remote
// persistence is bounded by timeouts or handed to a write-back dispatcher,
// so completion is never blocked by the remote store.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/questlingo/backend/internal/models"
	"github.com/questlingo/backend/internal/progress"
	"github.com/questlingo/backend/internal/rewards"
	"github.com/questlingo/backend/internal/telemetry"
	"github.com/questlingo/backend/internal/writeback"
	"go.uber.org/zap"
)

var (
	// ErrInvalidState is returned when an operation is not allowed in the current state
	ErrInvalidState = errors.New("invalid runner state")
	// ErrMalformedLesson is returned for lessons without steps
	ErrMalformedLesson = errors.New("lesson has no steps")
)

// ProfileState is the local, authoritative holder of user profiles.
// Mutate applies fn atomically and returns the stored result.
type ProfileState interface {
	Mutate(userID string, fn func(models.UserProfile) models.UserProfile) models.UserProfile
}

// RemoteProfiles persists profile changes to the remote store
type RemoteProfiles interface {
	Update(ctx context.Context, userID string, update *models.ProfileUpdate) error
}

// Config holds the completion deadlines
type Config struct {
	// ProfileUpdateTimeout bounds the wait for the remote profile update
	ProfileUpdateTimeout time.Duration
	// CompletionTimeout bounds the whole completion sequence
	CompletionTimeout time.Duration
}

// Deps are the collaborators of a runner
type Deps struct {
	Profiles ProfileState
	Remote   RemoteProfiles
	Sync     writeback.Dispatcher
	Monitor  telemetry.Monitor
	Logger   *zap.Logger
	Now      func() time.Time
}

// Outcome is the result of a completed lesson as shown to the learner
type Outcome struct {
	LessonID       string `json:"lessonId"`
	FinalScore     int    `json:"finalScore"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalSteps     int    `json:"totalSteps"`
	XPGained       int    `json:"xpGained"`
	NewXP          int    `json:"newXp"`
	NewLevel       int    `json:"newLevel"`
	NewStreak      int    `json:"newStreak"`
	TimeSpent      int    `json:"timeSpent"`
	// Repeat is set when the lesson had been completed before and no XP was granted
	Repeat bool `json:"repeat"`
	// Fallback is set when the completion deadline fired before remote sync settled
	Fallback bool `json:"fallback"`
	// RemoteSynced reports whether the remote profile update settled in time
	RemoteSynced bool `json:"remoteSynced"`
}

// Snapshot is a read-only view of a runner
type Snapshot struct {
	LessonID       string                `json:"lessonId"`
	State          State                 `json:"state"`
	StepIndex      int                   `json:"stepIndex"`
	TotalSteps     int                   `json:"totalSteps"`
	CorrectAnswers int                   `json:"correctAnswers"`
	Progress       models.LessonProgress `json:"progress"`
	Outcome        *Outcome              `json:"outcome,omitempty"`
}

// Runner is the state machine of one lesson session
type Runner struct {
	lesson *models.Lesson
	userID string
	cfg    Config
	deps   Deps

	mu        sync.Mutex
	state     State
	stepIndex int
	correct   int
	progress  models.LessonProgress
	startedAt time.Time
	outcome   *Outcome
}

// New creates a runner for a user and lesson
func New(lesson *models.Lesson, userID string, cfg Config, deps Deps) (*Runner, error) {
	if lesson == nil || lesson.TotalSteps() == 0 {
		return nil, ErrMalformedLesson
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Monitor == nil {
		deps.Monitor = telemetry.Nop().Start(context.Background(), lesson.ID, userID)
	}

	return &Runner{
		lesson: lesson,
		userID: userID,
		cfg:    cfg,
		deps:   deps,
		state:  StateNotStarted,
	}, nil
}

// Start enters InProgress. With existing progress the runner resumes at its
// current step and counts every completed step as a correct answer;
// otherwise a fresh record is created and sent to the remote store.
func (r *Runner) Start(existing *models.LessonProgress) (Snapshot, error) {
	r.mu.Lock()
	if r.state != StateNotStarted {
		r.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: start in state %s", ErrInvalidState, r.state)
	}

	now := r.deps.Now()
	total := r.lesson.TotalSteps()
	r.startedAt = now

	fresh := existing == nil
	if fresh {
		r.progress = progress.Init(r.userID, r.lesson.ID, now)
	} else {
		r.progress = existing.Clone()
		r.correct = min(len(r.progress.CompletedSteps), total)
		r.stepIndex = max(0, min(r.progress.CurrentStep, total-1))
	}
	r.state = StateInProgress
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if fresh {
		_ = r.deps.Sync.Dispatch(&writeback.ProgressCreate{Progress: snap.Progress.Clone()})
	}
	return snap, nil
}

// CurrentStep returns the step the learner is on
func (r *Runner) CurrentStep() *models.Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &r.lesson.Steps[r.stepIndex]
}

// Submit evaluates a response to the current step and records it
func (r *Runner) Submit(resp models.StepResponse) (models.AnswerFeedback, Snapshot, error) {
	r.mu.Lock()
	if r.state != StateInProgress {
		r.mu.Unlock()
		return models.AnswerFeedback{}, Snapshot{}, fmt.Errorf("%w: answer in state %s", ErrInvalidState, r.state)
	}
	step := &r.lesson.Steps[r.stepIndex]
	correct := step.Evaluate(resp)
	snap := r.answerLocked(step, correct)
	r.mu.Unlock()

	r.afterAnswer(step.ID, correct, snap)
	return step.Feedback(correct), snap, nil
}

// Answer records the current step as answered. A correct answer is counted
// once per step; answering a recorded step again changes nothing.
func (r *Runner) Answer(correct bool) (Snapshot, error) {
	r.mu.Lock()
	if r.state != StateInProgress {
		r.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: answer in state %s", ErrInvalidState, r.state)
	}
	step := &r.lesson.Steps[r.stepIndex]
	snap := r.answerLocked(step, correct)
	r.mu.Unlock()

	r.afterAnswer(step.ID, correct, snap)
	return snap, nil
}

func (r *Runner) answerLocked(step *models.Step, correct bool) Snapshot {
	if correct && !r.progress.HasStep(step.ID) {
		r.correct++
	}
	r.progress = progress.RecordAnswer(r.progress, r.stepIndex, step.ID)
	return r.snapshotLocked()
}

func (r *Runner) afterAnswer(stepID string, correct bool, snap Snapshot) {
	r.deps.Monitor.StepAnswered(stepID, correct)
	snapshot := snap.Progress.Clone()
	_ = r.deps.Sync.Dispatch(&writeback.ProgressUpdate{
		UserID:   r.userID,
		LessonID: r.lesson.ID,
		Update:   progress.AnswerUpdate(snap.Progress),
		Snapshot: &snapshot,
	})
}

// Advance moves to the next step, or completes the lesson from the last one.
// The outcome is non-nil only when this call completed the lesson.
func (r *Runner) Advance(ctx context.Context) (Snapshot, *Outcome, error) {
	r.mu.Lock()
	if r.state != StateInProgress {
		r.mu.Unlock()
		return Snapshot{}, nil, fmt.Errorf("%w: advance in state %s", ErrInvalidState, r.state)
	}
	if r.stepIndex+1 < r.lesson.TotalSteps() {
		r.stepIndex++
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, nil, nil
	}
	r.mu.Unlock()

	outcome, err := r.Complete(ctx)
	if err != nil {
		return Snapshot{}, nil, err
	}
	return r.Snapshot(), outcome, nil
}

// Complete finishes the lesson.
//
// Only one completion sequence runs per runner: a call made while another
// one is running is a no-op and returns a nil outcome, and a call made after
// completion returns the stored outcome. A lesson in progress can only be
// completed from its last step.
func (r *Runner) Complete(ctx context.Context) (*Outcome, error) {
	r.mu.Lock()
	switch r.state {
	case StateCompleted:
		out := *r.outcome
		r.mu.Unlock()
		return &out, nil
	case StateCompleting:
		r.mu.Unlock()
		return nil, nil
	case StateNotStarted:
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: complete in state %s", ErrInvalidState, StateNotStarted)
	}
	if last := r.lesson.TotalSteps() - 1; r.stepIndex != last {
		step := r.stepIndex
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: complete at step %d of %d", ErrInvalidState, step+1, last+1)
	}
	r.state = StateCompleting
	correct := r.correct
	current := r.progress.Clone()
	r.mu.Unlock()

	out, completed := r.finish(ctx, correct, current)

	r.mu.Lock()
	r.state = StateCompleted
	r.progress = completed
	r.outcome = &out
	r.mu.Unlock()

	r.deps.Monitor.Stop()
	result := out
	return &result, nil
}

// finish computes the rewards, applies them locally and races the remote
// sync against the completion deadline.
func (r *Runner) finish(ctx context.Context, correct int, current models.LessonProgress) (Outcome, models.LessonProgress) {
	mon := r.deps.Monitor
	mon.CompletionStarted()

	now := r.deps.Now()
	total := r.lesson.TotalSteps()
	score := rewards.FinalScore(correct, total)
	xpGain := rewards.ComputeXPGain(r.lesson.XPReward, score)
	timeSpent := max(0, int(now.Sub(r.startedAt).Seconds()))

	var granted int
	var repeat bool
	profile := r.deps.Profiles.Mutate(r.userID, func(p models.UserProfile) models.UserProfile {
		repeat = p.HasCompleted(r.lesson.ID)
		streak := rewards.ComputeStreak(p, now)
		var updated models.UserProfile
		updated, granted = rewards.ApplyCompletion(p, r.lesson.ID, xpGain, streak, now)
		return updated
	})
	completed := progress.MarkCompleted(current, r.lesson, score, timeSpent, now)

	out := Outcome{
		LessonID:       r.lesson.ID,
		FinalScore:     score,
		CorrectAnswers: min(correct, total),
		TotalSteps:     total,
		XPGained:       granted,
		NewXP:          profile.XP,
		NewLevel:       profile.Level,
		NewStreak:      profile.Streak,
		TimeSpent:      timeSpent,
		Repeat:         repeat,
	}

	synced := make(chan bool, 1)
	go func() { synced <- r.syncProfile(profile) }()

	mon.TimeoutSet("completion", r.cfg.CompletionTimeout)
	deadline := time.NewTimer(r.cfg.CompletionTimeout)
	defer deadline.Stop()

	select {
	case ok := <-synced:
		out.RemoteSynced = ok
		mon.CompletionSucceeded(score, granted)
	case <-deadline.C:
		out.Fallback = true
		mon.TimeoutTriggered("completion")
		mon.CompletionFallback("completion deadline reached")
	case <-ctx.Done():
		out.Fallback = true
		mon.Error(ctx.Err())
		mon.CompletionFallback("request canceled")
	}

	snapshot := completed.Clone()
	_ = r.deps.Sync.Dispatch(&writeback.ProgressUpdate{
		UserID:   r.userID,
		LessonID: r.lesson.ID,
		Update:   progress.CompletionUpdate(completed),
		Snapshot: &snapshot,
	})
	_ = r.deps.Sync.Dispatch(&writeback.LessonComplete{
		UserID:    r.userID,
		LessonID:  r.lesson.ID,
		Score:     score,
		TimeSpent: timeSpent,
	})

	return out, completed
}

// syncProfile sends the new reward fields to the remote store and waits at
// most ProfileUpdateTimeout. A late result is abandoned.
func (r *Runner) syncProfile(profile models.UserProfile) bool {
	mon := r.deps.Monitor
	mon.ProfileUpdateStarted()
	mon.TimeoutSet("profile_update", r.cfg.ProfileUpdateTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ProfileUpdateTimeout)
	defer cancel()

	update := rewards.ProfileUpdate(profile)
	errCh := make(chan error, 1)
	go func() { errCh <- r.deps.Remote.Update(ctx, r.userID, &update) }()

	select {
	case err := <-errCh:
		mon.ProfileUpdateFinished(err)
		if err != nil {
			r.deps.Logger.Warn("Remote profile update failed",
				zap.String("user_id", r.userID),
				zap.String("lesson_id", r.lesson.ID),
				zap.Error(err),
			)
			return false
		}
		return true
	case <-ctx.Done():
		mon.TimeoutTriggered("profile_update")
		r.deps.Logger.Warn("Remote profile update timed out, continuing with local values",
			zap.String("user_id", r.userID),
			zap.String("lesson_id", r.lesson.ID),
		)
		return false
	}
}

// Snapshot returns the current view of the runner
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// State returns the current state
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close releases the session monitor
func (r *Runner) Close() {
	r.deps.Monitor.Stop()
}

func (r *Runner) snapshotLocked() Snapshot {
	snap := Snapshot{
		LessonID:       r.lesson.ID,
		State:          r.state,
		StepIndex:      r.stepIndex,
		TotalSteps:     r.lesson.TotalSteps(),
		CorrectAnswers: r.correct,
		Progress:       r.progress.Clone(),
	}
	if r.outcome != nil {
		out := *r.outcome
		snap.Outcome = &out
	}
	return snap
}
