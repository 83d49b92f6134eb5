// Package writeback mirrors local learner state into the remote store.
//
// Local state is authoritative. Every remote write is expressed as an
// idempotent Intent that a Dispatcher may retry or drop without affecting
// what the learner sees.
package writeback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/questlingo/backend/internal/models"
)

// Intent kinds
const (
	KindProgressCreate = "progress.create"
	KindProgressUpdate = "progress.update"
	KindLessonComplete = "lesson.complete"
	KindProfileUpdate  = "profile.update"
)

// Kinds lists every intent kind
var Kinds = []string{KindProgressCreate, KindProgressUpdate, KindLessonComplete, KindProfileUpdate}

// ErrUnknownKind is returned when a payload names an unknown intent kind
var ErrUnknownKind = errors.New("unknown intent kind")

// ProgressStore defines the remote operations on lesson progress records
type ProgressStore interface {
	// Create inserts a progress record, leaving an existing one untouched
	Create(ctx context.Context, progress *models.LessonProgress) error
	// Update applies a partial update to an existing progress record
	Update(ctx context.Context, userID, lessonID string, update *models.ProgressUpdate) error
}

// ProfileStore defines the remote operation used to mirror profile rewards
type ProfileStore interface {
	// Update applies a partial update to an existing profile
	Update(ctx context.Context, userID string, update *models.ProfileUpdate) error
}

// CompletionRecorder records a finished lesson in the remote store
type CompletionRecorder interface {
	CompleteLessonAndUpdateUser(ctx context.Context, userID, lessonID string, score, timeSpent int) (*models.CompletionResult, error)
}

// Targets are the remote collaborators intents are applied to
type Targets struct {
	Progress ProgressStore
	Profiles ProfileStore
	Recorder CompletionRecorder
}

// Intent is a single idempotent remote write
type Intent interface {
	// Kind names the intent type
	Kind() string
	// Key identifies the record the intent writes to
	Key() string
	// Apply performs the write
	Apply(ctx context.Context, targets Targets) error
}

// ProgressCreate stores a freshly started progress record
type ProgressCreate struct {
	Progress models.LessonProgress `json:"progress"`
}

func (i *ProgressCreate) Kind() string { return KindProgressCreate }

func (i *ProgressCreate) Key() string {
	return i.Progress.UserID + "/" + i.Progress.LessonID
}

func (i *ProgressCreate) Apply(ctx context.Context, targets Targets) error {
	return targets.Progress.Create(ctx, &i.Progress)
}

// ProgressUpdate stores the absolute state reached after an answer or at
// completion. When the record is missing remotely, for instance because its
// create was dropped, Snapshot is inserted instead.
type ProgressUpdate struct {
	UserID   string                 `json:"userId"`
	LessonID string                 `json:"lessonId"`
	Update   models.ProgressUpdate  `json:"update"`
	Snapshot *models.LessonProgress `json:"snapshot,omitempty"`
}

func (i *ProgressUpdate) Kind() string { return KindProgressUpdate }

func (i *ProgressUpdate) Key() string { return i.UserID + "/" + i.LessonID }

func (i *ProgressUpdate) Apply(ctx context.Context, targets Targets) error {
	err := targets.Progress.Update(ctx, i.UserID, i.LessonID, &i.Update)
	if errors.Is(err, models.ErrNotFound) && i.Snapshot != nil {
		return targets.Progress.Create(ctx, i.Snapshot)
	}
	return err
}

// LessonComplete runs the remote completion recorder for a finished lesson.
// The recorder grants XP only for lessons it has not seen completed before.
type LessonComplete struct {
	UserID    string `json:"userId"`
	LessonID  string `json:"lessonId"`
	Score     int    `json:"score"`
	TimeSpent int    `json:"timeSpent"`
}

func (i *LessonComplete) Kind() string { return KindLessonComplete }

func (i *LessonComplete) Key() string { return i.UserID + "/" + i.LessonID }

func (i *LessonComplete) Apply(ctx context.Context, targets Targets) error {
	_, err := targets.Recorder.CompleteLessonAndUpdateUser(ctx, i.UserID, i.LessonID, i.Score, i.TimeSpent)
	return err
}

// ProfileUpdate stores profile settings changed by the learner
type ProfileUpdate struct {
	UserID string               `json:"userId"`
	Update models.ProfileUpdate `json:"update"`
}

func (i *ProfileUpdate) Kind() string { return KindProfileUpdate }

func (i *ProfileUpdate) Key() string { return i.UserID }

func (i *ProfileUpdate) Apply(ctx context.Context, targets Targets) error {
	return targets.Profiles.Update(ctx, i.UserID, &i.Update)
}

// Encode serializes an intent payload
func Encode(intent Intent) ([]byte, error) {
	payload, err := json.Marshal(intent)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s intent: %w", intent.Kind(), err)
	}
	return payload, nil
}

// Decode rebuilds an intent from its kind and payload
func Decode(kind string, payload []byte) (Intent, error) {
	var intent Intent
	switch kind {
	case KindProgressCreate:
		intent = &ProgressCreate{}
	case KindProgressUpdate:
		intent = &ProgressUpdate{}
	case KindLessonComplete:
		intent = &LessonComplete{}
	case KindProfileUpdate:
		intent = &ProfileUpdate{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if err := json.Unmarshal(payload, intent); err != nil {
		return nil, fmt.Errorf("failed to decode %s intent: %w", kind, err)
	}
	return intent, nil
}
