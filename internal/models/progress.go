package models

import (
	"slices"
	"time"
)

// LessonProgress is the mutable record of a user's advancement through one lesson.
// It is never deleted and serves as a historical record.
type LessonProgress struct {
	UserID         string     `json:"userId"`
	LessonID       string     `json:"lessonId"`
	CurrentStep    int        `json:"currentStep"`
	CompletedSteps []string   `json:"completedSteps"`
	IsCompleted    bool       `json:"isCompleted"`
	Score          int        `json:"score"`
	TimeSpent      int        `json:"timeSpent"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// HasStep reports whether the step was already recorded
func (p *LessonProgress) HasStep(stepID string) bool {
	return slices.Contains(p.CompletedSteps, stepID)
}

// Clone returns a deep copy of the progress
func (p LessonProgress) Clone() LessonProgress {
	p.CompletedSteps = slices.Clone(p.CompletedSteps)
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		p.CompletedAt = &t
	}
	return p
}

// ProgressUpdate represents a partial update of a lesson progress record.
// Nil fields are left untouched.
type ProgressUpdate struct {
	CurrentStep    *int       `json:"currentStep,omitempty"`
	CompletedSteps []string   `json:"completedSteps,omitempty"`
	IsCompleted    *bool      `json:"isCompleted,omitempty"`
	Score          *int       `json:"score,omitempty"`
	TimeSpent      *int       `json:"timeSpent,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// Empty reports whether the update changes nothing
func (u *ProgressUpdate) Empty() bool {
	return u.CurrentStep == nil && u.CompletedSteps == nil && u.IsCompleted == nil &&
		u.Score == nil && u.TimeSpent == nil && u.CompletedAt == nil
}
