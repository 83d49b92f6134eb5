// Package progress holds the pure transformations applied to a lesson
// progress record while a learner walks through a lesson.
package progress

import (
	"slices"
	"time"

	"github.com/questlingo/backend/internal/models"
)

// Init creates a fresh progress record for a user opening a lesson
func Init(userID, lessonID string, now time.Time) models.LessonProgress {
	return models.LessonProgress{
		UserID:         userID,
		LessonID:       lessonID,
		CurrentStep:    0,
		CompletedSteps: []string{},
		IsCompleted:    false,
		Score:          0,
		StartedAt:      now,
	}
}

// RecordAnswer registers an answer to the step at stepIndex.
//
// The step id is appended once; answering the same step again does not grow
// the set. The current step moves to stepIndex+1 whether the answer was right
// or wrong, and never moves backwards. Score is left untouched.
func RecordAnswer(p models.LessonProgress, stepIndex int, stepID string) models.LessonProgress {
	out := p.Clone()
	if !out.HasStep(stepID) {
		out.CompletedSteps = append(out.CompletedSteps, stepID)
	}
	if next := stepIndex + 1; next > out.CurrentStep {
		out.CurrentStep = next
	}
	return out
}

// MarkCompleted closes the progress record: every step of the lesson is
// recorded, the current step points past the last one and the score is set.
func MarkCompleted(p models.LessonProgress, lesson *models.Lesson, score, timeSpent int, now time.Time) models.LessonProgress {
	out := p.Clone()
	for _, id := range lesson.StepIDs() {
		if !slices.Contains(out.CompletedSteps, id) {
			out.CompletedSteps = append(out.CompletedSteps, id)
		}
	}
	out.CurrentStep = lesson.TotalSteps()
	out.IsCompleted = true
	out.Score = score
	out.TimeSpent = timeSpent
	completedAt := now
	out.CompletedAt = &completedAt
	return out
}

// CompletionUpdate is the partial update that persists a completed record
func CompletionUpdate(p models.LessonProgress) models.ProgressUpdate {
	return models.ProgressUpdate{
		CurrentStep:    &p.CurrentStep,
		CompletedSteps: slices.Clone(p.CompletedSteps),
		IsCompleted:    &p.IsCompleted,
		Score:          &p.Score,
		TimeSpent:      &p.TimeSpent,
		CompletedAt:    p.CompletedAt,
	}
}

// AnswerUpdate is the partial update emitted after an answer was recorded
func AnswerUpdate(p models.LessonProgress) models.ProgressUpdate {
	current := p.CurrentStep
	return models.ProgressUpdate{
		CurrentStep:    &current,
		CompletedSteps: slices.Clone(p.CompletedSteps),
	}
}
