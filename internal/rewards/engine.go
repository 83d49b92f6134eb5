// Package rewards implements the XP, level and streak rules.
//
// All functions are pure and total. Inputs are trusted to respect the
// catalog and profile invariants.
package rewards

import (
	"slices"
	"time"

	"github.com/questlingo/backend/internal/models"
)

const (
	// XPPerLevel is the amount of XP needed to climb one level
	XPPerLevel = 100
	// PerfectScoreBonus is the flat XP bonus granted for a score of 100
	PerfectScoreBonus = 50
	// PerfectScore is the best score a lesson can be completed with
	PerfectScore = 100
)

// FinalScore converts the number of correct answers into a 0..100 score,
// rounded to the nearest integer. correct is clamped to [0, total].
func FinalScore(correct, total int) int {
	if total <= 0 {
		return 0
	}
	correct = max(0, min(correct, total))
	// round half up in integer arithmetic
	return (200*correct + total) / (2 * total)
}

// ComputeXPGain returns the XP earned for completing a lesson
func ComputeXPGain(baseXP, finalScore int) int {
	if finalScore == PerfectScore {
		return baseXP + PerfectScoreBonus
	}
	return baseXP
}

// ComputeLevel derives the level from total XP
func ComputeLevel(totalXP int) int {
	return totalXP/XPPerLevel + 1
}

// ComputeStreak returns the streak after activity at now.
//
// Activity on the calendar day right after the last active day continues the
// streak, activity on the same day keeps it, anything else starts over at 1.
// Calendar days are taken in now's location.
func ComputeStreak(profile models.UserProfile, now time.Time) int {
	if profile.LastActiveDate.IsZero() {
		return 1
	}
	today := calendarDay(now)
	last := calendarDay(profile.LastActiveDate.In(now.Location()))

	switch {
	case last.Equal(today):
		return profile.Streak
	case last.AddDate(0, 0, 1).Equal(today):
		return profile.Streak + 1
	default:
		return 1
	}
}

// ApplyCompletion returns the profile after a completed lesson and the XP
// that was actually granted.
//
// The lesson is added to the completed set once. A lesson completed before
// grants no XP again, while the streak and last active date still move.
func ApplyCompletion(profile models.UserProfile, lessonID string, xpGained, newStreak int, now time.Time) (models.UserProfile, int) {
	out := profile.Clone()

	granted := 0
	if !slices.Contains(out.CompletedLessonIDs, lessonID) {
		out.CompletedLessonIDs = append(out.CompletedLessonIDs, lessonID)
		granted = xpGained
	}

	out.XP += granted
	out.Level = ComputeLevel(out.XP)
	out.Streak = newStreak
	out.LastActiveDate = now
	out.UpdatedAt = now
	return out, granted
}

// ProfileUpdate is the partial update carrying the reward fields of a profile
func ProfileUpdate(p models.UserProfile) models.ProfileUpdate {
	xp, level, streak, lastActive := p.XP, p.Level, p.Streak, p.LastActiveDate
	return models.ProfileUpdate{
		XP:                 &xp,
		Level:              &level,
		Streak:             &streak,
		LastActiveDate:     &lastActive,
		CompletedLessonIDs: slices.Clone(p.CompletedLessonIDs),
	}
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
