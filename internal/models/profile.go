package models

import (
	"slices"
	"time"
)

// CharacterType is the cosmetic class a user picks at sign up
type CharacterType string

const (
	CharacterMage    CharacterType = "mage"
	CharacterWarrior CharacterType = "warrior"
	CharacterRogue   CharacterType = "rogue"
)

// Valid reports whether c is a known character type
func (c CharacterType) Valid() bool {
	switch c {
	case CharacterMage, CharacterWarrior, CharacterRogue:
		return true
	}
	return false
}

// DefaultTargetLanguage is used when a user has not picked a language yet
const DefaultTargetLanguage = "es"

// UserProfile holds the gamification state of a user.
// Level is derived from XP and must be recomputed whenever XP changes.
type UserProfile struct {
	ID                 string        `json:"id"`
	Email              string        `json:"email"`
	Name               string        `json:"name"`
	XP                 int           `json:"xp"`
	Level              int           `json:"level"`
	Streak             int           `json:"streak"`
	LastActiveDate     time.Time     `json:"lastActiveDate"`
	CompletedLessonIDs []string      `json:"lessonsCompleted"`
	CharacterType      CharacterType `json:"characterType"`
	SourceLanguage     string        `json:"sourceLanguage,omitempty"`
	TargetLanguage     string        `json:"targetLanguage,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// HasCompleted reports whether the lesson is in the completed set
func (p *UserProfile) HasCompleted(lessonID string) bool {
	return slices.Contains(p.CompletedLessonIDs, lessonID)
}

// Clone returns a deep copy of the profile
func (p UserProfile) Clone() UserProfile {
	p.CompletedLessonIDs = slices.Clone(p.CompletedLessonIDs)
	return p
}

// ProfileUpdate represents a partial profile update (nil fields are not changed)
type ProfileUpdate struct {
	Name               *string        `json:"name,omitempty"`
	CharacterType      *CharacterType `json:"characterType,omitempty"`
	SourceLanguage     *string        `json:"sourceLanguage,omitempty"`
	TargetLanguage     *string        `json:"targetLanguage,omitempty"`
	XP                 *int           `json:"xp,omitempty"`
	Level              *int           `json:"level,omitempty"`
	Streak             *int           `json:"streak,omitempty"`
	LastActiveDate     *time.Time     `json:"lastActiveDate,omitempty"`
	CompletedLessonIDs []string       `json:"lessonsCompleted,omitempty"`
}

// Apply returns a copy of the profile with the update applied
func (u *ProfileUpdate) Apply(p UserProfile) UserProfile {
	out := p.Clone()
	if u.Name != nil {
		out.Name = *u.Name
	}
	if u.CharacterType != nil {
		out.CharacterType = *u.CharacterType
	}
	if u.SourceLanguage != nil {
		out.SourceLanguage = *u.SourceLanguage
	}
	if u.TargetLanguage != nil {
		out.TargetLanguage = *u.TargetLanguage
	}
	if u.XP != nil {
		out.XP = *u.XP
	}
	if u.Level != nil {
		out.Level = *u.Level
	}
	if u.Streak != nil {
		out.Streak = *u.Streak
	}
	if u.LastActiveDate != nil {
		out.LastActiveDate = *u.LastActiveDate
	}
	if u.CompletedLessonIDs != nil {
		out.CompletedLessonIDs = slices.Clone(u.CompletedLessonIDs)
	}
	return out
}

// CompletionResult is what the remote completion recorder reports back
type CompletionResult struct {
	XPGained  int `json:"xpGained"`
	NewXP     int `json:"newXp"`
	NewLevel  int `json:"newLevel"`
	NewStreak int `json:"newStreak"`
}

// CharacterInfo describes a character class. The bonuses are cosmetic and do
// not change XP computation.
type CharacterInfo struct {
	ID             CharacterType `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Avatar         string        `json:"avatar"`
	XPMultiplier   float64       `json:"xpMultiplier"`
	SpecialAbility string        `json:"specialAbility"`
}
