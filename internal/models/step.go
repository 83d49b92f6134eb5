package models

import (
	"strings"

	"golang.org/x/text/cases"
)

// StepKind identifies which variant a Step holds
type StepKind string

const (
	StepKindFlashcard      StepKind = "flashcard"
	StepKindMultipleChoice StepKind = "multiple_choice"
	StepKindFreeText       StepKind = "free_text"
)

// Step is one atomic interaction within a lesson.
// Exactly one of Flashcard, MultipleChoice or FreeText is set, matching Kind.
type Step struct {
	ID             string              `json:"id"`
	Kind           StepKind            `json:"kind"`
	Flashcard      *FlashcardStep      `json:"flashcard,omitempty"`
	MultipleChoice *MultipleChoiceStep `json:"multipleChoice,omitempty"`
	FreeText       *FreeTextStep       `json:"freeText,omitempty"`
}

// FlashcardStep shows a word and its translation. Viewing it counts as a correct answer.
type FlashcardStep struct {
	Word          string `json:"word"`
	Translation   string `json:"translation"`
	Pronunciation string `json:"pronunciation,omitempty"`
	Example       string `json:"example,omitempty"`
}

// MultipleChoiceStep asks the learner to pick one of the ordered options
type MultipleChoiceStep struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"-"`
	Explanation  string   `json:"-"`
}

// FreeTextStep asks the learner to type an answer
type FreeTextStep struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"-"`
	Hint          string `json:"hint,omitempty"`
	CaseSensitive bool   `json:"caseSensitive"`
}

// StepResponse is a learner's answer to a step.
// OptionIndex is used for multiple choice steps and Text for free text steps.
type StepResponse struct {
	OptionIndex *int   `json:"optionIndex,omitempty"`
	Text        string `json:"text,omitempty"`
}

// AnswerFeedback is returned to the learner after a step has been evaluated
type AnswerFeedback struct {
	StepID        string `json:"stepId"`
	Correct       bool   `json:"correct"`
	CorrectIndex  *int   `json:"correctIndex,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// Evaluate checks the response against the step.
//
// Flashcards are always correct once viewed.
// Multiple choice compares the selected index with the correct one.
// Free text trims surrounding whitespace on both sides and compares them
// using Unicode case folding unless the step is case sensitive.
func (s *Step) Evaluate(resp StepResponse) bool {
	switch s.Kind {
	case StepKindFlashcard:
		return true
	case StepKindMultipleChoice:
		if s.MultipleChoice == nil || resp.OptionIndex == nil {
			return false
		}
		return *resp.OptionIndex == s.MultipleChoice.CorrectIndex
	case StepKindFreeText:
		if s.FreeText == nil {
			return false
		}
		return MatchFreeText(resp.Text, s.FreeText.CorrectAnswer, s.FreeText.CaseSensitive)
	}
	return false
}

// Feedback builds the feedback shown after the step was answered
func (s *Step) Feedback(correct bool) AnswerFeedback {
	fb := AnswerFeedback{StepID: s.ID, Correct: correct}
	switch s.Kind {
	case StepKindMultipleChoice:
		if s.MultipleChoice != nil {
			idx := s.MultipleChoice.CorrectIndex
			fb.CorrectIndex = &idx
			fb.Explanation = s.MultipleChoice.Explanation
		}
	case StepKindFreeText:
		if s.FreeText != nil {
			fb.CorrectAnswer = s.FreeText.CorrectAnswer
		}
	}
	return fb
}

// MatchFreeText compares a typed answer with the expected one
func MatchFreeText(given, expected string, caseSensitive bool) bool {
	given = strings.TrimSpace(given)
	expected = strings.TrimSpace(expected)
	if caseSensitive {
		return given == expected
	}
	// Casers keep state, so a fresh one is used per comparison
	fold := cases.Fold()
	return fold.String(given) == fold.String(expected)
}
