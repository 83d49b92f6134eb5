package catalog

import (
	"fmt"
	"strings"

	"github.com/questlingo/backend/internal/models"
	"golang.org/x/text/language"
)

// Validate checks the catalog invariants over a full set of lessons
func Validate(lessons []models.Lesson) error {
	ids := make(map[string]struct{}, len(lessons))
	for _, l := range lessons {
		if l.ID == "" {
			return fmt.Errorf("%w: lesson without id", ErrInvalidLesson)
		}
		if _, dup := ids[l.ID]; dup {
			return fmt.Errorf("%w: duplicate lesson id %s", ErrInvalidLesson, l.ID)
		}
		ids[l.ID] = struct{}{}
	}

	for i := range lessons {
		if err := validateLesson(&lessons[i]); err != nil {
			return err
		}
		for _, prereq := range lessons[i].Prerequisites {
			if _, ok := ids[prereq]; !ok {
				return fmt.Errorf("%w: lesson %s requires unknown lesson %s", ErrInvalidLesson, lessons[i].ID, prereq)
			}
		}
	}
	return nil
}

func validateLesson(l *models.Lesson) error {
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: lesson %s has no title", ErrInvalidLesson, l.ID)
	}
	if !l.Difficulty.Valid() {
		return fmt.Errorf("%w: lesson %s has unknown difficulty %q", ErrInvalidLesson, l.ID, l.Difficulty)
	}
	if l.XPReward < 0 {
		return fmt.Errorf("%w: lesson %s has negative xp reward", ErrInvalidLesson, l.ID)
	}
	for _, code := range []string{l.TargetLanguage, l.SourceLanguage} {
		if _, err := language.Parse(code); err != nil {
			return fmt.Errorf("%w: lesson %s has bad language code %q: %v", ErrInvalidLesson, l.ID, code, err)
		}
	}
	if len(l.Steps) == 0 {
		return fmt.Errorf("%w: lesson %s has no steps", ErrInvalidLesson, l.ID)
	}

	stepIDs := make(map[string]struct{}, len(l.Steps))
	for _, s := range l.Steps {
		if s.ID == "" {
			return fmt.Errorf("%w: lesson %s has a step without id", ErrInvalidLesson, l.ID)
		}
		if _, dup := stepIDs[s.ID]; dup {
			return fmt.Errorf("%w: lesson %s has duplicate step id %s", ErrInvalidLesson, l.ID, s.ID)
		}
		stepIDs[s.ID] = struct{}{}

		switch s.Kind {
		case models.StepKindFlashcard:
			if s.Flashcard == nil || s.Flashcard.Word == "" || s.Flashcard.Translation == "" {
				return fmt.Errorf("%w: flashcard %s/%s needs a word and a translation", ErrInvalidLesson, l.ID, s.ID)
			}
		case models.StepKindMultipleChoice:
			mc := s.MultipleChoice
			if mc == nil || len(mc.Options) < 2 {
				return fmt.Errorf("%w: multiple choice %s/%s needs at least two options", ErrInvalidLesson, l.ID, s.ID)
			}
			if mc.CorrectIndex < 0 || mc.CorrectIndex >= len(mc.Options) {
				return fmt.Errorf("%w: multiple choice %s/%s correct index %d out of range", ErrInvalidLesson, l.ID, s.ID, mc.CorrectIndex)
			}
		case models.StepKindFreeText:
			if s.FreeText == nil || strings.TrimSpace(s.FreeText.CorrectAnswer) == "" {
				return fmt.Errorf("%w: free text %s/%s needs a correct answer", ErrInvalidLesson, l.ID, s.ID)
			}
		default:
			return fmt.Errorf("%w: lesson %s step %s has unknown kind %q", ErrInvalidLesson, l.ID, s.ID, s.Kind)
		}
	}
	return nil
}
