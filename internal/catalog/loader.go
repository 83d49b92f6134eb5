package catalog

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/questlingo/backend/internal/models"
)

// lessonFile is the on-disk layout of a language data file
type lessonFile struct {
	Lessons []lessonRecord `toml:"lessons"`
}

type lessonRecord struct {
	ID               string       `toml:"id"`
	Title            string       `toml:"title"`
	Description      string       `toml:"description"`
	Difficulty       string       `toml:"difficulty"`
	XPReward         int          `toml:"xp_reward"`
	EstimatedMinutes int          `toml:"estimated_minutes"`
	Category         string       `toml:"category"`
	Order            int          `toml:"order"`
	Prerequisites    []string     `toml:"prerequisites"`
	TargetLanguage   string       `toml:"target_language"`
	SourceLanguage   string       `toml:"source_language"`
	Steps            []stepRecord `toml:"steps"`
}

type stepRecord struct {
	Kind          string   `toml:"kind"`
	ID            string   `toml:"id"`
	Word          string   `toml:"word"`
	Translation   string   `toml:"translation"`
	Pronunciation string   `toml:"pronunciation"`
	Example       string   `toml:"example"`
	Question      string   `toml:"question"`
	Options       []string `toml:"options"`
	CorrectIndex  int      `toml:"correct_index"`
	Explanation   string   `toml:"explanation"`
	CorrectAnswer string   `toml:"correct_answer"`
	Hint          string   `toml:"hint"`
	CaseSensitive bool     `toml:"case_sensitive"`
}

// decodeFile parses one data file. Unknown keys are rejected so that typos in
// lesson data fail at start up instead of silently dropping fields.
func decodeFile(fsys fs.FS, name string) ([]models.Lesson, error) {
	var file lessonFile
	meta, err := toml.DecodeFS(fsys, name, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("failed to parse %s: unknown keys %s", name, strings.Join(keys, ", "))
	}

	lessons := make([]models.Lesson, 0, len(file.Lessons))
	for _, rec := range file.Lessons {
		lesson, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}

func (r lessonRecord) toModel() (models.Lesson, error) {
	lesson := models.Lesson{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Difficulty:       models.Difficulty(r.Difficulty),
		XPReward:         r.XPReward,
		EstimatedMinutes: r.EstimatedMinutes,
		Category:         r.Category,
		Order:            r.Order,
		Prerequisites:    r.Prerequisites,
		TargetLanguage:   r.TargetLanguage,
		SourceLanguage:   r.SourceLanguage,
		Steps:            make([]models.Step, 0, len(r.Steps)),
	}

	for _, s := range r.Steps {
		step := models.Step{ID: s.ID, Kind: models.StepKind(s.Kind)}
		switch step.Kind {
		case models.StepKindFlashcard:
			step.Flashcard = &models.FlashcardStep{
				Word:          s.Word,
				Translation:   s.Translation,
				Pronunciation: s.Pronunciation,
				Example:       s.Example,
			}
		case models.StepKindMultipleChoice:
			step.MultipleChoice = &models.MultipleChoiceStep{
				Question:     s.Question,
				Options:      s.Options,
				CorrectIndex: s.CorrectIndex,
				Explanation:  s.Explanation,
			}
		case models.StepKindFreeText:
			step.FreeText = &models.FreeTextStep{
				Question:      s.Question,
				CorrectAnswer: s.CorrectAnswer,
				Hint:          s.Hint,
				CaseSensitive: s.CaseSensitive,
			}
		default:
			return models.Lesson{}, fmt.Errorf("%w: lesson %s step %s has unknown kind %q", ErrInvalidLesson, r.ID, s.ID, s.Kind)
		}
		lesson.Steps = append(lesson.Steps, step)
	}

	return lesson, nil
}
