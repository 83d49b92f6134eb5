// Package catalog provides the static, read-only lesson catalog.
//
// Lessons are loaded from TOML files embedded in the binary, validated once and
// then shared by every request. Nothing in the catalog changes at runtime.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"

	"github.com/questlingo/backend/internal/models"
)

//go:embed data/*.toml
var lessonData embed.FS

var (
	// ErrLessonNotFound is returned when a lesson id is not in the catalog
	ErrLessonNotFound = errors.New("lesson not found")
	// ErrInvalidLesson is returned when a lesson breaks a catalog invariant
	ErrInvalidLesson = errors.New("invalid lesson")
)

// Catalog is the process-wide table of lessons
type Catalog struct {
	lessons    []models.Lesson
	byLanguage map[string][]models.Lesson
	byID       map[string]int
}

// Load reads the lessons embedded in the binary
func Load() (*Catalog, error) {
	return LoadFS(lessonData, "data")
}

// LoadFS reads every *.toml file in dir of the given filesystem
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read lesson directory: %w", err)
	}

	var lessons []models.Lesson
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".toml" {
			continue
		}
		fileLessons, err := decodeFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, fileLessons...)
	}

	return New(lessons)
}

// New validates the lessons and builds the lookup indexes
func New(lessons []models.Lesson) (*Catalog, error) {
	if err := Validate(lessons); err != nil {
		return nil, err
	}

	sorted := slices.Clone(lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TargetLanguage != sorted[j].TargetLanguage {
			return sorted[i].TargetLanguage < sorted[j].TargetLanguage
		}
		return sorted[i].Order < sorted[j].Order
	})

	c := &Catalog{
		lessons:    sorted,
		byLanguage: make(map[string][]models.Lesson),
		byID:       make(map[string]int, len(sorted)),
	}
	for i, l := range sorted {
		c.byID[l.ID] = i
		c.byLanguage[l.TargetLanguage] = append(c.byLanguage[l.TargetLanguage], l)
	}

	return c, nil
}

// GetAllLessons returns every lesson, grouped by target language and sorted by order
func (c *Catalog) GetAllLessons() []models.Lesson {
	return slices.Clone(c.lessons)
}

// GetLessonsByLanguage returns the lessons teaching the given language, sorted by order.
// An unknown language yields an empty list.
func (c *Catalog) GetLessonsByLanguage(code string) []models.Lesson {
	return slices.Clone(c.byLanguage[code])
}

// GetLesson returns a lesson by its id
func (c *Catalog) GetLesson(id string) (*models.Lesson, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLessonNotFound, id)
	}
	lesson := c.lessons[i]
	return &lesson, nil
}

// TargetLanguages returns the codes of languages that have at least one lesson
func (c *Catalog) TargetLanguages() []string {
	codes := make([]string, 0, len(c.byLanguage))
	for code := range c.byLanguage {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// NextLessonID returns the id of the lesson following lessonID in its
// language, or "" when it is the last one.
func (c *Catalog) NextLessonID(lessonID string) string {
	i, ok := c.byID[lessonID]
	if !ok {
		return ""
	}
	current := c.lessons[i]
	for _, l := range c.byLanguage[current.TargetLanguage] {
		if l.Order > current.Order {
			return l.ID
		}
	}
	return ""
}

// IsUnlocked applies the dashboard rule: the first lesson of a language is
// always open, every other lesson needs all of its prerequisites completed.
func (c *Catalog) IsUnlocked(lesson *models.Lesson, completed []string) bool {
	lessons := c.byLanguage[lesson.TargetLanguage]
	if len(lessons) > 0 && lessons[0].ID == lesson.ID {
		return true
	}
	for _, prereq := range lesson.Prerequisites {
		if !slices.Contains(completed, prereq) {
			return false
		}
	}
	return true
}

// WithLockStatus lists the lessons of a language with lock and completion flags for a user
func (c *Catalog) WithLockStatus(code string, completed []string) []models.LessonListItem {
	lessons := c.byLanguage[code]
	items := make([]models.LessonListItem, 0, len(lessons))
	for i := range lessons {
		l := &lessons[i]
		items = append(items, models.LessonListItem{
			ID:               l.ID,
			Title:            l.Title,
			Description:      l.Description,
			Difficulty:       l.Difficulty,
			XPReward:         l.XPReward,
			EstimatedMinutes: l.EstimatedMinutes,
			Category:         l.Category,
			Order:            l.Order,
			TotalSteps:       l.TotalSteps(),
			Locked:           !c.IsUnlocked(l, completed),
			Completed:        slices.Contains(completed, l.ID),
		})
	}
	return items
}
