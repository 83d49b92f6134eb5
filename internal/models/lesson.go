package models

// Difficulty represents how hard a lesson is
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known difficulty levels
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Lesson is an immutable catalog entry.
// Lessons are defined when the catalog is loaded and never mutated afterwards.
type Lesson struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Difficulty       Difficulty `json:"difficulty"`
	XPReward         int        `json:"xpReward"`
	EstimatedMinutes int        `json:"estimatedTime"`
	Category         string     `json:"category"`
	Order            int        `json:"order"`
	Prerequisites    []string   `json:"prerequisites,omitempty"`
	TargetLanguage   string     `json:"targetLanguage"`
	SourceLanguage   string     `json:"sourceLanguage"`
	Steps            []Step     `json:"steps"`
}

// TotalSteps returns the number of steps in the lesson
func (l *Lesson) TotalSteps() int {
	return len(l.Steps)
}

// StepIDs returns the ids of all steps in lesson order
func (l *Lesson) StepIDs() []string {
	ids := make([]string, len(l.Steps))
	for i, s := range l.Steps {
		ids[i] = s.ID
	}
	return ids
}

// LessonListItem represents a lesson in user list responses
type LessonListItem struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Difficulty       Difficulty `json:"difficulty"`
	XPReward         int        `json:"xpReward"`
	EstimatedMinutes int        `json:"estimatedTime"`
	Category         string     `json:"category"`
	Order            int        `json:"order"`
	TotalSteps       int        `json:"totalSteps"`
	Locked           bool       `json:"isLocked"`
	Completed        bool       `json:"completed"`
}

// Language describes a language that can be learned or used for instructions
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	Flag       string `json:"flag"`
	Region     string `json:"region"`
}
