package catalog

import "github.com/questlingo/backend/internal/models"

var supportedLanguages = []models.Language{
	{Code: "en", Name: "English", NativeName: "English", Flag: "🇺🇸", Region: "Americas"},
	{Code: "es", Name: "Spanish", NativeName: "Español", Flag: "🇪🇸", Region: "Europe"},
	{Code: "fr", Name: "French", NativeName: "Français", Flag: "🇫🇷", Region: "Europe"},
	{Code: "de", Name: "German", NativeName: "Deutsch", Flag: "🇩🇪", Region: "Europe"},
	{Code: "it", Name: "Italian", NativeName: "Italiano", Flag: "🇮🇹", Region: "Europe"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Flag: "🇵🇹", Region: "Europe"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語", Flag: "🇯🇵", Region: "Asia"},
	{Code: "ko", Name: "Korean", NativeName: "한국어", Flag: "🇰🇷", Region: "Asia"},
	{Code: "zh", Name: "Chinese", NativeName: "中文", Flag: "🇨🇳", Region: "Asia"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية", Flag: "🇸🇦", Region: "Middle East"},
}

var characters = []models.CharacterInfo{
	{
		ID:             models.CharacterMage,
		Name:           "Mage",
		Description:    "Masters of arcane knowledge, gaining bonus XP from vocabulary lessons",
		Avatar:         "🧙‍♂️",
		XPMultiplier:   1.2,
		SpecialAbility: "Vocabulary Mastery",
	},
	{
		ID:             models.CharacterWarrior,
		Name:           "Warrior",
		Description:    "Brave fighters who excel in grammar battles",
		Avatar:         "⚔️",
		XPMultiplier:   1.1,
		SpecialAbility: "Grammar Shield",
	},
	{
		ID:             models.CharacterRogue,
		Name:           "Rogue",
		Description:    "Cunning linguists who gain streaks faster",
		Avatar:         "🗡️",
		XPMultiplier:   1.0,
		SpecialAbility: "Streak Stealth",
	},
}

// SupportedLanguages returns every language a user may pick
func SupportedLanguages() []models.Language {
	out := make([]models.Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// LanguageByCode looks up a supported language
func LanguageByCode(code string) (models.Language, bool) {
	for _, l := range supportedLanguages {
		if l.Code == code {
			return l, true
		}
	}
	return models.Language{}, false
}

// Characters returns the selectable character classes
func Characters() []models.CharacterInfo {
	out := make([]models.CharacterInfo, len(characters))
	copy(out, characters)
	return out
}
