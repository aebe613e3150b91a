package models

// Language is an ISO 639-1 code of a supported language
type Language string

const (
	English    Language = "en"
	Spanish    Language = "es"
	French     Language = "fr"
	German     Language = "de"
	Portuguese Language = "pt"
	Russian    Language = "ru"
	Mandarin   Language = "zh"
)

// Default language pair of a new profile
const (
	DefaultNativeLanguage = Portuguese
	DefaultTargetLanguage = English
)

// Languages lists the supported languages in display order
var Languages = []Language{English, Spanish, French, German, Portuguese, Russian, Mandarin}

var englishNames = map[Language]string{
	English:    "English",
	Spanish:    "Spanish",
	French:     "French",
	German:     "German",
	Portuguese: "Portuguese",
	Russian:    "Russian",
	Mandarin:   "Mandarin Chinese",
}

var nativeNames = map[Language]string{
	English:    "English",
	Spanish:    "Español",
	French:     "Français",
	German:     "Deutsch",
	Portuguese: "Português",
	Russian:    "Русский",
	Mandarin:   "中文",
}

// EnglishName returns the name used in generation prompts
func (l Language) EnglishName() string {
	if name, ok := englishNames[l]; ok {
		return name
	}
	return string(l)
}

// NativeName returns the name of the language in that language
func (l Language) NativeName() string {
	if name, ok := nativeNames[l]; ok {
		return name
	}
	return string(l)
}

// Valid reports whether l is a supported language
func (l Language) Valid() bool {
	_, ok := englishNames[l]
	return ok
}
