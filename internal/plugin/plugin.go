package plugin

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLanguage marks settings naming a language not in the list
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language is a language the frontend offers for translation
type Language struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// languages lists the supported languages in the order the frontend shows them
var languages = []Language{
	{ID: "en", Label: "English"},
	{ID: "ru", Label: "Русский"},
	{ID: "de", Label: "Deutsch"},
	{ID: "fr", Label: "Français"},
	{ID: "es", Label: "Español"},
	{ID: "it", Label: "Italiano"},
	{ID: "ja", Label: "日本語"},
	{ID: "ko", Label: "한국어"},
	{ID: "zh", Label: "中文"},
}

// Settings holds the user's language selection
type Settings struct {
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

// DefaultSettings matches the frontend's initial selection
func DefaultSettings() Settings {
	return Settings{SourceLang: "en", TargetLang: "ru"}
}

// Validate checks both languages are supported
func (s Settings) Validate() error {
	if !isSupported(s.SourceLang) {
		return fmt.Errorf("%w: source %q", ErrUnsupportedLanguage, s.SourceLang)
	}
	if !isSupported(s.TargetLang) {
		return fmt.Errorf("%w: target %q", ErrUnsupportedLanguage, s.TargetLang)
	}
	return nil
}

func isSupported(id string) bool {
	for _, l := range languages {
		if l.ID == id {
			return true
		}
	}
	return false
}
