package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zombor/deck-translate/internal/capture"
	"github.com/zombor/deck-translate/internal/translation"
)

// Capturer takes a screenshot and recognizes its text
type Capturer interface {
	Capture(ctx context.Context) capture.Result
}

// Translator translates text between two languages
type Translator interface {
	Translate(ctx context.Context, req translation.Request) translation.Result
}

// Service is the entry point the frontend talks to
type Service struct {
	capturer   Capturer
	translator Translator
	db         DB
}

// NewService creates a new Service
func NewService(capturer Capturer, translator Translator, db DB) *Service {
	return &Service{
		capturer:   capturer,
		translator: translator,
		db:         db,
	}
}

// GetScreenshotWithOCR captures the screen and recognizes its text. It
// always returns a well-formed result.
func (s *Service) GetScreenshotWithOCR(ctx context.Context) (result capture.Result) {
	slog.Info("Screenshot with OCR requested")
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Screenshot with OCR failed", "panic", p)
			result = capture.Failure(fmt.Sprintf("error: %v", p))
		}
	}()

	return s.capturer.Capture(ctx)
}

// TranslateText translates text and returns either the translation or a
// readable failure message. Empty languages fall back to the stored settings.
func (s *Service) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (message string) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Translation failed", "panic", p)
			message = fmt.Sprintf("translation error: %v", p)
		}
	}()

	if sourceLang == "" || targetLang == "" {
		settings, err := s.Settings()
		if err != nil {
			slog.Warn("Falling back to default languages", "error", err)
			settings = DefaultSettings()
		}
		if sourceLang == "" {
			sourceLang = settings.SourceLang
		}
		if targetLang == "" {
			targetLang = settings.TargetLang
		}
	}

	result := s.translator.Translate(ctx, translation.Request{
		Text:   text,
		Source: sourceLang,
		Target: targetLang,
	})
	return result.Message()
}

// Settings returns the stored language settings
func (s *Service) Settings() (Settings, error) {
	settings, err := s.db.GetSettings()
	if err != nil {
		return Settings{}, fmt.Errorf("getting settings: %w", err)
	}
	return settings, nil
}

// SaveSettings validates and stores the language settings
func (s *Service) SaveSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.db.SaveSettings(settings); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// Languages returns the supported languages
func (s *Service) Languages() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}
