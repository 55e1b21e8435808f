package plugin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScreenshot captures the screen and runs OCR. Failures are part of
// the result body, so the status is always 200.
func (s *Server) handleScreenshot(w http.ResponseWriter, r *http.Request) {
	result := s.service.GetScreenshotWithOCR(r.Context())
	writeJSON(w, http.StatusOK, result)
}

// handleTranslate translates the posted text
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		SourceLang string `json:"source_lang"`
		TargetLang string `json:"target_lang"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Error decoding translate request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	translated := s.service.TranslateText(r.Context(), req.Text, req.SourceLang, req.TargetLang)
	writeJSON(w, http.StatusOK, map[string]string{"translation": translated})
}

// handleGetSettings returns the stored language settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.service.Settings()
	if err != nil {
		slog.Error("Error reading settings", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleSaveSettings stores new language settings
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.SaveSettings(settings); err != nil {
		if errors.Is(err, ErrUnsupportedLanguage) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Error saving settings", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handleLanguages lists the supported languages
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Languages())
}
