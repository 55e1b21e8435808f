package platform

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// DataPathEnv is the environment variable Tesseract reads its language data from.
const DataPathEnv = "TESSDATA_PREFIX"

// DefaultLanguage is the language pack checked for at startup
const DefaultLanguage = "eng"

// Mode selects how OCR is invoked
type Mode string

const (
	ModeWrapper        Mode = "wrapper"
	ModeDirect         Mode = "direct"
	ModeSystemFallback Mode = "system-fallback"
)

// Backend is the resolved OCR configuration. It is built once at startup
// and passed by value to everything that needs it.
type Backend struct {
	Mode           Mode   `json:"mode"`
	WrapperPath    string `json:"wrapper_path"`
	ExecutablePath string `json:"executable_path"`
	DataDir        string `json:"data_dir"`
	Language       string `json:"language"`
}

// Env returns the environment entries a child OCR process needs
func (b Backend) Env() []string {
	return []string{DataPathEnv + "=" + b.DataDir}
}

// artifacts is the set of bundled OCR files for one OS
type artifacts struct {
	wrapper    string
	executable string
	dataDir    string
}

func artifactsFor(goos, pluginDir string) artifacts {
	if goos == "windows" {
		base := filepath.Join(pluginDir, "bin", "windows")
		return artifacts{
			wrapper:    filepath.Join(base, "run_tesseract.bat"),
			executable: filepath.Join(base, "tesseract.exe"),
			dataDir:    filepath.Join(base, "tessdata"),
		}
	}

	// SteamOS and every other POSIX host
	base := filepath.Join(pluginDir, "bin", "steamos")
	return artifacts{
		wrapper:    filepath.Join(base, "bin", "run_tesseract.sh"),
		executable: filepath.Join(base, "bin", "tesseract"),
		dataDir:    filepath.Join(base, "tessdata"),
	}
}

// Resolve picks the OCR backend for goos from the artifacts under pluginDir
// and points TESSDATA_PREFIX at the bundled language data. Missing language
// data only produces a warning.
func Resolve(goos, pluginDir, language string) (Backend, error) {
	if language == "" {
		language = DefaultLanguage
	}
	a := artifactsFor(goos, pluginDir)

	if err := os.Setenv(DataPathEnv, a.dataDir); err != nil {
		return Backend{}, fmt.Errorf("setting %s: %w", DataPathEnv, err)
	}
	slog.Info("OCR data path set", "env", DataPathEnv, "path", a.dataDir)
	if !isDir(a.dataDir) {
		slog.Warn("OCR data directory does not exist", "path", a.dataDir)
	}

	backend := Backend{
		WrapperPath: a.wrapper,
		DataDir:     a.dataDir,
		Language:    language,
	}

	switch {
	case isFile(a.wrapper):
		backend.Mode = ModeWrapper
		slog.Info("Using OCR wrapper script", "path", a.wrapper)
	case isFile(a.executable):
		backend.Mode = ModeDirect
		backend.ExecutablePath = a.executable
		slog.Info("Using bundled OCR binary", "path", a.executable)
	default:
		backend.Mode = ModeSystemFallback
		backend.ExecutablePath = "tesseract"
		slog.Warn("Bundled OCR binary not found, falling back to system tesseract")
	}

	trained := filepath.Join(a.dataDir, language+".traineddata")
	if !isFile(trained) {
		slog.Warn("Language data file not found", "path", trained)
	}

	return backend, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
