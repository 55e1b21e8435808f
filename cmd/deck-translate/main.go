package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"golang.org/x/time/rate"

	"github.com/zombor/deck-translate/internal/capture"
	"github.com/zombor/deck-translate/internal/ocr"
	"github.com/zombor/deck-translate/internal/platform"
	"github.com/zombor/deck-translate/internal/plugin"
	"github.com/zombor/deck-translate/internal/translation"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("deck-translate")
	var (
		port           = fs.IntLong("port", 8765, "HTTP server port")
		host           = fs.StringLong("host", "127.0.0.1", "HTTP server bind address")
		pluginDir      = fs.StringLong("plugin-dir", "", "Plugin directory holding bin/ (defaults to the executable's directory)")
		dbPath         = fs.StringLong("db", "", "Settings database path (defaults to <plugin-dir>/deck-translate.db)")
		logFile        = fs.StringLong("log-file", "decky_translate.log", "Log file path")
		logLevel       = fs.StringLong("log-level", "info", "Log level: debug, info, warn or error")
		ocrLang        = fs.StringLong("ocr-lang", platform.DefaultLanguage, "OCR language data to load")
		translateURL   = fs.StringLong("translate-url", translation.DefaultEndpoint, "LibreTranslate compatible endpoint")
		translateKey   = fs.StringLong("translate-key", "", "Translation API key (optional)")
		translateWait  = fs.DurationLong("translate-timeout", translation.DefaultTimeout, "Translation request deadline")
		translateRPS   = fs.Float64Long("translate-rps", 1, "Translation requests per second")
		translateBurst = fs.IntLong("translate-burst", 3, "Translation request burst")
		cacheTTL       = fs.DurationLong("cache-ttl", 10*time.Minute, "Translation cache TTL, 0 disables caching")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		_              = fs.StringLong("config", "", "Config file (optional)")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("DECK_TRANSLATE"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	closeLog, err := setupLogging(*logFile, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	dir := *pluginDir
	if dir == "" {
		dir, err = executableDir()
		if err != nil {
			slog.Error("Failed to determine plugin directory", "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Starting deck-translate", "version", version, "plugin_dir", dir, "os", runtime.GOOS)

	// Resolve OCR backend once; it is immutable afterwards
	backend, err := platform.Resolve(runtime.GOOS, dir, *ocrLang)
	if err != nil {
		slog.Error("Failed to resolve OCR backend", "error", err)
		os.Exit(1)
	}

	engine := fallbackEngine(backend)
	if engine != nil {
		defer engine.Close()
	}
	runner := ocr.NewRunner(backend, engine)

	// Initialize storage for transient screenshots
	store, err := capture.NewLocalStorage(filepath.Join(dir, "tmp"))
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	capturer := capture.NewCapturer(capture.PrimaryDisplay{}, store, runner)

	translator := translation.NewClient(
		translation.WithEndpoint(*translateURL),
		translation.WithAPIKey(*translateKey),
		translation.WithTimeout(*translateWait),
		translation.WithRateLimit(rate.Limit(*translateRPS), *translateBurst),
		translation.WithCacheTTL(*cacheTTL),
	)

	// Initialize database
	path := *dbPath
	if path == "" {
		path = filepath.Join(dir, "deck-translate.db")
	}
	slog.Info("Initializing database...", "path", path)
	db, err := plugin.NewBoltDB(path)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	service := plugin.NewService(capturer, translator, db)
	server := plugin.NewServer(service, plugin.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	})

	addr := fmt.Sprintf("%s:%d", *host, *port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			slog.Error("Server error", "error", err)
			db.Close()
			os.Exit(1)
		}
	case <-sigChan:
		slog.Info("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Shutdown error", "error", err)
		}
	}
}

// setupLogging sends slog output to both the log file and stderr
func setupLogging(path, level string) (func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	handler := slog.NewTextHandler(io.MultiWriter(f, os.Stderr), &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return func() { f.Close() }, nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	return filepath.Dir(exe), nil
}
