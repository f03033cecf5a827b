package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"subburn/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Path is a log file to append to. Empty means stderr.
	Path string
	// Writer overrides Path when set.
	Writer io.Writer
	// Color enables ANSI colours in console output.
	Color bool
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := new(slog.LevelVar)
	level.Set(parseLevel(opts.Level))

	w := opts.Writer
	if w == nil {
		var err error
		if w, err = openWriter(opts.Path); err != nil {
			return nil, err
		}
	}
	addSource := level.Level() <= slog.LevelDebug

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "json":
		return slog.New(newJSONHandler(w, level, addSource)), nil
	case "console", "":
		return slog.New(newConsoleHandler(w, level, addSource, opts.Color)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// LogFileName is the JSON run log written under the configured log directory.
const LogFileName = "subburn.log"

// NewFromConfig creates a logger using application config defaults. Console
// output goes to stderr so stdout stays free for command output; a JSON copy
// is appended to subburn.log under the configured log directory.
func NewFromConfig(cfg *config.Config, verbose bool) (*slog.Logger, error) {
	color := isatty.IsTerminal(os.Stderr.Fd())
	if cfg == nil {
		return New(Options{Level: levelFor("info", verbose), Color: color, Writer: os.Stderr})
	}

	level := levelFor(cfg.Logging.Level, verbose)
	console, err := New(Options{Level: level, Format: cfg.Logging.Format, Color: color, Writer: os.Stderr})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Paths.LogDir) == "" {
		return console, nil
	}
	file, err := New(Options{Level: level, Format: "json", Path: filepath.Join(cfg.Paths.LogDir, LogFileName)})
	if err != nil {
		return nil, err
	}
	return slog.New(newTeeHandler(console.Handler(), file.Handler())), nil
}

func levelFor(configured string, verbose bool) string {
	if verbose {
		return "debug"
	}
	return configured
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}

func openWriter(path string) (io.Writer, error) {
	path = strings.TrimSpace(path)
	switch path {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}
