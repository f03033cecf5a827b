package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains on-disk locations used by a run.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
	ImageDir string `toml:"image_dir"`
}

// OpenAI contains connection settings shared by every remote feature.
type OpenAI struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Transcription contains speech-to-text settings.
type Transcription struct {
	Model    string `toml:"model"`
	Language string `toml:"language"`
}

// Translation contains settings for the batched translation call.
type Translation struct {
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	SourceLanguage string  `toml:"source_language"`
	TargetLanguage string  `toml:"target_language"`
}

// Images contains settings for per-segment illustration.
type Images struct {
	Model               string `toml:"model"`
	Size                string `toml:"size"`
	Quality             string `toml:"quality"`
	Style               string `toml:"style"`
	RequestsPerMinute   int    `toml:"requests_per_minute"`
	Workers             int    `toml:"workers"`
	MaxRetries          int    `toml:"max_retries"`
	InitialRetryDelayMS int    `toml:"initial_retry_delay_ms"`
}

// Subtitles contains the rendering defaults for burned-in text.
type Subtitles struct {
	FontName            string `toml:"font_name"`
	OriginalFontSize    int    `toml:"original_font_size"`
	PinyinFontSize      int    `toml:"pinyin_font_size"`
	TranslationFontSize int    `toml:"translation_font_size"`
	OriginalColor       string `toml:"original_color"`
	PinyinColor         string `toml:"pinyin_color"`
	TranslationColor    string `toml:"translation_color"`
}

// Video contains encoder output settings.
type Video struct {
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	Preset       string `toml:"preset"`
	CRF          int    `toml:"crf"`
	AudioBitrate string `toml:"audio_bitrate"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subburn.
//
// Configuration sections by subsystem:
//   - Paths: cache, log, and image directories
//   - OpenAI: API credentials and transport timeout
//   - Transcription: speech-to-text model
//   - Translation: chat model, temperature, and language pair
//   - Images: image model, style, throttling, and retry budget
//   - Subtitles: font, sizes, and colours
//   - Video: output geometry and x264 settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	OpenAI        OpenAI        `toml:"openai"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Images        Images        `toml:"images"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Video         Video         `toml:"video"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subburn/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and environment fallbacks applied.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing files
// are ignored. With no arguments it reads ./.env.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subburn.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HasAPIKey reports whether an OpenAI credential is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for duration probes.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// Encode renders the effective configuration as TOML with the API key masked.
func (c *Config) Encode() ([]byte, error) {
	clone := *c
	if clone.OpenAI.APIKey != "" {
		clone.OpenAI.APIKey = maskSecret(clone.OpenAI.APIKey)
	}
	data, err := toml.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

func maskSecret(value string) string {
	if len(value) <= 8 {
		return "********"
	}
	return value[:3] + "..." + value[len(value)-4:]
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "subburn")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/subburn"
	}
	return filepath.Join(home, ".cache", "subburn")
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
