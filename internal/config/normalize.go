package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOpenAI()
	c.normalizeTranscription()
	c.normalizeTranslation()
	c.normalizeImages()
	c.normalizeSubtitles()
	c.normalizeVideo()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		if value, ok := os.LookupEnv("SUBBURN_CACHE_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.CacheDir = strings.TrimSpace(value)
		} else {
			c.Paths.CacheDir = defaultCacheDir()
		}
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ImageDir, err = expandPath(c.Paths.ImageDir); err != nil {
		return fmt.Errorf("paths.image_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOpenAI() {
	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	if c.OpenAI.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.OpenAI.APIKey = strings.TrimSpace(value)
		}
	}
	c.OpenAI.BaseURL = strings.TrimSpace(c.OpenAI.BaseURL)
	if value, ok := os.LookupEnv("OPENAI_BASE_URL"); ok && strings.TrimSpace(value) != "" && c.OpenAI.BaseURL == defaultOpenAIBaseURL {
		c.OpenAI.BaseURL = strings.TrimSpace(value)
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaultOpenAIBaseURL
	}
	c.OpenAI.BaseURL = strings.TrimRight(c.OpenAI.BaseURL, "/")
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = defaultOpenAITimeoutSeconds
	}
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultTranscriptionModel
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
}

func (c *Config) normalizeTranslation() {
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	if c.Translation.Model == "" {
		c.Translation.Model = defaultTranslationModel
	}
	c.Translation.SourceLanguage = strings.TrimSpace(c.Translation.SourceLanguage)
	if c.Translation.SourceLanguage == "" {
		c.Translation.SourceLanguage = defaultSourceLanguage
	}
	c.Translation.TargetLanguage = strings.TrimSpace(c.Translation.TargetLanguage)
	if c.Translation.TargetLanguage == "" {
		c.Translation.TargetLanguage = defaultTargetLanguage
	}
}

func (c *Config) normalizeImages() {
	c.Images.Model = strings.TrimSpace(c.Images.Model)
	if c.Images.Model == "" {
		c.Images.Model = defaultImageModel
	}
	c.Images.Size = strings.ToLower(strings.TrimSpace(c.Images.Size))
	if c.Images.Size == "" {
		c.Images.Size = defaultImageSize
	}
	c.Images.Quality = strings.ToLower(strings.TrimSpace(c.Images.Quality))
	if c.Images.Quality == "" {
		c.Images.Quality = defaultImageQuality
	}
	c.Images.Style = strings.TrimSpace(c.Images.Style)
	if c.Images.Style == "" {
		c.Images.Style = defaultImageStyle
	}
	if c.Images.Workers <= 0 {
		c.Images.Workers = defaultImageWorkers
	}
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.FontName = strings.TrimSpace(c.Subtitles.FontName)
	c.Subtitles.OriginalColor = normalizeColor(c.Subtitles.OriginalColor, defaultOriginalColor)
	c.Subtitles.PinyinColor = normalizeColor(c.Subtitles.PinyinColor, defaultPinyinColor)
	c.Subtitles.TranslationColor = normalizeColor(c.Subtitles.TranslationColor, defaultTranslationColor)
}

func (c *Config) normalizeVideo() {
	c.Video.Preset = strings.ToLower(strings.TrimSpace(c.Video.Preset))
	if c.Video.Preset == "" {
		c.Video.Preset = defaultVideoPreset
	}
	c.Video.AudioBitrate = strings.ToLower(strings.TrimSpace(c.Video.AudioBitrate))
	if c.Video.AudioBitrate == "" {
		c.Video.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// NormalizeColor strips a leading '#' and upper-cases a hex colour.
func NormalizeColor(value string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(value), "#"))
}

func normalizeColor(value, fallback string) string {
	value = NormalizeColor(value)
	if value == "" {
		return fallback
	}
	return value
}
