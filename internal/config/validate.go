package config

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/text/language"
)

var (
	hexColorPattern  = regexp.MustCompile(`^[0-9A-F]{6}$`)
	imageSizePattern = regexp.MustCompile(`^[0-9]+x[0-9]+$`)
)

// Validate ensures the configuration is usable. The API key is not checked
// here: features that need it fail fast at their own entry point.
func (c *Config) Validate() error {
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateImages(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if c.Translation.Temperature < 0 || c.Translation.Temperature > 2 {
		return errors.New("translation.temperature must be between 0 and 2")
	}
	if _, err := language.Parse(c.Translation.SourceLanguage); err != nil {
		return fmt.Errorf("translation.source_language: %w", err)
	}
	if _, err := language.Parse(c.Translation.TargetLanguage); err != nil {
		return fmt.Errorf("translation.target_language: %w", err)
	}
	return nil
}

func (c *Config) validateImages() error {
	if !imageSizePattern.MatchString(c.Images.Size) {
		return fmt.Errorf("images.size must look like 1024x1024, got %q", c.Images.Size)
	}
	if err := ensurePositiveMap(map[string]int{
		"images.requests_per_minute":    c.Images.RequestsPerMinute,
		"images.workers":                c.Images.Workers,
		"images.max_retries":            c.Images.MaxRetries,
		"images.initial_retry_delay_ms": c.Images.InitialRetryDelayMS,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if err := ensurePositiveMap(map[string]int{
		"subtitles.original_font_size":    c.Subtitles.OriginalFontSize,
		"subtitles.pinyin_font_size":      c.Subtitles.PinyinFontSize,
		"subtitles.translation_font_size": c.Subtitles.TranslationFontSize,
	}); err != nil {
		return err
	}
	for key, value := range map[string]string{
		"subtitles.original_color":    c.Subtitles.OriginalColor,
		"subtitles.pinyin_color":      c.Subtitles.PinyinColor,
		"subtitles.translation_color": c.Subtitles.TranslationColor,
	} {
		if err := ValidateColor(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validateVideo() error {
	if err := ensurePositiveMap(map[string]int{
		"video.width":  c.Video.Width,
		"video.height": c.Video.Height,
	}); err != nil {
		return err
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		return errors.New("video.width and video.height must be even for yuv420p output")
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		return errors.New("video.crf must be between 0 and 51")
	}
	return nil
}

// ValidateColor checks a six digit hex colour without the leading '#'.
func ValidateColor(value string) error {
	if !hexColorPattern.MatchString(NormalizeColor(value)) {
		return fmt.Errorf("invalid hex colour %q (expected RRGGBB)", value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
