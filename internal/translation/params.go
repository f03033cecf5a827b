package translation

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"subburn/internal/subtitles"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.3
	cacheType          = "translation"
)

// ModelParams are the request settings that, together with the segments,
// determine a translation result.
type ModelParams struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	Source       language.Tag
	Target       language.Tag
}

// DefaultModelParams translates Chinese to English with gpt-4o-mini.
func DefaultModelParams() ModelParams {
	return NewModelParams(DefaultModel, DefaultTemperature, language.Chinese, language.English)
}

// NewModelParams builds params with a system prompt naming the language pair.
func NewModelParams(model string, temperature float64, source, target language.Tag) ModelParams {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return ModelParams{
		Model:        model,
		Temperature:  temperature,
		SystemPrompt: systemPrompt(source, target),
		Source:       source,
		Target:       target,
	}
}

// LanguageName returns the English display name of tag, e.g. "Chinese".
func LanguageName(tag language.Tag) string {
	base, _ := tag.Base()
	if name := display.English.Languages().Name(base); name != "" {
		return name
	}
	return tag.String()
}

func systemPrompt(source, target language.Tag) string {
	return fmt.Sprintf(
		"You are a professional translator. Translate the following numbered %s texts to %s. "+
			"Provide accurate, natural-sounding translations that preserve the meaning and tone of the original. "+
			"Return translations with their corresponding numbers.",
		LanguageName(source), LanguageName(target),
	)
}

func (p ModelParams) userPrompt(texts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate these numbered %s texts to %s:\n", LanguageName(p.Source), LanguageName(p.Target))
	for i, text := range texts {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, text)
	}
	return b.String()
}

// CacheParams identifies a cached translation batch. Segments contribute
// start, end, and text only.
type CacheParams struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	Segments     []subtitles.Segment
}

// CacheKeyFields implements contentcache.KeyFielder.
func (p CacheParams) CacheKeyFields() map[string]any {
	segments := make([]any, len(p.Segments))
	for i, seg := range p.Segments {
		segments[i] = seg.CacheKeyFields()
	}
	return map[string]any{
		"model":         p.Model,
		"temperature":   p.Temperature,
		"system_prompt": p.SystemPrompt,
		"segments":      segments,
	}
}

// responseSchema constrains the model to {translations:[{index,translation}]}.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"translations": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"index":       map[string]any{"type": "integer"},
						"translation": map[string]any{"type": "string"},
					},
					"required":             []string{"index", "translation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"translations"},
		"additionalProperties": false,
	}
}
