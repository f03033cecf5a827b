package subtitles

// Segment is one timed subtitle cue. Start and End are seconds from the start
// of the media; Start never exceeds End. Translation is nil until a
// translation has been attached.
type Segment struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Text        string  `json:"text"`
	Translation *string `json:"translation,omitempty"`
}

// CacheKeyFields exposes the fields that identify a segment's source content.
// Translation is not part of it.
func (s Segment) CacheKeyFields() map[string]any {
	return map[string]any{
		"start": s.Start,
		"end":   s.End,
		"text":  s.Text,
	}
}

// Duration returns End-Start.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// WithTranslation returns a copy of s carrying text as its translation.
func (s Segment) WithTranslation(text string) Segment {
	s.Translation = &text
	return s
}

// Clone returns a deep copy of segments.
func Clone(segments []Segment) []Segment {
	if segments == nil {
		return nil
	}
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		if seg.Translation != nil {
			tr := *seg.Translation
			out[i].Translation = &tr
		}
	}
	return out
}

// Options controls how segments are rendered.
type Options struct {
	ShowPinyin          bool
	ShowTranslation     bool
	FontName            string
	OriginalFontSize    int
	PinyinFontSize      int
	TranslationFontSize int
	OriginalColor       string
	PinyinColor         string
	TranslationColor    string
}

const (
	DefaultOriginalFontSize    = 28
	DefaultPinyinFontSize      = 22
	DefaultTranslationFontSize = 22
	DefaultOriginalColor       = "FFFFFF"
	DefaultPinyinColor         = "00FFFF"
	DefaultTranslationColor    = "7FFF7F"
)

// DefaultOptions returns rendering options with no overlays enabled.
func DefaultOptions() Options {
	return Options{
		OriginalFontSize:    DefaultOriginalFontSize,
		PinyinFontSize:      DefaultPinyinFontSize,
		TranslationFontSize: DefaultTranslationFontSize,
		OriginalColor:       DefaultOriginalColor,
		PinyinColor:         DefaultPinyinColor,
		TranslationColor:    DefaultTranslationColor,
	}
}
