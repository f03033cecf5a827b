package subtitles

import (
	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// DetectLanguage returns the most common language across segment texts, or
// language.Und when nothing can be detected.
func DetectLanguage(segments []Segment) language.Tag {
	if len(segments) == 0 {
		return language.Und
	}

	counts := make(map[string]int)
	for _, seg := range segments {
		info := whatlanggo.Detect(seg.Text)
		code := info.Lang.Iso6391()
		if code == "" {
			continue
		}
		counts[code]++
	}

	var top string
	var topCount int
	for code, count := range counts {
		if count > topCount || (count == topCount && code < top) {
			top = code
			topCount = count
		}
	}
	if top == "" {
		return language.Und
	}
	tag, err := language.Parse(top)
	if err != nil {
		return language.Und
	}
	return tag
}

// IsChinese reports whether tag's base language is Chinese.
func IsChinese(tag language.Tag) bool {
	base, _ := tag.Base()
	return base.String() == "zh"
}
