package subtitles

import "strings"

// isHan reports whether r lies in the CJK Unified Ideographs block.
func isHan(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// ContainsCJK reports whether text contains at least one CJK ideograph.
func ContainsCJK(text string) bool {
	for _, r := range text {
		if isHan(r) {
			return true
		}
	}
	return false
}

var cjkPunctuation = strings.NewReplacer(
	",", "，",
	".", "。",
	"!", "！",
	"?", "？",
	":", "：",
	";", "；",
	"(", "（",
	")", "）",
	"[", "【",
	"]", "】",
	`"`, "＂",
	"'", "＇",
)

// ToCJKPunctuation converts ASCII punctuation to full-width forms when text
// contains CJK ideographs. Other text is returned unchanged.
func ToCJKPunctuation(text string) string {
	if !ContainsCJK(text) {
		return text
	}
	return cjkPunctuation.Replace(text)
}
