package subtitles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseError reports a malformed SRT cue.
type ParseError struct {
	Line  int
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("srt line %d: %q: %v", e.Line, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errEndBeforeStart = errors.New("end precedes start")

// Encode renders segments as SRT. Each cue is index, timing, the original text
// with CJK punctuation, then the optional pinyin and translation lines. Cues
// are separated by a blank line and the output ends with a newline. An empty
// slice encodes to the empty string.
//
// pinyin may be nil, in which case a default generator is used when
// opts.ShowPinyin is set.
func Encode(segments []Segment, opts Options, pinyin PinyinGenerator) string {
	if len(segments) == 0 {
		return ""
	}
	if opts.ShowPinyin && pinyin == nil {
		pinyin = defaultPinyin()
	}

	entries := make([]string, 0, len(segments))
	for i, seg := range segments {
		var b strings.Builder
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(seg.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(seg.End))
		b.WriteByte('\n')

		text := ToCJKPunctuation(seg.Text)
		b.WriteString(text)
		b.WriteByte('\n')

		if opts.ShowPinyin && ContainsCJK(text) {
			b.WriteString(fontTag(opts.PinyinColor, opts.PinyinFontSize, pinyin.Pinyin(text)))
			b.WriteByte('\n')
		}
		if opts.ShowTranslation && seg.Translation != nil {
			b.WriteString(fontTag(opts.TranslationColor, opts.TranslationFontSize, *seg.Translation))
			b.WriteByte('\n')
		}
		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n")
}

func fontTag(color string, size int, text string) string {
	return fmt.Sprintf(`<font color="#%s" size="%d">%s</font>`, color, size, text)
}

// Decode parses SRT text into segments. Blocks are separated by blank lines.
// Within a block the line containing "-->" carries the timing, pure-digit
// lines are cue indexes and are dropped, and the first remaining line becomes
// the segment text. Blocks without text are dropped. A malformed timing line,
// or one whose end precedes its start, is a *ParseError.
func Decode(text string) ([]Segment, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil, nil
	}

	var (
		segments []Segment
		current  Segment
		lines    []string
		open     bool
	)
	flush := func() {
		if open && len(lines) > 0 {
			current.Text = lines[0]
			segments = append(segments, current)
		}
		current = Segment{}
		lines = nil
		open = false
	}

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}
		open = true
		switch {
		case strings.Contains(line, "-->"):
			start, end, err := parseTiming(line)
			if err != nil {
				return nil, &ParseError{Line: i + 1, Value: line, Err: err}
			}
			current.Start, current.End = start, end
		case isDigits(line):
			// cue index
		default:
			lines = append(lines, line)
		}
	}
	flush()
	return segments, nil
}

func parseTiming(line string) (float64, float64, error) {
	left, right, ok := strings.Cut(line, "-->")
	if !ok {
		return 0, 0, fmt.Errorf("missing arrow")
	}
	// Some writers append position hints after the end time.
	if fields := strings.Fields(right); len(fields) > 0 {
		right = fields[0]
	}
	start, err := ParseTimestamp(left)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(right)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, errEndBeforeStart
	}
	return start, end, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ReadFile decodes the SRT file at path.
func ReadFile(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	segments, err := Decode(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return segments, nil
}

// WriteFile encodes segments and writes them to path as UTF-8.
func WriteFile(path string, segments []Segment, opts Options, pinyin PinyinGenerator) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create srt directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(Encode(segments, opts, pinyin)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}
