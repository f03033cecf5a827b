package subtitles

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinyin struct{}

func (stubPinyin) Pinyin(text string) string { return "py(" + text + ")" }

func strPtr(s string) *string { return &s }

func TestEncodeEmpty(t *testing.T) {
	assert.Equal(t, "", Encode(nil, DefaultOptions(), nil))
}

func TestEncodeDecodeTwoBlockFixture(t *testing.T) {
	input := "1\n00:00:00,000 --> 00:00:02,000\nHello, world!\n\n2\n00:00:02,000 --> 00:00:04,000\nThis is a test."

	segments, err := Decode(input)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, Segment{Start: 0, End: 2, Text: "Hello, world!"}, segments[0])
	assert.Equal(t, Segment{Start: 2, End: 4, Text: "This is a test."}, segments[1])

	assert.Equal(t, input+"\n", Encode(segments, DefaultOptions(), nil))
}

func TestEncodeWithOverlays(t *testing.T) {
	opts := DefaultOptions()
	opts.ShowPinyin = true
	opts.ShowTranslation = true
	segments := []Segment{
		{Start: 1.5, End: 3.25, Text: "你好, 世界!", Translation: strPtr("Hello, world!")},
		{Start: 3.25, End: 5, Text: "plain text"},
	}

	got := Encode(segments, opts, stubPinyin{})
	want := "1\n00:00:01,500 --> 00:00:03,250\n" +
		"你好， 世界！\n" +
		`<font color="#00FFFF" size="22">py(你好， 世界！)</font>` + "\n" +
		`<font color="#7FFF7F" size="22">Hello, world!</font>` + "\n" +
		"\n" +
		"2\n00:00:03,250 --> 00:00:05,000\nplain text\n"
	assert.Equal(t, want, got)
}

func TestEncodeSkipsTranslationWhenAbsentOrDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.ShowTranslation = true
	out := Encode([]Segment{{Start: 0, End: 1, Text: "再见"}}, opts, nil)
	assert.NotContains(t, out, "<font")

	opts.ShowTranslation = false
	out = Encode([]Segment{{Start: 0, End: 1, Text: "再见", Translation: strPtr("Goodbye")}}, opts, nil)
	assert.NotContains(t, out, "Goodbye")
}

func TestDecodeKeepsFirstLineOnly(t *testing.T) {
	input := "1\n00:00:01,000 --> 00:00:02,000\n你好\n<font color=\"#00FFFF\" size=\"22\">nǐhǎo</font>\n<font>Hello</font>\n"
	segments, err := Decode(input)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "你好", segments[0].Text)
	assert.Nil(t, segments[0].Translation)
}

func TestDecodeAcceptsDotsCRLFAndBOM(t *testing.T) {
	input := "\ufeff1\r\n00:01:02.345 --> 01:00:00.000\r\nline\r\n\r\n"
	segments, err := Decode(input)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.InDelta(t, 62.345, segments[0].Start, 1e-9)
	assert.InDelta(t, 3600, segments[0].End, 1e-9)
}

func TestDecodeDropsEmptyBlocks(t *testing.T) {
	input := "1\n00:00:00,000 --> 00:00:01,000\n\n2\n00:00:01,000 --> 00:00:02,000\ntext\n"
	segments, err := Decode(input)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "text", segments[0].Text)
}

func TestDecodeMalformedTimingIsParseError(t *testing.T) {
	cases := map[string]string{
		"garbage":          "1\n00:00:xx,000 --> 00:00:01,000\ntext\n",
		"missing end":      "1\n00:00:00,000 -->\ntext\n",
		"end before start": "1\n00:00:05,000 --> 00:00:01,000\ntext\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(input)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, 2, perr.Line)
		})
	}
}

func TestRoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	texts := []string{"你好世界", "再见", "Hello world", "这是第三句", "mixed 中文 text", "一二三"}

	for iter := range 200 {
		n := rng.IntN(8)
		segments := make([]Segment, 0, n)
		cursor := int64(0)
		for range n {
			startMS := cursor + rng.Int64N(5000)
			endMS := startMS + rng.Int64N(8000)
			cursor = endMS
			seg := Segment{
				Start: float64(startMS) / 1000,
				End:   float64(endMS) / 1000,
				Text:  texts[rng.IntN(len(texts))],
			}
			if rng.IntN(2) == 0 {
				seg = seg.WithTranslation("translated")
			}
			segments = append(segments, seg)
		}

		opts := DefaultOptions()
		opts.ShowPinyin = iter%2 == 0
		opts.ShowTranslation = iter%3 == 0

		decoded, err := Decode(Encode(segments, opts, stubPinyin{}))
		require.NoError(t, err)
		require.Len(t, decoded, len(segments), "iteration %d", iter)
		for i := range segments {
			assert.Equal(t, segments[i].Start, decoded[i].Start)
			assert.Equal(t, segments[i].End, decoded[i].End)
			assert.Equal(t, segments[i].Text, decoded[i].Text)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:        "00:00:00,000",
		2.3:      "00:00:02,300",
		61.9999:  "00:01:01,999",
		3725.042: "01:02:05,042",
		-4:       "00:00:00,000",
		360000.5: "100:00:00,500",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatTimestamp(in), fmt.Sprint(in))
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("1:02:03,004")
	require.NoError(t, err)
	assert.InDelta(t, 3723.004, got, 1e-9)

	for _, bad := range []string{"", "12:34", "aa:00:00,000", "00:61:00,000", "00:00:75,000"} {
		_, err := ParseTimestamp(bad)
		assert.Error(t, err, bad)
	}
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "audio.srt")
	segments := []Segment{{Start: 0, End: 1.5, Text: "你好"}}
	require.NoError(t, WriteFile(path, segments, DefaultOptions(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "你好\n"))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, segments, got)
}

func TestReadFileWrapsParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.srt")
	require.NoError(t, os.WriteFile(path, []byte("1\nnope --> 00:00:01,000\nx\n"), 0o644))
	_, err := ReadFile(path)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestCloneIsDeep(t *testing.T) {
	orig := []Segment{{Text: "a", Translation: strPtr("x")}}
	cp := Clone(orig)
	*cp[0].Translation = "y"
	assert.Equal(t, "x", *orig[0].Translation)
	assert.Nil(t, Clone(nil))
}
