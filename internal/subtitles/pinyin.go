package subtitles

import (
	"strings"
	"sync"

	"github.com/go-ego/gse"
	"github.com/mozillazg/go-pinyin"
)

// PinyinGenerator transliterates Chinese text to tone-marked pinyin.
type PinyinGenerator interface {
	Pinyin(text string) string
}

// Segmenter splits a run of Chinese text into words.
type Segmenter interface {
	Cut(text string) []string
}

// Pinyin converts each segmented word to tone-marked syllables joined without
// spaces. A single space separates consecutive transliterated words; other
// text passes through untouched.
type Pinyin struct {
	segmenter Segmenter
	args      pinyin.Args
}

// PinyinOption customises a Pinyin generator.
type PinyinOption func(*Pinyin)

// WithSegmenter replaces the default dictionary segmenter.
func WithSegmenter(s Segmenter) PinyinOption {
	return func(p *Pinyin) {
		if s != nil {
			p.segmenter = s
		}
	}
}

// NewPinyin returns a generator backed by the gse dictionary segmenter. The
// dictionary loads on first use.
func NewPinyin(opts ...PinyinOption) *Pinyin {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone
	args.Fallback = func(r rune, _ pinyin.Args) []string {
		return []string{string(r)}
	}
	p := &Pinyin{segmenter: &dictSegmenter{}, args: args}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pinyin implements PinyinGenerator.
func (p *Pinyin) Pinyin(text string) string {
	var b strings.Builder
	prevWasPinyin := false
	for _, run := range splitHanRuns(text) {
		if !run.han {
			b.WriteString(run.text)
			prevWasPinyin = false
			continue
		}
		for _, word := range p.words(run.text) {
			if word == "" {
				continue
			}
			if prevWasPinyin {
				b.WriteByte(' ')
			}
			b.WriteString(p.syllables(word))
			prevWasPinyin = true
		}
	}
	return b.String()
}

// words segments a Han run. If the segmenter loses or alters characters the run
// is treated as a single word.
func (p *Pinyin) words(run string) []string {
	words := p.segmenter.Cut(run)
	if strings.Join(words, "") != run {
		return []string{run}
	}
	return words
}

func (p *Pinyin) syllables(word string) string {
	var b strings.Builder
	for _, readings := range pinyin.Pinyin(word, p.args) {
		if len(readings) > 0 {
			b.WriteString(readings[0])
		}
	}
	return b.String()
}

type textRun struct {
	text string
	han  bool
}

func splitHanRuns(text string) []textRun {
	var runs []textRun
	var current strings.Builder
	currentHan := false
	for _, r := range text {
		h := isHan(r)
		if current.Len() > 0 && h != currentHan {
			runs = append(runs, textRun{text: current.String(), han: currentHan})
			current.Reset()
		}
		currentHan = h
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		runs = append(runs, textRun{text: current.String(), han: currentHan})
	}
	return runs
}

type dictSegmenter struct {
	once sync.Once
	seg  gse.Segmenter
	err  error
}

func (d *dictSegmenter) Cut(text string) []string {
	d.once.Do(func() {
		d.seg.SkipLog = true
		d.err = d.seg.LoadDictEmbed()
	})
	if d.err != nil {
		return []string{text}
	}
	return d.seg.Cut(text, true)
}
