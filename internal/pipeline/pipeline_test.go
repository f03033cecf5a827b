package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subburn/internal/encoding"
	"subburn/internal/imagegen"
	"subburn/internal/services"
	"subburn/internal/subtitles"
	"subburn/internal/testsupport"
	"subburn/internal/translation"
)

type fakeTranscriber struct {
	segments []subtitles.Segment
	calls    int
}

func (f *fakeTranscriber) Transcribe(context.Context, string) ([]subtitles.Segment, error) {
	f.calls++
	return subtitles.Clone(f.segments), nil
}

type fakeTranslator struct {
	calls   int
	noCache bool
}

func (f *fakeTranslator) Translate(_ context.Context, segs []subtitles.Segment, opts ...translation.TranslateOption) ([]subtitles.Segment, error) {
	f.calls++
	f.noCache = len(opts) > 0
	out := subtitles.Clone(segs)
	for i := range out {
		if subtitles.ContainsCJK(out[i].Text) {
			out[i] = out[i].WithTranslation("EN:" + out[i].Text)
		}
	}
	return out, nil
}

type fakeImages struct {
	progress imagegen.Progress
	segments []subtitles.Segment
	style    string
}

func (f *fakeImages) Generate(_ context.Context, segs []subtitles.Segment, style string) (imagegen.Result, error) {
	f.segments, f.style = segs, style
	images := map[float64]string{}
	for i, seg := range segs {
		images[seg.Start] = filepath.Join("/img", string(rune('a'+i))+".png")
		f.progress.Advance(1)
	}
	return imagegen.Result{Images: images, Failed: 1}, nil
}

type fakeEncoder struct {
	job encoding.Job
}

func (f *fakeEncoder) Encode(_ context.Context, job encoding.Job, progress encoding.ProgressFunc) error {
	f.job = job
	progress(job.Duration, job.Duration)
	return nil
}

type fakeProber struct{ duration float64 }

func (f fakeProber) Duration(context.Context, string) (float64, error) { return f.duration, nil }

type stubPinyin struct{}

func (stubPinyin) Pinyin(text string) string { return "py:" + text }

type countingProgress struct{ advanced int }

func (c *countingProgress) Track(string, int64) Tracker { return &countingTracker{c} }

type countingTracker struct{ p *countingProgress }

func (t *countingTracker) Advance(n int) { t.p.advanced += n }
func (t *countingTracker) Set(int64)     {}
func (t *countingTracker) Done()         {}

type harness struct {
	pipeline    *Pipeline
	transcriber *fakeTranscriber
	translator  *fakeTranslator
	images      *fakeImages
	encoder     *fakeEncoder
	progress    *countingProgress
}

func newHarness() *harness {
	h := &harness{
		transcriber: &fakeTranscriber{segments: []subtitles.Segment{
			{Start: 0, End: 2, Text: "你好"},
			{Start: 2, End: 4, Text: "世界"},
		}},
		translator: &fakeTranslator{},
		images:     &fakeImages{},
		encoder:    &fakeEncoder{},
		progress:   &countingProgress{},
	}
	h.pipeline = &Pipeline{
		Transcriber: h.transcriber,
		Translator:  h.translator,
		Images: func(p imagegen.Progress) ImageGenerator {
			h.images.progress = p
			return h.images
		},
		Encoder:  h.encoder,
		Prober:   fakeProber{duration: 4},
		Pinyin:   stubPinyin{},
		Progress: h.progress,
	}
	return h
}

func writeAudio(t *testing.T, dir string) string {
	path := filepath.Join(dir, "talk.mp3")
	testsupport.WriteBytes(t, path, testsupport.MP3Header())
	return path
}

func TestRunTranscribesWhenNoSubtitleExists(t *testing.T) {
	h := newHarness()
	dir := t.TempDir()
	audio := writeAudio(t, dir)
	opts := subtitles.DefaultOptions()
	opts.ShowTranslation = true

	res, err := h.pipeline.Run(context.Background(), Request{Paths: []string{audio}, Options: opts, NoCache: true})
	require.NoError(t, err)
	assert.True(t, res.Transcribed)
	assert.Equal(t, 1, h.transcriber.calls)
	assert.Equal(t, 1, h.translator.calls)
	assert.True(t, h.translator.noCache)
	assert.Equal(t, filepath.Join(dir, "talk.mp4"), res.Output)
	assert.Equal(t, filepath.Join(dir, "talk.srt"), res.Subtitle)

	written, err := os.ReadFile(res.Subtitle)
	require.NoError(t, err)
	assert.Contains(t, string(written), "EN:你好")
	assert.Equal(t, encoding.BackgroundColor, h.encoder.job.Background())
	assert.InDelta(t, 4, h.encoder.job.Duration, 1e-9)
}

func TestRunUsesSiblingSubtitleAndRerendersOverlays(t *testing.T) {
	h := newHarness()
	dir := t.TempDir()
	audio := writeAudio(t, dir)
	srt := testsupport.WriteSRT(t, dir, "talk.srt", testsupport.TwoBlockSRT)
	opts := subtitles.DefaultOptions()
	opts.ShowPinyin = true

	res, err := h.pipeline.Run(context.Background(), Request{Paths: []string{audio}, Options: opts, Images: true, ImageStyle: "ink"})
	require.NoError(t, err)
	assert.Zero(t, h.transcriber.calls)
	assert.Zero(t, h.translator.calls)
	assert.Equal(t, srt, res.Subtitle)
	assert.Equal(t, 2, res.Segments)
	assert.Equal(t, 2, res.Images)
	assert.Equal(t, 1, res.ImageFailures)
	assert.Equal(t, 2, h.progress.advanced)
	assert.Equal(t, "ink", h.images.style)

	written, err := os.ReadFile(srt)
	require.NoError(t, err)
	assert.Contains(t, string(written), "py:你好")
	assert.Equal(t, encoding.BackgroundSlideshow, h.encoder.job.Background())

	// Rendering twice is stable: only the first text line is re-read.
	_, err = h.pipeline.Run(context.Background(), Request{Paths: []string{audio}, Options: opts})
	require.NoError(t, err)
	again, err := os.ReadFile(srt)
	require.NoError(t, err)
	assert.Equal(t, string(written), string(again))
}

func TestRunLeavesSubtitleUntouchedWithoutOverlays(t *testing.T) {
	h := newHarness()
	dir := t.TempDir()
	audio := writeAudio(t, dir)
	srt := testsupport.WriteSRT(t, dir, "talk.srt", testsupport.TwoBlockSRT)

	res, err := h.pipeline.Run(context.Background(), Request{Paths: []string{audio, srt}, Options: subtitles.DefaultOptions()})
	require.NoError(t, err)
	assert.Zero(t, res.Segments)
	data, err := os.ReadFile(srt)
	require.NoError(t, err)
	assert.Equal(t, testsupport.TwoBlockSRT, string(data))
	assert.Equal(t, srt, h.encoder.job.Subtitle)
}

func TestRunRejectsVideoTranscription(t *testing.T) {
	h := newHarness()
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	testsupport.WriteBytes(t, video, testsupport.MP4Header())

	_, err := h.pipeline.Run(context.Background(), Request{Paths: []string{video}, Output: filepath.Join(dir, "out.mp4"), Whisper: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "cannot transcribe video files yet")

	_, err = h.pipeline.Run(context.Background(), Request{Paths: []string{video}, Output: filepath.Join(dir, "out.mp4")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio file found")
}
