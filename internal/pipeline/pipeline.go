package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"subburn/internal/encoding"
	"subburn/internal/imagegen"
	"subburn/internal/inputs"
	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/subtitles"
	"subburn/internal/translation"
)

// Transcriber produces segments from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]subtitles.Segment, error)
}

// Translator attaches translations to segments.
type Translator interface {
	Translate(ctx context.Context, segments []subtitles.Segment, opts ...translation.TranslateOption) ([]subtitles.Segment, error)
}

// ImageGenerator illustrates segments.
type ImageGenerator interface {
	Generate(ctx context.Context, segments []subtitles.Segment, style string) (imagegen.Result, error)
}

// ImageGeneratorFactory builds a generator bound to a progress reporter.
type ImageGeneratorFactory func(progress imagegen.Progress) ImageGenerator

// Encoder renders the final video.
type Encoder interface {
	Encode(ctx context.Context, job encoding.Job, progress encoding.ProgressFunc) error
}

// DurationProber measures media length.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Request describes one burn.
type Request struct {
	Paths  []string
	Output string
	// Whisper forces transcription even when a subtitle file exists.
	Whisper      bool
	Images       bool
	ImageStyle   string
	Options      subtitles.Options
	Width        int
	Height       int
	Preset       string
	CRF          int
	AudioBitrate string
	NoCache      bool
}

// Result summarises a completed burn.
type Result struct {
	Output        string
	Subtitle      string
	Segments      int
	Transcribed   bool
	Images        int
	ImageFailures int
}

// Pipeline wires the burn collaborators.
type Pipeline struct {
	Transcriber Transcriber
	Translator  Translator
	Images      ImageGeneratorFactory
	Encoder     Encoder
	Prober      DurationProber
	Pinyin      subtitles.PinyinGenerator
	Progress    Progress
	Logger      *slog.Logger
}

func (p *Pipeline) progress() Progress {
	if p.Progress == nil {
		return nopProgress{}
	}
	return p.Progress
}

func (p *Pipeline) logger() *slog.Logger {
	return logging.NewComponentLogger(p.Logger, "pipeline")
}

// Run executes req.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	files, err := inputs.Collect(req.Paths)
	if err != nil {
		return Result{}, err
	}
	output, err := inputs.OutputPath(files, req.Output)
	if err != nil {
		return Result{}, err
	}
	result := Result{Output: output}
	logger := logging.WithContext(ctx, p.logger())
	logger.Info("burn started",
		logging.String(logging.FieldEventType, "burn_start"),
		logging.String("media", files.Media()),
		logging.String("subtitle", files.Subtitle),
		logging.String("output", output),
	)

	whisper := req.Whisper
	if files.Subtitle == "" && !whisper {
		if files.Audio == "" {
			return Result{}, services.Wrap(services.ErrValidation, "pipeline", "resolve subtitle", "no audio file found", nil)
		}
		files.Subtitle = inputs.SubtitleFor(files.Audio)
		if _, err := os.Stat(files.Subtitle); errors.Is(err, os.ErrNotExist) {
			whisper = true
		}
	}

	var segments []subtitles.Segment
	if whisper {
		segments, err = p.transcribe(ctx, files, req)
		if err != nil {
			return Result{}, err
		}
		files.Subtitle = inputs.SubtitleFor(files.Audio)
		result.Transcribed = true
	} else if req.Options.ShowPinyin || req.Options.ShowTranslation || req.Images {
		segments, err = p.refresh(ctx, files.Subtitle, req)
		if err != nil {
			return Result{}, err
		}
	}
	result.Subtitle = files.Subtitle
	result.Segments = len(segments)

	var images map[float64]string
	if req.Images && len(segments) > 0 {
		generated, err := p.illustrate(ctx, segments, req.ImageStyle)
		if err != nil {
			return Result{}, err
		}
		images = generated.Images
		result.Images = len(generated.Images)
		result.ImageFailures = generated.Failed
	} else if req.Images {
		logger.Info("no segments to illustrate", logging.String("subtitle", files.Subtitle))
	}

	duration, err := p.Prober.Duration(services.WithStage(ctx, "probe"), files.Media())
	if err != nil {
		return Result{}, fmt.Errorf("get audio duration: %w", err)
	}

	job := encoding.Job{
		Output:       output,
		Media:        files.Media(),
		Subtitle:     files.Subtitle,
		Options:      req.Options,
		Image:        files.Image,
		Images:       images,
		Duration:     duration,
		Width:        req.Width,
		Height:       req.Height,
		Preset:       req.Preset,
		CRF:          req.CRF,
		AudioBitrate: req.AudioBitrate,
	}
	tracker := p.progress().Track("Encoding video", int64(duration))
	err = p.Encoder.Encode(services.WithStage(ctx, "encoding"), job, func(position, _ float64) {
		tracker.Set(int64(position))
	})
	tracker.Done()
	if err != nil {
		return Result{}, err
	}

	logger.Info("burn complete",
		logging.String(logging.FieldEventType, "burn_complete"),
		logging.String("output", output),
		logging.Int("segments", result.Segments),
		logging.Int("images", result.Images),
		logging.Int("image_failures", result.ImageFailures),
	)
	return result, nil
}

func (p *Pipeline) transcribe(ctx context.Context, files inputs.Files, req Request) ([]subtitles.Segment, error) {
	if files.Audio == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "transcribe", "cannot transcribe video files yet", nil)
	}
	ctx = services.WithStage(ctx, "transcription")
	tracker := p.progress().Track("Transcribing audio", 1)
	segments, err := p.Transcriber.Transcribe(ctx, files.Audio)
	tracker.Done()
	if err != nil {
		return nil, err
	}
	if req.Options.ShowTranslation && len(segments) > 0 {
		if segments, err = p.translate(ctx, segments, req); err != nil {
			return nil, err
		}
	}
	p.warnIfNotChinese(ctx, segments, req.Options)
	target := inputs.SubtitleFor(files.Audio)
	if err := subtitles.WriteFile(target, segments, req.Options, p.Pinyin); err != nil {
		return nil, err
	}
	logging.WithContext(ctx, p.logger()).Info("subtitle written",
		logging.String("path", target),
		logging.Int("segments", len(segments)),
	)
	return segments, nil
}

// refresh reads an existing subtitle, translates it when asked, and rewrites
// it with overlays when pinyin or translation is enabled.
func (p *Pipeline) refresh(ctx context.Context, path string, req Request) ([]subtitles.Segment, error) {
	segments, err := subtitles.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if req.Options.ShowTranslation && len(segments) > 0 {
		if segments, err = p.translate(ctx, segments, req); err != nil {
			return nil, err
		}
	}
	if req.Options.ShowPinyin || req.Options.ShowTranslation {
		p.warnIfNotChinese(ctx, segments, req.Options)
		if err := subtitles.WriteFile(path, segments, req.Options, p.Pinyin); err != nil {
			return nil, err
		}
		logging.WithContext(ctx, p.logger()).Info("subtitle updated with overlays", logging.String("path", path))
	}
	return segments, nil
}

func (p *Pipeline) translate(ctx context.Context, segments []subtitles.Segment, req Request) ([]subtitles.Segment, error) {
	ctx = services.WithStage(ctx, "translation")
	var opts []translation.TranslateOption
	if req.NoCache {
		opts = append(opts, translation.WithoutCache())
	}
	tracker := p.progress().Track("Translating segments", 1)
	defer tracker.Done()
	return p.Translator.Translate(ctx, segments, opts...)
}

func (p *Pipeline) illustrate(ctx context.Context, segments []subtitles.Segment, style string) (imagegen.Result, error) {
	ctx = services.WithStage(ctx, "images")
	tracker := p.progress().Track("Generating images", int64(len(segments)))
	defer tracker.Done()
	return p.Images(tracker).Generate(ctx, segments, style)
}

func (p *Pipeline) warnIfNotChinese(ctx context.Context, segments []subtitles.Segment, opts subtitles.Options) {
	if !opts.ShowPinyin || len(segments) == 0 {
		return
	}
	tag := subtitles.DetectLanguage(segments)
	if subtitles.IsChinese(tag) {
		return
	}
	logging.WarnWithContext(logging.WithContext(ctx, p.logger()), "pinyin requested for non-Chinese subtitles", "language_mismatch",
		logging.String("detected_language", tag.String()),
		logging.String(logging.FieldImpact, "pinyin is added only to lines containing Han characters"),
		logging.String(logging.FieldErrorHint, "drop --pinyin or supply a Chinese subtitle file"),
	)
}
