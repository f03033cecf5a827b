package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"subburn/internal/config"
	"subburn/internal/deps"
	"subburn/internal/encoding"
	"subburn/internal/imagegen"
	"subburn/internal/inputs"
	"subburn/internal/logging"
	"subburn/internal/media/ffprobe"
	"subburn/internal/pipeline"
	"subburn/internal/preflight"
	"subburn/internal/subtitles"
	"subburn/internal/transcription"
)

type burnFlags struct {
	output     string
	width      int
	height     int
	open       bool
	whisper    bool
	images     bool
	imageStyle string
	font       string
	pinyin     bool
	translate  bool
	preset     string
	crf        int
	noCache    bool

	originalColor       string
	pinyinColor         string
	translationColor    string
	originalFontSize    int
	pinyinFontSize      int
	translationFontSize int
}

func newBurnCommand(ctx *commandContext) *cobra.Command {
	var flags burnFlags

	cmd := &cobra.Command{
		Use:   "burn <files...>",
		Short: "Create a video with burned-in subtitles",
		Long: `Create a video from an audio or video file with burned-in subtitles.

Inputs are classified by content: one audio or video file, an optional image
used as a static background, and an optional SRT file. Without an SRT file the
sibling <audio>.srt is used, or the audio is transcribed when none exists.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			opts, err := flags.subtitleOptions(cmd, cfg)
			if err != nil {
				return err
			}
			if missing := deps.MissingRequired(preflight.CheckSystemDeps(cfg)); len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, m := range missing {
					names = append(names, fmt.Sprintf("%s (%s)", m.Name, m.Command))
				}
				return fmt.Errorf("missing required tools: %s; run `subburn doctor` for details", strings.Join(names, ", "))
			}

			runCtx := runContext(cmd)
			client := ctx.openAIClient(cfg)
			cache, err := ctx.cache(cfg, logger)
			if err != nil {
				return err
			}
			translator, err := ctx.translator(cfg, client, cache, logger)
			if err != nil {
				return err
			}

			display := newProgressDisplay(cmd.ErrOrStderr())
			settings := imagegen.Settings{
				Model:    cfg.Images.Model,
				Size:     cfg.Images.Size,
				Quality:  cfg.Images.Quality,
				Workers:  cfg.Images.Workers,
				TempRoot: cfg.Paths.ImageDir,
			}
			limiter := imageLimiter(cfg)
			p := &pipeline.Pipeline{
				Transcriber: transcription.New(client, cfg.Transcription.Model, cfg.Transcription.Language, logger),
				Translator:  translator,
				Images: func(progress imagegen.Progress) pipeline.ImageGenerator {
					return imagegen.New(client, limiter, settings, logger,
						imagegen.WithProgress(progress),
						imagegen.WithPolicy(imagePolicy(cfg, logger)),
					)
				},
				Encoder:  encoding.New(cfg.FFmpegBinary(), logger),
				Prober:   ffprobe.New(cfg.FFprobeBinary()),
				Pinyin:   subtitles.NewPinyin(),
				Progress: display,
				Logger:   logger,
			}

			style := strings.TrimSpace(flags.imageStyle)
			if style == "" {
				style = cfg.Images.Style
			}
			req := pipeline.Request{
				Paths:        args,
				Output:       flags.output,
				Whisper:      flags.whisper,
				Images:       flags.images,
				ImageStyle:   style,
				Options:      opts,
				Width:        pick(cmd, "width", flags.width, cfg.Video.Width),
				Height:       pick(cmd, "height", flags.height, cfg.Video.Height),
				Preset:       pickString(cmd, "preset", flags.preset, cfg.Video.Preset),
				CRF:          pick(cmd, "crf", flags.crf, cfg.Video.CRF),
				AudioBitrate: cfg.Video.AudioBitrate,
				NoCache:      flags.noCache,
			}
			result, err := p.Run(runCtx, req)
			stopProgress(display)
			if err != nil {
				return err
			}

			printBurnSummary(cmd.OutOrStdout(), result)
			if flags.open {
				if err := inputs.Open(runCtx, result.Output); err != nil {
					logging.WarnWithContext(logging.WithContext(runCtx, logger), "could not open video", "open_failed",
						logging.String("path", result.Output),
						logging.Error(err),
						logging.String(logging.FieldImpact, "the video was created but not opened"),
						logging.String(logging.FieldErrorHint, "open the file manually"),
					)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "Output video path (default: <media>.mp4 next to the input)")
	f.IntVarP(&flags.width, "width", "w", encoding.DefaultWidth, "Video width")
	f.IntVarP(&flags.height, "height", "H", encoding.DefaultHeight, "Video height")
	f.BoolVar(&flags.open, "open", false, "Open the video when done")
	f.BoolVar(&flags.whisper, "whisper", false, "Transcribe the audio even when a subtitle file exists")
	f.BoolVar(&flags.images, "generate-images", false, "Generate one background image per subtitle segment")
	f.StringVar(&flags.imageStyle, "image-style", "", "Style prompt prefix for generated images")
	f.StringVar(&flags.font, "font", "", "Subtitle font name")
	f.BoolVar(&flags.pinyin, "pinyin", false, "Add a pinyin line under each Chinese subtitle")
	f.BoolVar(&flags.translate, "translation", false, "Add a translated line under each Chinese subtitle")
	f.StringVar(&flags.originalColor, "original-color", subtitles.DefaultOriginalColor, "Colour of the original text (RRGGBB)")
	f.StringVar(&flags.pinyinColor, "pinyin-color", subtitles.DefaultPinyinColor, "Colour of the pinyin line (RRGGBB)")
	f.StringVar(&flags.translationColor, "translation-color", subtitles.DefaultTranslationColor, "Colour of the translation line (RRGGBB)")
	f.IntVar(&flags.originalFontSize, "original-size", subtitles.DefaultOriginalFontSize, "Font size of the original text")
	f.IntVar(&flags.pinyinFontSize, "pinyin-size", subtitles.DefaultPinyinFontSize, "Font size of the pinyin line")
	f.IntVar(&flags.translationFontSize, "translation-size", subtitles.DefaultTranslationFontSize, "Font size of the translation line")
	f.StringVar(&flags.preset, "preset", encoding.DefaultPreset, "x264 preset")
	f.IntVar(&flags.crf, "crf", encoding.DefaultCRF, "x264 constant rate factor")
	f.BoolVar(&flags.noCache, "no-cache", false, "Ignore cached translations")
	return cmd
}

// subtitleOptions merges config defaults with explicitly set flags.
func (f burnFlags) subtitleOptions(cmd *cobra.Command, cfg *config.Config) (subtitles.Options, error) {
	opts := subtitles.Options{
		ShowPinyin:          f.pinyin,
		ShowTranslation:     f.translate,
		FontName:            pickString(cmd, "font", f.font, cfg.Subtitles.FontName),
		OriginalFontSize:    pick(cmd, "original-size", f.originalFontSize, cfg.Subtitles.OriginalFontSize),
		PinyinFontSize:      pick(cmd, "pinyin-size", f.pinyinFontSize, cfg.Subtitles.PinyinFontSize),
		TranslationFontSize: pick(cmd, "translation-size", f.translationFontSize, cfg.Subtitles.TranslationFontSize),
		OriginalColor:       pickString(cmd, "original-color", f.originalColor, cfg.Subtitles.OriginalColor),
		PinyinColor:         pickString(cmd, "pinyin-color", f.pinyinColor, cfg.Subtitles.PinyinColor),
		TranslationColor:    pickString(cmd, "translation-color", f.translationColor, cfg.Subtitles.TranslationColor),
	}
	var errs []error
	for name, value := range map[string]*string{
		"original-color":    &opts.OriginalColor,
		"pinyin-color":      &opts.PinyinColor,
		"translation-color": &opts.TranslationColor,
	} {
		if err := config.ValidateColor(*value); err != nil {
			errs = append(errs, fmt.Errorf("--%s: %w", name, err))
			continue
		}
		*value = config.NormalizeColor(*value)
	}
	return opts, errors.Join(errs...)
}

// pick prefers an explicitly set flag, then a positive config value, then
// the flag default.
func pick(cmd *cobra.Command, name string, flagValue, configValue int) int {
	if cmd.Flags().Changed(name) || configValue <= 0 {
		return flagValue
	}
	return configValue
}

func pickString(cmd *cobra.Command, name, flagValue, configValue string) string {
	if cmd.Flags().Changed(name) || strings.TrimSpace(configValue) == "" {
		return flagValue
	}
	return configValue
}

func printBurnSummary(out io.Writer, result pipeline.Result) {
	fmt.Fprintf(out, "Created video: %s\n", result.Output)
	fmt.Fprintf(out, "Subtitle:      %s\n", result.Subtitle)
	if result.Transcribed {
		fmt.Fprintf(out, "Transcribed:   %d segments\n", result.Segments)
	}
	if result.Images > 0 || result.ImageFailures > 0 {
		fmt.Fprintf(out, "Images:        %d generated, %d failed\n", result.Images, result.ImageFailures)
	}
}
