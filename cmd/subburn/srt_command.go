package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subburn/internal/subtitles"
	"subburn/internal/translation"
)

func newSRTCommand(ctx *commandContext) *cobra.Command {
	srtCmd := &cobra.Command{
		Use:   "srt",
		Short: "Render and inspect SRT files",
	}
	srtCmd.AddCommand(newSRTRenderCommand(ctx))
	srtCmd.AddCommand(newSRTLanguageCommand())
	return srtCmd
}

func newSRTRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		output    string
		pinyin    bool
		translate bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "render <file.srt>",
		Short: "Re-render an SRT file with pinyin and translation lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			segments, err := subtitles.ReadFile(args[0])
			if err != nil {
				return err
			}

			opts := subtitles.Options{
				ShowPinyin:          pinyin,
				ShowTranslation:     translate,
				PinyinFontSize:      cfg.Subtitles.PinyinFontSize,
				TranslationFontSize: cfg.Subtitles.TranslationFontSize,
				PinyinColor:         cfg.Subtitles.PinyinColor,
				TranslationColor:    cfg.Subtitles.TranslationColor,
			}
			if translate {
				cache, err := ctx.cache(cfg, logger)
				if err != nil {
					return err
				}
				translator, err := ctx.translator(cfg, ctx.openAIClient(cfg), cache, logger)
				if err != nil {
					return err
				}
				var topts []translation.TranslateOption
				if noCache {
					topts = append(topts, translation.WithoutCache())
				}
				if segments, err = translator.Translate(runContext(cmd), segments, topts...); err != nil {
					return err
				}
			}

			if strings.TrimSpace(output) == "" {
				fmt.Fprint(cmd.OutOrStdout(), subtitles.Encode(segments, opts, nil))
				return nil
			}
			if err := subtitles.WriteFile(output, segments, opts, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d segments to %s\n", len(segments), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this path instead of stdout")
	cmd.Flags().BoolVar(&pinyin, "pinyin", false, "Add pinyin lines")
	cmd.Flags().BoolVar(&translate, "translation", false, "Add translated lines")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore cached translations")
	return cmd
}

func newSRTLanguageCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "lang <file.srt>",
		Short:       "Detect the language of an SRT file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			segments, err := subtitles.ReadFile(args[0])
			if err != nil {
				return err
			}
			tag := subtitles.DetectLanguage(segments)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (chinese: %s)\n", tag, yesNo(subtitles.IsChinese(tag)))
			return nil
		},
	}
}
