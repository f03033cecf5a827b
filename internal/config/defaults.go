package config

const (
	defaultLogDir                 = "~/.local/share/subburn/logs"
	defaultOpenAIBaseURL          = "https://api.openai.com/v1"
	defaultOpenAITimeoutSeconds   = 120
	defaultTranscriptionModel     = "whisper-1"
	defaultTranslationModel       = "gpt-4o-mini"
	defaultTranslationTemperature = 0.3
	defaultSourceLanguage         = "zh"
	defaultTargetLanguage         = "en"
	defaultImageModel             = "dall-e-3"
	defaultImageSize              = "1024x1024"
	defaultImageQuality           = "standard"
	defaultImageStyle             = "A minimalist, elegant scene"
	defaultImagesPerMinute        = 7
	defaultImageWorkers           = 4
	defaultImageMaxRetries        = 3
	defaultImageRetryDelayMS      = 1000
	defaultOriginalFontSize       = 28
	defaultPinyinFontSize         = 22
	defaultTranslationFontSize    = 22
	defaultOriginalColor          = "FFFFFF"
	defaultPinyinColor            = "00FFFF"
	defaultTranslationColor       = "7FFF7F"
	defaultVideoWidth             = 1024
	defaultVideoHeight            = 1024
	defaultVideoPreset            = "medium"
	defaultVideoCRF               = 23
	defaultAudioBitrate           = "192k"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			TimeoutSeconds: defaultOpenAITimeoutSeconds,
		},
		Transcription: Transcription{
			Model: defaultTranscriptionModel,
		},
		Translation: Translation{
			Model:          defaultTranslationModel,
			Temperature:    defaultTranslationTemperature,
			SourceLanguage: defaultSourceLanguage,
			TargetLanguage: defaultTargetLanguage,
		},
		Images: Images{
			Model:               defaultImageModel,
			Size:                defaultImageSize,
			Quality:             defaultImageQuality,
			Style:               defaultImageStyle,
			RequestsPerMinute:   defaultImagesPerMinute,
			Workers:             defaultImageWorkers,
			MaxRetries:          defaultImageMaxRetries,
			InitialRetryDelayMS: defaultImageRetryDelayMS,
		},
		Subtitles: Subtitles{
			OriginalFontSize:    defaultOriginalFontSize,
			PinyinFontSize:      defaultPinyinFontSize,
			TranslationFontSize: defaultTranslationFontSize,
			OriginalColor:       defaultOriginalColor,
			PinyinColor:         defaultPinyinColor,
			TranslationColor:    defaultTranslationColor,
		},
		Video: Video{
			Width:        defaultVideoWidth,
			Height:       defaultVideoHeight,
			Preset:       defaultVideoPreset,
			CRF:          defaultVideoCRF,
			AudioBitrate: defaultAudioBitrate,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
