package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"subburn/internal/contentcache"
	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/services/openai"
	"subburn/internal/subtitles"
)

// ChatClient is the remote surface the translator needs.
type ChatClient interface {
	HasAPIKey() bool
	CompleteStructured(ctx context.Context, req openai.ChatRequest) (string, error)
}

// CoverageError reports response indices the model failed to return.
type CoverageError struct {
	Missing  []int
	Expected int
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("translation response missing %d of %d indices: %v", len(e.Missing), e.Expected, e.Missing)
}

func (e *CoverageError) Unwrap() error { return services.ErrValidation }

// Translator batches CJK segments into one structured completion.
type Translator struct {
	client ChatClient
	cache  *contentcache.Cache
	params ModelParams
	logger *slog.Logger
}

// New constructs a translator. A nil cache disables caching.
func New(client ChatClient, cache *contentcache.Cache, params ModelParams, logger *slog.Logger) *Translator {
	return &Translator{
		client: client,
		cache:  cache,
		params: params,
		logger: logging.NewComponentLogger(logger, "translation"),
	}
}

// Params returns the model parameters in use.
func (t *Translator) Params() ModelParams { return t.params }

type translateOptions struct {
	useCache bool
}

// TranslateOption adjusts a single Translate call.
type TranslateOption func(*translateOptions)

// WithoutCache skips both the cache lookup and the cache write.
func WithoutCache() TranslateOption {
	return func(o *translateOptions) { o.useCache = false }
}

type cachedBatch struct {
	Segments []subtitles.Segment `json:"segments"`

	expected int
}

// ValidateCached rejects payloads whose shape no longer matches the request.
func (c *cachedBatch) ValidateCached() error {
	if len(c.Segments) != c.expected {
		return fmt.Errorf("cached batch has %d segments, want %d", len(c.Segments), c.expected)
	}
	return nil
}

type translationResponse struct {
	Translations []struct {
		Index       int    `json:"index"`
		Translation string `json:"translation"`
	} `json:"translations"`
}

// Translate returns a copy of segments with translations attached to every
// segment that contains CJK text and has none yet. The input is not modified.
// Inputs with nothing to translate return without a remote call or cache
// access.
func (t *Translator) Translate(ctx context.Context, segments []subtitles.Segment, opts ...TranslateOption) ([]subtitles.Segment, error) {
	options := translateOptions{useCache: t.cache != nil}
	for _, opt := range opts {
		opt(&options)
	}

	out := subtitles.Clone(segments)
	pending := make([]int, 0, len(out))
	for i, seg := range out {
		if seg.Translation == nil && subtitles.ContainsCJK(seg.Text) {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		t.logger.Debug("no segments need translation", logging.Int("segments", len(out)))
		return out, nil
	}

	if t.client == nil || !t.client.HasAPIKey() {
		return nil, services.MissingCredential("Translation")
	}

	logger := logging.WithContext(ctx, t.logger)
	var key string
	if options.useCache {
		k, err := contentcache.ComputeKey(CacheParams{
			Model:        t.params.Model,
			Temperature:  t.params.Temperature,
			SystemPrompt: t.params.SystemPrompt,
			Segments:     segments,
		}.CacheKeyFields())
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "translation", "cache key", "", err)
		}
		key = k
		cached := &cachedBatch{expected: len(out)}
		if t.cache.Load(cacheType, key, cached) {
			logger.Info("translation cache hit",
				logging.String(logging.FieldEventType, "translation_cache_hit"),
				logging.Int("segments", len(cached.Segments)),
			)
			return cached.Segments, nil
		}
	}

	texts := make([]string, len(pending))
	for i, idx := range pending {
		texts[i] = out[idx].Text
	}

	start := time.Now()
	logger.Info("translation request",
		logging.String(logging.FieldEventType, "translation_request"),
		logging.Int("segments", len(pending)),
		logging.String("model", t.params.Model),
	)
	content, err := t.client.CompleteStructured(ctx, openai.ChatRequest{
		Model:        t.params.Model,
		Temperature:  t.params.Temperature,
		SystemPrompt: t.params.SystemPrompt,
		UserPrompt:   t.params.userPrompt(texts),
		Schema: &openai.JSONSchema{
			Name:   "translation_response",
			Schema: responseSchema(),
			Strict: true,
		},
	})
	if err != nil {
		return nil, err
	}

	var resp translationResponse
	if err := openai.DecodeJSON(content, &resp); err != nil {
		return nil, err
	}
	byIndex := make(map[int]string, len(resp.Translations))
	for _, tr := range resp.Translations {
		byIndex[tr.Index] = tr.Translation
	}
	var missing []int
	for i, idx := range pending {
		text, ok := byIndex[i+1]
		if !ok {
			missing = append(missing, i+1)
			continue
		}
		out[idx] = out[idx].WithTranslation(text)
	}
	if len(missing) > 0 {
		return nil, &CoverageError{Missing: missing, Expected: len(pending)}
	}

	logger.Info("translation complete",
		logging.String(logging.FieldEventType, "translation_complete"),
		logging.Int("segments", len(pending)),
		logging.Duration("elapsed", time.Since(start)),
	)

	if options.useCache {
		if err := t.cache.Save(cacheType, key, &cachedBatch{Segments: out}); err != nil {
			logging.WarnWithContext(logger, "translation cache write failed", "cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "translation will be requested again next run"),
			)
		}
	}
	return out, nil
}

// IsCoverageError reports whether err is a CoverageError.
func IsCoverageError(err error) bool {
	var coverage *CoverageError
	return errors.As(err, &coverage)
}
