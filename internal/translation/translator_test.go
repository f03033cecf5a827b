package translation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"subburn/internal/contentcache"
	"subburn/internal/services"
	"subburn/internal/services/openai"
	"subburn/internal/subtitles"
)

type stubChat struct {
	hasKey   bool
	response string
	err      error
	calls    int
	requests []openai.ChatRequest
}

func (s *stubChat) HasAPIKey() bool { return s.hasKey }

func (s *stubChat) CompleteStructured(_ context.Context, req openai.ChatRequest) (string, error) {
	s.calls++
	s.requests = append(s.requests, req)
	return s.response, s.err
}

func segs(texts ...string) []subtitles.Segment {
	out := make([]subtitles.Segment, len(texts))
	for i, text := range texts {
		out[i] = subtitles.Segment{Start: float64(i * 2), End: float64(i*2 + 2), Text: text}
	}
	return out
}

func TestTranslateMapsLocalIndicesBack(t *testing.T) {
	client := &stubChat{
		hasKey:   true,
		response: `{"translations":[{"index":1,"translation":"Hello world"},{"index":2,"translation":"Goodbye"}]}`,
	}
	tr := New(client, nil, DefaultModelParams(), nil)
	input := segs("Hello world", "你好世界", "再见")

	out, err := tr.Translate(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Nil(t, out[0].Translation)
	require.NotNil(t, out[1].Translation)
	assert.Equal(t, "Hello world", *out[1].Translation)
	require.NotNil(t, out[2].Translation)
	assert.Equal(t, "Goodbye", *out[2].Translation)
	assert.Nil(t, input[1].Translation, "input must not be modified")

	require.Equal(t, 1, client.calls)
	req := client.requests[0]
	assert.Equal(t, "Translate these numbered Chinese texts to English:\n1. 你好世界\n2. 再见", req.UserPrompt)
	assert.NotContains(t, req.UserPrompt, "Hello world")
	assert.Contains(t, req.SystemPrompt, "numbered Chinese texts to English")
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.NotNil(t, req.Schema)
}

func TestTranslateSkipsCallWhenNothingToTranslate(t *testing.T) {
	client := &stubChat{}
	tr := New(client, nil, DefaultModelParams(), nil)

	out, err := tr.Translate(context.Background(), segs("Hello", "World"))
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Zero(t, client.calls)
}

func TestTranslateSkipsAlreadyTranslated(t *testing.T) {
	client := &stubChat{hasKey: true}
	input := segs("你好")
	input[0] = input[0].WithTranslation("Hi")
	out, err := New(client, nil, DefaultModelParams(), nil).Translate(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "Hi", *out[0].Translation)
	assert.Zero(t, client.calls)
}

func TestTranslateMissingIndexIsCoverageError(t *testing.T) {
	client := &stubChat{hasKey: true, response: `{"translations":[{"index":1,"translation":"Hello"}]}`}
	_, err := New(client, nil, DefaultModelParams(), nil).Translate(context.Background(), segs("你好", "再见"))
	require.Error(t, err)
	var coverage *CoverageError
	require.ErrorAs(t, err, &coverage)
	assert.Equal(t, []int{2}, coverage.Missing)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.True(t, IsCoverageError(err))
}

func TestTranslateRequiresAPIKey(t *testing.T) {
	client := &stubChat{}
	_, err := New(client, nil, DefaultModelParams(), nil).Translate(context.Background(), segs("你好"))
	require.Error(t, err)
	assert.True(t, services.IsFatal(err))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Zero(t, client.calls)
}

func TestTranslateSurfacesRemoteErrors(t *testing.T) {
	boom := errors.New("boom")
	client := &stubChat{hasKey: true, err: boom}
	_, err := New(client, nil, DefaultModelParams(), nil).Translate(context.Background(), segs("你好"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, client.calls)
}

func TestTranslateUsesCache(t *testing.T) {
	cache, err := contentcache.New(t.TempDir(), nil)
	require.NoError(t, err)
	client := &stubChat{hasKey: true, response: `{"translations":[{"index":1,"translation":"Hello"}]}`}
	tr := New(client, cache, DefaultModelParams(), nil)

	first, err := tr.Translate(context.Background(), segs("你好"))
	require.NoError(t, err)
	second, err := tr.Translate(context.Background(), segs("你好"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.calls)

	_, err = tr.Translate(context.Background(), segs("你好"), WithoutCache())
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)

	entries, err := cache.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "translation", entries[0].Type)
}

func TestTranslateCacheKeyChangesWithText(t *testing.T) {
	a, err := contentcache.ComputeKey(CacheParams{Model: "m", Segments: segs("你好")}.CacheKeyFields())
	require.NoError(t, err)
	b, err := contentcache.ComputeKey(CacheParams{Model: "m", Segments: segs("再见")}.CacheKeyFields())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	withTranslation := segs("你好")
	withTranslation[0] = withTranslation[0].WithTranslation("x")
	c, err := contentcache.ComputeKey(CacheParams{Model: "m", Segments: withTranslation}.CacheKeyFields())
	require.NoError(t, err)
	assert.Equal(t, a, c)
}

func TestCacheParamsEmitsExplicitSegmentFields(t *testing.T) {
	fields := CacheParams{Model: "m", Segments: segs("你好", "再见")}.CacheKeyFields()
	list, ok := fields["segments"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	first, ok := list[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "你好", first["text"])
	assert.NotContains(t, first, "translation")

	shifted := segs("你好", "再见")
	shifted[1].End += 0.5
	a, err := contentcache.ComputeKey(fields)
	require.NoError(t, err)
	b, err := contentcache.ComputeKey(CacheParams{Model: "m", Segments: shifted}.CacheKeyFields())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Chinese", LanguageName(language.MustParse("zh-Hans")))
	assert.Equal(t, "Japanese", LanguageName(language.Japanese))
	params := NewModelParams("", 0.3, language.Japanese, language.French)
	assert.Equal(t, DefaultModel, params.Model)
	assert.Contains(t, params.SystemPrompt, "numbered Japanese texts to French")
}
