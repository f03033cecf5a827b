package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subburn/internal/retry"
	"subburn/internal/services"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{APIKey: "sk-test", BaseURL: server.URL + "/", TimeoutSeconds: 5})
}

func TestCompleteStructuredSendsSchemaAndReturnsContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "gpt-4o", payload["model"])
		format := payload["response_format"].(map[string]any)
		assert.Equal(t, "json_schema", format["type"])
		messages := payload["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`)
	})

	content, err := client.CompleteStructured(context.Background(), ChatRequest{
		Model:        "gpt-4o",
		SystemPrompt: "sys",
		UserPrompt:   "user",
		Schema:       &JSONSchema{Name: "out", Schema: map[string]any{"type": "object"}, Strict: true},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, content)
}

func TestCompleteStructuredEmptyContentIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"","refusal":"no"},"finish_reason":"stop"}]}`)
	})

	_, err := client.CompleteStructured(context.Background(), ChatRequest{Model: "m", UserPrompt: "u"})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrMalformed)
	assert.Contains(t, err.Error(), `refusal="no"`)
	assert.False(t, retry.IsRetriable(err))
}

func TestStatusErrorClassification(t *testing.T) {
	cases := []struct {
		status    int
		marker    error
		retriable bool
	}{
		{http.StatusTooManyRequests, services.ErrTransient, true},
		{http.StatusBadGateway, services.ErrTransient, true},
		{http.StatusRequestTimeout, services.ErrTransient, true},
		{http.StatusUnauthorized, services.ErrConfiguration, false},
		{http.StatusBadRequest, services.ErrValidation, false},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, `{"error":{"message":"boom"}}`)
			})
			_, err := client.CompleteStructured(context.Background(), ChatRequest{Model: "m", UserPrompt: "u"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.marker)
			assert.Equal(t, tc.retriable, retry.IsRetriable(err))
			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, 2*time.Second, statusErr.RetryAfter)
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestMissingAPIKeyIsConfigurationError(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, services.IsFatal(err))
}

func TestGenerateImageAndDownload(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/generations":
			var req ImageRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 1, req.N)
			assert.Equal(t, "1024x1024", req.Size)
			_, _ = io.WriteString(w, `{"data":[{"url":"`+server.URL+`/img.png","revised_prompt":"rp"}]}`)
		case "/img.png":
			_, _ = w.Write([]byte("PNGDATA"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})

	result, err := client.GenerateImage(context.Background(), ImageRequest{Model: "dall-e-3", Prompt: "cat", Size: "1024x1024"})
	require.NoError(t, err)
	assert.Equal(t, "rp", result.RevisedPrompt)

	data, err := client.ImageBytes(context.Background(), result)
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGDATA"), data)
}

func TestGenerateImageWithoutURLIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{}]}`)
	})
	_, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "p"})
	assert.ErrorIs(t, err, services.ErrMalformed)
}

func TestImageBytesDecodesInlineData(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	data, err := client.ImageBytes(context.Background(), ImageResult{B64JSON: base64.StdEncoding.EncodeToString([]byte("x"))})
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestDownloadFailureIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	_, err := client.Download(context.Background(), client.cfg.BaseURL+"/missing.png")
	assert.ErrorIs(t, err, services.ErrMalformed)
}

func TestTranscribeUploadsMultipart(t *testing.T) {
	audio := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("ID3"), 0o644))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "zh", r.FormValue("language"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "clip.mp3", header.Filename)
		_, _ = io.WriteString(w, `{"text":"你好","language":"chinese","segments":[{"id":0,"start":0,"end":1.5,"text":" 你好"}]}`)
	})

	result, err := client.Transcribe(context.Background(), TranscriptionRequest{Model: "whisper-1", FilePath: audio, Language: "zh"})
	require.NoError(t, err)
	require.Len(t, result.Segments, 1)
	assert.InDelta(t, 1.5, result.Segments[0].End, 1e-9)
}

func TestCancelledContextIsNotTransient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.CompleteStructured(ctx, ChatRequest{Model: "m", UserPrompt: "u"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, services.ErrTransient))
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, DecodeJSON("```json\n{\"value\": 3}\n```", &out))
	assert.Equal(t, 3, out.Value)

	require.NoError(t, DecodeJSON("Sure! {\"value\": 4} hope that helps", &out))
	assert.Equal(t, 4, out.Value)

	err := DecodeJSON("not json", &out)
	assert.ErrorIs(t, err, services.ErrMalformed)
	assert.ErrorIs(t, DecodeJSON("  ", &out), services.ErrMalformed)
}

func TestParseRetryAfter(t *testing.T) {
	d, ok := parseRetryAfter("5")
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)
	_, ok = parseRetryAfter("-1")
	assert.False(t, ok)
	_, ok = parseRetryAfter("")
	assert.False(t, ok)
}

func TestHealthCheck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"data":[]}`)
	})
	require.NoError(t, client.HealthCheck(context.Background()))
}
