package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"subburn/internal/services"
)

// TranscriptionRequest describes an audio upload.
type TranscriptionRequest struct {
	Model    string
	FilePath string
	Language string
}

// TranscriptionSegment is one timed span of recognised speech.
type TranscriptionSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the verbose_json transcription payload.
type Transcription struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language"`
	Duration float64                `json:"duration"`
	Segments []TranscriptionSegment `json:"segments"`
}

// Transcribe uploads the audio file and returns timed segments.
func (c *Client) Transcribe(ctx context.Context, req TranscriptionRequest) (Transcription, error) {
	const op = "audio transcription"
	if err := c.requireKey(op); err != nil {
		return Transcription{}, err
	}
	file, err := os.Open(req.FilePath)
	if err != nil {
		return Transcription{}, services.Wrap(services.ErrValidation, "openai", op, "open audio", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"model":           req.Model,
		"response_format": "verbose_json",
	}
	if lang := strings.TrimSpace(req.Language); lang != "" {
		fields["language"] = lang
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return Transcription{}, fmt.Errorf("%s: write field %s: %w", op, key, err)
		}
	}
	if err := writer.WriteField("timestamp_granularities[]", "segment"); err != nil {
		return Transcription{}, fmt.Errorf("%s: write field: %w", op, err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return Transcription{}, fmt.Errorf("%s: create form file: %w", op, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return Transcription{}, fmt.Errorf("%s: copy audio: %w", op, err)
	}
	if err := writer.Close(); err != nil {
		return Transcription{}, fmt.Errorf("%s: close multipart: %w", op, err)
	}

	endpoint, err := c.endpoint("audio/transcriptions")
	if err != nil {
		return Transcription{}, fmt.Errorf("%s: %w", op, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return Transcription{}, fmt.Errorf("%s: new request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	var result Transcription
	if _, err := c.do(httpReq, op, &result); err != nil {
		return Transcription{}, err
	}
	return result, nil
}
