// Package transcription turns an audio file into timed subtitle segments via
// the speech-to-text API.
package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"subburn/internal/logging"
	"subburn/internal/services"
	"subburn/internal/services/openai"
	"subburn/internal/subtitles"
)

const DefaultModel = "whisper-1"

// Client is the remote surface the service needs.
type Client interface {
	HasAPIKey() bool
	Transcribe(ctx context.Context, req openai.TranscriptionRequest) (openai.Transcription, error)
}

// Service transcribes audio files.
type Service struct {
	client   Client
	model    string
	language string
	logger   *slog.Logger
}

// New constructs a transcription service. language may be empty to let the
// model detect it.
func New(client Client, model, language string, logger *slog.Logger) *Service {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Service{
		client:   client,
		model:    model,
		language: strings.TrimSpace(language),
		logger:   logging.NewComponentLogger(logger, "transcription"),
	}
}

// Transcribe uploads audioPath and returns its segments in order. Segments
// with no text after trimming are dropped.
func (s *Service) Transcribe(ctx context.Context, audioPath string) ([]subtitles.Segment, error) {
	if s.client == nil || !s.client.HasAPIKey() {
		return nil, services.MissingCredential("Transcription")
	}
	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcription", "stat audio", audioPath, err)
	}

	logger := logging.WithContext(ctx, s.logger)
	logger.Info("transcription started",
		logging.String(logging.FieldEventType, "transcription_start"),
		logging.String("audio", audioPath),
		logging.Int("bytes", int(info.Size())),
		logging.String("model", s.model),
	)
	started := time.Now()

	result, err := s.client.Transcribe(ctx, openai.TranscriptionRequest{
		Model:    s.model,
		FilePath: audioPath,
		Language: s.language,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", audioPath, err)
	}

	segments := make([]subtitles.Segment, 0, len(result.Segments))
	for _, seg := range result.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		end := seg.End
		if end < seg.Start {
			end = seg.Start
		}
		segments = append(segments, subtitles.Segment{Start: seg.Start, End: end, Text: text})
	}

	logger.Info("transcription complete",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.Int("segments", len(segments)),
		logging.String("language", result.Language),
		logging.Duration("elapsed", time.Since(started)),
	)
	return segments, nil
}
