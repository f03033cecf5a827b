package encoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"subburn/internal/logging"
	"subburn/internal/services"
)

const stderrTailLines = 20

// ProgressFunc receives the encoded position and the expected total, both in
// seconds. total is zero when unknown.
type ProgressFunc func(position, total float64)

// Encoder runs ffmpeg jobs.
type Encoder struct {
	binary string
	fonts  *FontResolver
	runner Runner
	logger *slog.Logger
}

// Option customises an Encoder.
type Option func(*Encoder)

// WithRunner replaces process execution.
func WithRunner(r Runner) Option {
	return func(e *Encoder) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithFontResolver replaces font discovery.
func WithFontResolver(f *FontResolver) Option {
	return func(e *Encoder) {
		if f != nil {
			e.fonts = f
		}
	}
}

// New returns an encoder that invokes binary, defaulting to "ffmpeg".
func New(binary string, logger *slog.Logger, opts ...Option) *Encoder {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	e := &Encoder{
		binary: binary,
		fonts:  NewFontResolver(),
		runner: commandExecutor{},
		logger: logging.NewComponentLogger(logger, "encoder"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode renders job to job.Output. progress may be nil.
func (e *Encoder) Encode(ctx context.Context, job Job, progress ProgressFunc) error {
	if err := job.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "encoding", "validate job", "", err)
	}
	job = job.withDefaults()
	logger := logging.WithContext(ctx, e.logger)

	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "encoding", "create output dir", filepath.Dir(job.Output), err)
	}
	lock := flock.New(job.Output + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "encoding", "acquire output lock", job.Output, err)
	}
	if !locked {
		return services.Wrap(services.ErrValidation, "encoding", "acquire output lock",
			fmt.Sprintf("another subburn process is writing %s", job.Output), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	workDir, err := os.MkdirTemp("", "subburn-encode-")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "encoding", "create work dir", "", err)
	}
	defer os.RemoveAll(workDir)

	font := e.fonts.Resolve(ctx, job.Options.FontName)
	args, err := BuildArgs(job, font, workDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "encoding", "build command", "", err)
	}

	logger.Info("encoding started",
		logging.String(logging.FieldEventType, "encode_start"),
		logging.String("output", job.Output),
		logging.String("background", job.Background().String()),
		logging.String("font", font),
		logging.Int("images", len(job.Images)),
	)
	logger.Debug("ffmpeg command", logging.String("command", e.binary+" "+strings.Join(args, " ")))

	started := time.Now()
	stderr := &tail{n: stderrTailLines}
	runErr := e.runner.Run(ctx, e.binary, args, func(line string) {
		stderr.add(line)
		if progress == nil {
			return
		}
		if position, ok := parseProgressTime(line); ok {
			progress(position, job.Duration)
		}
	})
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("encoding cancelled: %w", ctxErr)
		}
		detail := "ffmpeg error output not captured"
		if len(stderr.lines) > 0 {
			detail = strings.Join(stderr.lines, "\n")
		}
		return services.Wrap(services.ErrExternalTool, "encoding", "ffmpeg",
			fmt.Sprintf("ffmpeg failed (%v):\n\n%s", runErr, detail), nil)
	}
	if progress != nil && job.Duration > 0 {
		progress(job.Duration, job.Duration)
	}

	info, err := os.Stat(job.Output)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "encoding", "verify output", job.Output, err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "encoding", "verify output", "ffmpeg produced an empty file", errors.New(job.Output))
	}
	logger.Info("encoding complete",
		logging.String(logging.FieldEventType, "encode_complete"),
		logging.String("output", job.Output),
		logging.Int("bytes", int(info.Size())),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}
