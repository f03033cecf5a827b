package imagegen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"subburn/internal/logging"
	"subburn/internal/ratelimit"
	"subburn/internal/retry"
	"subburn/internal/services"
	"subburn/internal/services/openai"
	"subburn/internal/subtitles"
)

const (
	DefaultWorkers = 4
	DefaultModel   = "dall-e-3"
	DefaultSize    = "1024x1024"
	DefaultQuality = "standard"
	DefaultStyle   = "A minimalist, elegant scene"
)

// ImageClient is the remote surface the generator needs.
type ImageClient interface {
	HasAPIKey() bool
	GenerateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResult, error)
	ImageBytes(ctx context.Context, result openai.ImageResult) ([]byte, error)
}

// Progress receives one Advance call per finished segment.
type Progress interface {
	Advance(n int)
}

type nopProgress struct{}

func (nopProgress) Advance(int) {}

// Settings controls the image request and worker pool.
type Settings struct {
	Model   string
	Size    string
	Quality string
	Workers int
	// TempRoot is the parent of the per-run output directory. Empty means os.TempDir().
	TempRoot string
}

// Generator renders images for segments.
type Generator struct {
	client   ImageClient
	limiter  *ratelimit.Limiter
	policy   retry.Policy
	settings Settings
	logger   *slog.Logger
	progress Progress
}

// Option customises a Generator.
type Option func(*Generator)

// WithProgress reports per-segment completion to p.
func WithProgress(p Progress) Option {
	return func(g *Generator) {
		if p != nil {
			g.progress = p
		}
	}
}

// WithPolicy overrides the retry policy.
func WithPolicy(p retry.Policy) Option {
	return func(g *Generator) { g.policy = p }
}

// New constructs a generator. A nil limiter gets the default 7/minute quota.
func New(client ImageClient, limiter *ratelimit.Limiter, settings Settings, logger *slog.Logger, opts ...Option) *Generator {
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.DefaultImagesPerMinute, ratelimit.DefaultWindow)
	}
	if settings.Workers <= 0 {
		settings.Workers = DefaultWorkers
	}
	if settings.Model == "" {
		settings.Model = DefaultModel
	}
	if settings.Size == "" {
		settings.Size = DefaultSize
	}
	if settings.Quality == "" {
		settings.Quality = DefaultQuality
	}
	g := &Generator{
		client:   client,
		limiter:  limiter,
		policy:   retry.DefaultPolicy(),
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "images"),
		progress: nopProgress{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type outcomeKind int

const (
	kindSuccess outcomeKind = iota
	kindSoft
	kindFatal
)

type taskResult struct {
	kind  outcomeKind
	start float64
	path  string
	err   error
}

// Result is the outcome of a Generate call.
type Result struct {
	Dir    string
	Images map[float64]string
	Failed int
}

// Generate produces an image per segment and returns a map from segment start
// to image path. Segments whose image could not be produced are absent from
// the map. A missing credential fails before any directory is created.
func (g *Generator) Generate(ctx context.Context, segments []subtitles.Segment, style string) (Result, error) {
	if g.client == nil || !g.client.HasAPIKey() {
		return Result{}, services.MissingCredential("Image generation")
	}
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}

	root := g.settings.TempRoot
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "subburn-images-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "images", "create output dir", dir, err)
	}

	logger := logging.WithContext(ctx, g.logger)
	logger.Info("image generation started",
		logging.String(logging.FieldEventType, "images_start"),
		logging.Int("segments", len(segments)),
		logging.Int("workers", g.settings.Workers),
		logging.String("dir", dir),
	)
	started := time.Now()

	var (
		mu     sync.Mutex
		images = make(map[float64]string, len(segments))
		failed int
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.settings.Workers)
	for i, seg := range segments {
		group.Go(func() error {
			res := g.runTask(groupCtx, logger, i, seg, style, dir)
			switch res.kind {
			case kindFatal:
				return res.err
			case kindSuccess:
				mu.Lock()
				images[res.start] = res.path
				mu.Unlock()
			case kindSoft:
				mu.Lock()
				failed++
				mu.Unlock()
			}
			g.progress.Advance(1)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{Dir: dir}, err
	}

	logger.Info("image generation complete",
		logging.String(logging.FieldEventType, "images_complete"),
		logging.Int("generated", len(images)),
		logging.Int("failed", failed),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{Dir: dir, Images: images, Failed: failed}, nil
}

func (g *Generator) runTask(ctx context.Context, logger *slog.Logger, index int, seg subtitles.Segment, style, dir string) taskResult {
	logger = logger.With(logging.Segment(index))
	if err := g.limiter.Wait(ctx); err != nil {
		return taskResult{kind: kindFatal, start: seg.Start, err: err}
	}
	logger.Debug("image slot acquired", logging.Int("window_admissions", g.limiter.InFlight()))

	policy := g.policy
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Debug("image request retry",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
	}
	prompt := fmt.Sprintf("%s - %s", seg.Text, style)
	res := retry.Do(ctx, policy, func(ctx context.Context) ([]byte, error) {
		image, err := g.client.GenerateImage(ctx, openai.ImageRequest{
			Model:   g.settings.Model,
			Prompt:  prompt,
			Size:    g.settings.Size,
			Quality: g.settings.Quality,
			N:       1,
		})
		if err != nil {
			return nil, err
		}
		return g.client.ImageBytes(ctx, image)
	})

	switch res.Outcome {
	case retry.Fatal:
		return taskResult{kind: kindFatal, start: seg.Start, err: res.Err}
	case retry.SoftFailure:
		logging.WarnWithContext(logger, "image generation failed", "image_failed",
			logging.Error(res.Err),
			logging.Int("attempts", res.Attempts),
			logging.String(logging.FieldImpact, "segment will have no background image"),
			logging.String(logging.FieldErrorHint, "rerun later or check the OpenAI status page"),
		)
		return taskResult{kind: kindSoft, start: seg.Start, err: res.Err}
	}

	path := filepath.Join(dir, fmt.Sprintf("image_%04d.png", index))
	if err := os.WriteFile(path, res.Value, 0o644); err != nil {
		logging.WarnWithContext(logger, "image write failed", "image_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "segment will have no background image"),
		)
		return taskResult{kind: kindSoft, start: seg.Start, err: err}
	}
	logger.Debug("image stored", logging.String("path", path), logging.Int("attempts", res.Attempts))
	return taskResult{kind: kindSuccess, start: seg.Start, path: path}
}
