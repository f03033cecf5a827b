package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"subburn/internal/config"
	"subburn/internal/contentcache"
	"subburn/internal/logging"
	"subburn/internal/ratelimit"
	"subburn/internal/retry"
	"subburn/internal/services"
	"subburn/internal/services/openai"
	"subburn/internal/translation"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := config.LoadDotEnv(); err != nil {
			c.configErr = err
			return
		}
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		verbose := c.verbose != nil && *c.verbose
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, verbose)
	})
	return c.logger, c.loggerErr
}

// runContext tags ctx with a fresh run ID so every log line of one invocation
// can be correlated.
func runContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return services.WithRunID(ctx, uuid.NewString())
}

func (c *commandContext) openAIClient(cfg *config.Config) *openai.Client {
	return openai.NewClient(openai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	})
}

func (c *commandContext) cache(cfg *config.Config, logger *slog.Logger) (*contentcache.Cache, error) {
	cache, err := contentcache.New(cfg.Paths.CacheDir, logger)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return cache, nil
}

func (c *commandContext) translator(cfg *config.Config, client *openai.Client, cache *contentcache.Cache, logger *slog.Logger) (*translation.Translator, error) {
	source, err := language.Parse(cfg.Translation.SourceLanguage)
	if err != nil {
		return nil, fmt.Errorf("translation source language: %w", err)
	}
	target, err := language.Parse(cfg.Translation.TargetLanguage)
	if err != nil {
		return nil, fmt.Errorf("translation target language: %w", err)
	}
	params := translation.NewModelParams(cfg.Translation.Model, cfg.Translation.Temperature, source, target)
	return translation.New(client, cache, params, logger), nil
}

func imageLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Images.RequestsPerMinute, ratelimit.DefaultWindow)
}

func imagePolicy(cfg *config.Config, logger *slog.Logger) retry.Policy {
	policy := retry.DefaultPolicy()
	if cfg.Images.MaxRetries > 0 {
		policy.MaxAttempts = cfg.Images.MaxRetries
	}
	if cfg.Images.InitialRetryDelayMS > 0 {
		policy.InitialDelay = time.Duration(cfg.Images.InitialRetryDelayMS) * time.Millisecond
	}
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Debug("retrying image request",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
	}
	return policy
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
