package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"subburn/internal/config"
	"subburn/internal/deps"
	"subburn/internal/services/openai"
)

// CheckOpenAI verifies that the API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt.
func CheckOpenAI(ctx context.Context, cfg *config.Config) Result {
	const name = "OpenAI API"
	if !cfg.HasAPIKey() {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := openai.NewClient(openai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	})
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckCredential reports whether an API key is configured. Features that
// need it fail fast on their own; this is informational for doctor output.
func CheckCredential(cfg *config.Config) Result {
	const name = "OpenAI API key"
	if cfg.HasAPIKey() {
		return Result{Name: name, Passed: true, Detail: "configured"}
	}
	return Result{
		Name:     name,
		Optional: true,
		Detail:   "not set (transcription, translation, and images unavailable)",
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the media binaries for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.MediaRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}

func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
