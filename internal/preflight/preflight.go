package preflight

import (
	"context"

	"subburn/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results do not fail the run.
	Optional bool
}

// Options selects which checks RunAll performs.
type Options struct {
	// Online enables the OpenAI reachability check.
	Online bool
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if cfg.Paths.ImageDir != "" {
		results = append(results, CheckDirectoryAccess("Image directory", cfg.Paths.ImageDir))
	}

	for _, status := range CheckSystemDeps(cfg) {
		result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
			if status.Version != "" {
				result.Detail += " (" + status.Version + ")"
			}
		}
		results = append(results, result)
	}

	results = append(results, CheckCredential(cfg))
	if opts.Online && cfg.HasAPIKey() {
		results = append(results, CheckOpenAI(ctx, cfg))
	}
	return results
}

// Failed returns the non-optional results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
