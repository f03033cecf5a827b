package inputs

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// OpenCommand returns the platform command that opens path with the default
// application.
func OpenCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}

// Open launches the default application for path without waiting for it.
func Open(ctx context.Context, path string) error {
	name, args := OpenCommand(runtime.GOOS, path)
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
