// Package deps reports whether the external binaries subburn shells out to
// are installed, and which version was found.
package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// Requirement names one external binary.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionFlag, when set, is passed to the binary to read its version
	// from the first output line.
	VersionFlag string
}

// Status is the lookup result for a Requirement. Command holds the resolved
// path when the binary was found.
type Status struct {
	Requirement
	Available bool
	Version   string
	Detail    string
}

// CheckBinaries resolves every requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = check(req)
	}
	return results
}

func check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Command = resolved
	status.Available = true
	if req.VersionFlag != "" {
		status.Version = readVersion(resolved, req.VersionFlag)
	}
	return status
}

// readVersion returns the first non-empty output line, or "" when the binary
// fails or prints nothing.
func readVersion(binary, flag string) string {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, flag).Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}

// MissingRequired filters statuses down to unavailable, non-optional entries.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}
