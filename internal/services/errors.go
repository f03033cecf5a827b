package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrTransient     = errors.New("transient failure")
	ErrMalformed     = errors.New("malformed response")
	ErrExternalTool  = errors.New("external tool error")
	ErrFatal         = errors.New("fatal error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err must abort the whole run rather than a single
// work item.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrFatal)
}

// CredentialError is returned when a required API credential is absent.
type CredentialError struct {
	Feature string
	EnvVar  string
}

func (e *CredentialError) Error() string {
	env := e.EnvVar
	if env == "" {
		env = "OPENAI_API_KEY"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s requires an OpenAI API key, but none was configured.\n", e.Feature)
	b.WriteString("To fix this:\n")
	fmt.Fprintf(&b, "  1. Create a key at https://platform.openai.com/api-keys\n")
	fmt.Fprintf(&b, "  2. Export it: export %s=sk-...\n", env)
	b.WriteString("     or add it to a .env file in the working directory\n")
	b.WriteString("     or set openai.api_key in ~/.config/subburn/config.toml")
	return b.String()
}

func (e *CredentialError) Unwrap() error { return ErrConfiguration }

// MissingCredential builds the fail-fast configuration error for feature.
func MissingCredential(feature string) error {
	return &CredentialError{Feature: strings.TrimSpace(feature), EnvVar: "OPENAI_API_KEY"}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
