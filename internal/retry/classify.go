package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"subburn/internal/services"
)

// StatusCoder is implemented by transport errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// IsRetriable reports whether err represents a transient condition that
// warrants an automatic retry (rate limits, timeouts, connection errors).
// Malformed responses are never retried.
func IsRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, services.ErrMalformed) || errors.Is(err, services.ErrValidation) {
		return false
	}
	if services.IsFatal(err) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, services.ErrTransient) {
		return true
	}
	var coder StatusCoder
	if errors.As(err, &coder) {
		return retriableStatus(coder.HTTPStatus())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	message := strings.ToLower(err.Error())
	if strings.Contains(message, "429") || strings.Contains(message, "rate limit") {
		return true
	}
	for _, token := range []string{
		"timeout",
		"deadline exceeded",
		"connection reset",
		"connection refused",
		"temporary failure",
		"awaiting headers",
	} {
		if strings.Contains(message, token) {
			return true
		}
	}
	return false
}

func retriableStatus(code int) bool {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return true
	case code >= 500 && code <= 599:
		return true
	default:
		return false
	}
}
