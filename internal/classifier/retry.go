package classifier

import (
	"context"
	"errors"
	"os"
)

// ShouldRetry reports whether a model load error is worth another attempt.
// Bad identifiers, missing files and client errors are permanent; network
// failures, rate limiting and server errors are not.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrInvalidModelID) ||
		errors.Is(err, ErrModelNotFound) ||
		errors.Is(err, ErrUnsupportedModel) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return true
}
