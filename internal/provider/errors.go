package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors for the failure taxonomy. Callers branch with errors.Is.
var (
	// ErrNotConfigured means no provider/API key is available; surfaced
	// immediately, never retried.
	ErrNotConfigured = errors.New("generation service not configured")

	// ErrTimeout means the external call exceeded its deadline; the
	// operation is abandoned, never retried automatically.
	ErrTimeout = errors.New("generation request timed out")

	// ErrEmptyResponse means the service replied with blank text.
	ErrEmptyResponse = errors.New("generation service returned an empty response")
)

// UpstreamError reports a non-success status from the generation service.
// Message is sanitized before construction; it never carries credentials.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
}

// Sanitize removes occurrences of the API key (and its common fragments)
// from a message before it is surfaced to users or logs.
func Sanitize(message, apiKey string) string {
	if apiKey == "" {
		return message
	}
	message = strings.ReplaceAll(message, apiKey, "***")
	// Keys sometimes appear truncated in upstream error bodies.
	if len(apiKey) > 8 {
		message = strings.ReplaceAll(message, apiKey[:8], "***")
	}
	return message
}

// mapTransportError classifies a transport-level failure.
func mapTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("request failed: %w", err)
}
