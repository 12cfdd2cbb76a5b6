// Package provider implements clients for the external text-generation
// services behind a single Client interface. Clients are plain HTTP (or SDK)
// wrappers: one request, one reply, no retries and no rate limiting. The
// caller owns sequencing and gives up on timeout.
package provider

import (
	"context"
	"time"
)

// Client is the interface the refinement pipeline calls into.
type Client interface {
	// Complete sends a system instruction and a user payload and returns
	// the raw reply text. The context carries the operation deadline.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options configures any provider client.
type Options struct {
	Provider  string // openai, anthropic, gemini
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

const (
	defaultMaxTokens = 4096
	defaultTimeout   = 45 * time.Second
)

func (o Options) maxTokens() int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return defaultMaxTokens
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}
