package provider

import (
	"context"
	"fmt"
	"os"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// New builds a client for the configured provider. When opts.Provider is
// empty, the environment is consulted (ANTHROPIC_API_KEY, then
// OPENAI_API_KEY, then GEMINI_API_KEY).
func New(ctx context.Context, opts Options) (Client, error) {
	if opts.Provider == "" || opts.APIKey == "" {
		detected, err := detectFromEnv(opts)
		if err != nil {
			return nil, err
		}
		opts = detected
	}

	switch opts.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(opts), nil
	case ProviderAnthropic:
		return NewAnthropicClient(opts), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: openai, anthropic, gemini)", opts.Provider)
	}
}

// detectFromEnv fills in the provider and key from environment variables
// when the options leave them blank.
func detectFromEnv(opts Options) (Options, error) {
	if opts.Provider != "" && opts.APIKey != "" {
		return opts, nil
	}

	candidates := []struct {
		envVar   string
		provider string
	}{
		{"ANTHROPIC_API_KEY", ProviderAnthropic},
		{"OPENAI_API_KEY", ProviderOpenAI},
		{"GEMINI_API_KEY", ProviderGemini},
	}

	for _, c := range candidates {
		if opts.Provider != "" && opts.Provider != c.provider {
			continue
		}
		if key := os.Getenv(c.envVar); key != "" {
			opts.Provider = c.provider
			opts.APIKey = key
			return opts, nil
		}
	}

	return opts, fmt.Errorf("%w: set an API key in the config file or one of ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY", ErrNotConfigured)
}
