package llm

import (
	"context"
	"fmt"
	"time"

	"ieltsforge/internal/config"
)

// NewFromConfig builds the provider named by cfg and wraps it with a
// response cache when caching is enabled.
func NewFromConfig(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	var (
		client Client
		err    error
	)

	switch cfg.Provider {
	case "openai", "":
		client, err = NewOpenAIClient(OpenAIOptions{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			MaxTokens:         cfg.MaxTokens,
			Temperature:       cfg.Temperature,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
	case "gemini":
		client, err = NewGeminiClient(ctx, GeminiOptions{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
	case "stub":
		client = NewStubClient()
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want openai, gemini, or stub)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		client = NewCachedClient(client, NewCache())
	}
	return client, nil
}
