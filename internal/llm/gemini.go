package llm

import (
	"context"
	"fmt"
	"strings"

	"ieltsforge/internal/logging"

	"google.golang.org/genai"
)

// GeminiClient implements Client using the Google GenAI SDK.
type GeminiClient struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float32
}

// GeminiOptions configures the Gemini client.
type GeminiOptions struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: float32(opts.Temperature),
	}, nil
}

// Complete sends a prompt and returns the completion.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system instruction.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	timer := logging.StartTimer(logging.CategoryLLM, "gemini.CompleteWithSystem")
	defer timer.Stop()

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(c.maxTokens)
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		logging.Get(logging.CategoryLLM).Errorw("generate content failed",
			"model", c.model, "error", err)
		return "", fmt.Errorf("gemini call failed (model=%s): %w", c.model, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty completion (model=%s)", c.model)
	}
	return strings.TrimSpace(text), nil
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string { return c.model }
