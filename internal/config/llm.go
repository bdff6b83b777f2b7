package config

// LLMConfig configures the text-generation provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, gemini, stub
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"` // OpenAI-compatible endpoints only

	// JudgeModel is used for the IELTS style judge and reflective mutation.
	// Empty means reuse Model.
	JudgeModel string `yaml:"judge_model"`

	// MaxTokens caps completion length per call.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for generation calls. Judge calls always run at 0.
	Temperature float64 `yaml:"temperature"`

	// RequestsPerSecond throttles outbound calls; zero disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// TimeoutSeconds bounds a single API call.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// CacheEnabled turns on the in-memory response cache.
	CacheEnabled bool `yaml:"cache_enabled"`
}

// DefaultLLM returns provider defaults for an OpenAI-compatible endpoint.
func DefaultLLM() LLMConfig {
	return LLMConfig{
		Provider:          "openai",
		Model:             "gpt-4o-mini",
		MaxTokens:         10000,
		Temperature:       0.7,
		RequestsPerSecond: 2,
		TimeoutSeconds:    120,
		CacheEnabled:      true,
	}
}
