// Package config holds all ieltsforge configuration. Config is loaded from
// a YAML file, then environment variables override selected fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all ieltsforge configuration.
type Config struct {
	// Workspace is the directory for run artifacts (exams, logs, run store).
	Workspace string `yaml:"workspace"`

	// LLM configures the text-generation provider.
	LLM LLMConfig `yaml:"llm"`

	// GEPA configures the optimization loop.
	GEPA GEPAConfig `yaml:"gepa"`

	// Retrieval configures source material fetching.
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level   string `yaml:"level"`   // debug, info, warn, error
	Console bool   `yaml:"console"` // mirror to stderr
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Workspace: ".",
		LLM:       DefaultLLM(),
		GEPA:      DefaultGEPA(),
		Retrieval: DefaultRetrieval(),
		Logging:   LoggingConfig{Level: "info", Console: true},
	}
}

// Load reads configuration from path. A missing file yields defaults; a
// malformed file is an error. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides secrets and endpoints from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("IELTSFORGE_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("IELTSFORGE_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("IELTSFORGE_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("IELTSFORGE_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("IELTSFORGE_WORKSPACE"); v != "" {
		c.Workspace = v
	}
}

// Validate checks cross-field invariants that would otherwise surface as
// confusing behavior deep inside the optimization loop.
func (c *Config) Validate() error {
	if err := c.GEPA.Validate(); err != nil {
		return err
	}
	switch c.LLM.Provider {
	case "openai", "gemini", "stub":
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

// RunDir returns the workspace subdirectory for run artifacts.
func (c *Config) RunDir() string {
	return filepath.Join(c.Workspace, ".ieltsforge")
}

// LogDir returns the directory for log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.RunDir(), "logs")
}
