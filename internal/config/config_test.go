package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GEPA.MinibatchSize != 8 {
		t.Errorf("MinibatchSize = %d, want default 8", cfg.GEPA.MinibatchSize)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  provider: gemini
  model: gemini-2.5-flash
gepa:
  minibatch_size: 4
  rollout_budget: 100
  max_candidates: 10
  min_pool_size: 2
  init_population: 5
  mutation_attempts: 2
  dominance_epsilon: 0.05
  exploration_probability: 0.2
  pareto_log_interval: 5
  pareto_set_size: 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.LLM.Provider)
	}
	if cfg.GEPA.MinibatchSize != 4 {
		t.Errorf("MinibatchSize = %d, want 4", cfg.GEPA.MinibatchSize)
	}
	if cfg.GEPA.DominanceEpsilon != 0.05 {
		t.Errorf("DominanceEpsilon = %v, want 0.05", cfg.GEPA.DominanceEpsilon)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IELTSFORGE_API_KEY", "sk-test")
	t.Setenv("IELTSFORGE_PROVIDER", "stub")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want env value", cfg.LLM.APIKey)
	}
	if cfg.LLM.Provider != "stub" {
		t.Errorf("Provider = %q, want stub", cfg.LLM.Provider)
	}
}

func TestGEPAValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GEPAConfig)
		ok     bool
	}{
		{"defaults", func(g *GEPAConfig) {}, true},
		{"zero minibatch", func(g *GEPAConfig) { g.MinibatchSize = 0 }, false},
		{"zero budget", func(g *GEPAConfig) { g.RolloutBudget = 0 }, false},
		{"pool below min", func(g *GEPAConfig) { g.MaxCandidates = 1 }, false},
		{"negative epsilon", func(g *GEPAConfig) { g.DominanceEpsilon = -0.1 }, false},
		{"probability above 1", func(g *GEPAConfig) { g.ExplorationProbability = 1.5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGEPA()
			tt.mutate(&g)
			err := g.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
