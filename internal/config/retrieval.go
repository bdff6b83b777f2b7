package config

// RetrievalConfig configures source material fetching for passage grounding.
type RetrievalConfig struct {
	// Enabled turns on retrieval; when off, passages are generated unsourced.
	Enabled bool `yaml:"enabled"`

	// MaxSources caps how many references feed the passage prompt.
	MaxSources int `yaml:"max_sources"`

	// UseAcademicAPIs adds Semantic Scholar, OpenAlex and Crossref lookups
	// alongside LLM-suggested references.
	UseAcademicAPIs bool `yaml:"use_academic_apis"`

	// TimeoutSeconds bounds a single HTTP fetch.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// DefaultRetrieval returns retrieval defaults.
func DefaultRetrieval() RetrievalConfig {
	return RetrievalConfig{
		Enabled:         true,
		MaxSources:      5,
		UseAcademicAPIs: true,
		TimeoutSeconds:  10,
	}
}
