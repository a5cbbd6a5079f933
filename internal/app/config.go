package app

import (
	"fmt"
	"strings"
	"time"
)

// Config carries all runtime settings resolved from flags and
// environment variables before the run starts.
type Config struct {
	// TemplatePath points at a YAML collection template. Empty means
	// the built-in default template.
	TemplatePath string

	// OutputDir is the directory all artifacts are written under.
	OutputDir string
	// OutPrefix is prepended to every output file name.
	OutPrefix string

	// Phase selects the collection phase: 1 is the broad sweep, 2 is
	// the focused deep-dive over Output.FocusCategories.
	Phase int

	// TargetRows overrides the template's target row count when > 0.
	TargetRows int
	// Concurrency overrides the template's fetch/extract worker count
	// when > 0.
	Concurrency int
	// PerQuery overrides the template's per-query result cap when > 0.
	PerQuery int

	// Provider selects the LLM backend: openai, anthropic, or ollama.
	Provider string
	// Model overrides the provider's default model when set.
	Model string
	// APIKey authenticates against the provider.
	APIKey string
	// LLMBaseURL overrides the provider endpoint (OpenAI-compatible
	// gateways, Anthropic proxies).
	LLMBaseURL string
	// OllamaURL overrides the local Ollama endpoint.
	OllamaURL string

	// SearchBaseURL overrides the search endpoint, mainly for tests.
	SearchBaseURL string

	// CacheDir enables the on-disk page cache when set.
	CacheDir string
	// CacheMaxAge bounds cache entry staleness. Zero means no limit.
	CacheMaxAge time.Duration
	// CacheClear empties the cache before the run.
	CacheClear bool

	// EnablePDF also renders the report as a landscape PDF.
	EnablePDF bool

	// Verbose enables debug-level logging.
	Verbose bool
}

// Validate rejects configurations that cannot produce a run.
func (c *Config) Validate() error {
	if c.Phase != 1 && c.Phase != 2 {
		return fmt.Errorf("phase must be 1 or 2, got %d", c.Phase)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.TargetRows < 0 {
		return fmt.Errorf("target rows must not be negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if c.PerQuery < 0 {
		return fmt.Errorf("per-query cap must not be negative")
	}
	switch strings.ToLower(c.Provider) {
	case "", "openai", "anthropic", "claude", "ollama":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if strings.ToLower(c.Provider) != "ollama" && c.APIKey == "" {
		return fmt.Errorf("an API key is required for non-local providers")
	}
	return nil
}
