package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the capability interface every model backend implements: one
// prompt pair in, the raw model text out. The URL is passed along purely for
// observability. Backends are treated as unreliable; every failure surfaces
// as an error for the extraction adapter to absorb.
type Provider interface {
	Extract(ctx context.Context, systemPrompt, userPrompt, url string) (string, error)
	Name() string
}

// Options selects and configures a provider. Kind is one of "openai",
// "anthropic", or "ollama".
type Options struct {
	Kind    string
	Model   string
	APIKey  string
	BaseURL string
}

// New resolves the provider strategy once, at startup. An unknown kind is a
// configuration error and should abort the run before any task begins.
func New(opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "openai", "":
		return NewOpenAI(opts.APIKey, opts.BaseURL, opts.Model), nil
	case "anthropic", "claude":
		return NewAnthropic(opts.APIKey, opts.Model), nil
	case "ollama":
		return NewOllama(opts.BaseURL, opts.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", opts.Kind)
	}
}
