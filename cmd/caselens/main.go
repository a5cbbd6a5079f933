package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/caselens/caselens/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		templatePath string
		outputDir    string
		outPrefix    string
		phase        int
		targetRows   int
		concurrency  int
		perQuery     int
		provider     string
		model        string
		apiKey       string
		llmBaseURL   string
		ollamaURL    string
		searchURL    string
		cacheDir     string
		cacheMaxAge  time.Duration
		cacheClear   bool
		enablePDF    bool
		verbose      bool
	)

	flag.StringVar(&templatePath, "template", "", "Path to YAML research template (empty uses the built-in template)")
	flag.StringVar(&outputDir, "out.dir", "out", "Directory for all output artifacts")
	flag.StringVar(&outPrefix, "out.prefix", "", "Prefix prepended to every output file name")
	flag.IntVar(&phase, "phase", 1, "Collection phase: 1 broad sweep, 2 focused deep-dive")
	flag.IntVar(&targetRows, "target.rows", 0, "Target record count; overrides the template when > 0")
	flag.IntVar(&concurrency, "concurrency", 0, "Fetch/extract worker count; overrides the template when > 0")
	flag.IntVar(&perQuery, "search.perQuery", 0, "Max results kept per query; overrides the template when > 0")
	flag.StringVar(&provider, "llm.provider", envOr("LLM_PROVIDER", "openai"), "LLM provider: openai, anthropic, or ollama")
	flag.StringVar(&model, "llm.model", os.Getenv("LLM_MODEL"), "Model name (empty uses the provider default)")
	flag.StringVar(&apiKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for the LLM provider")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "Override the provider endpoint (OpenAI-compatible gateways)")
	flag.StringVar(&ollamaURL, "ollama.url", os.Getenv("OLLAMA_URL"), "Local Ollama endpoint")
	flag.StringVar(&searchURL, "search.url", os.Getenv("SEARCH_URL"), "Override the search endpoint")
	flag.StringVar(&cacheDir, "cache.dir", "", "Page cache directory (empty disables caching)")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries (e.g. 24h); 0 disables expiry")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&enablePDF, "enable.pdf", false, "Also render the report as PDF")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		TemplatePath:  templatePath,
		OutputDir:     outputDir,
		OutPrefix:     outPrefix,
		Phase:         phase,
		TargetRows:    targetRows,
		Concurrency:   concurrency,
		PerQuery:      perQuery,
		Provider:      provider,
		Model:         model,
		APIKey:        apiKey,
		LLMBaseURL:    llmBaseURL,
		OllamaURL:     ollamaURL,
		SearchBaseURL: searchURL,
		CacheDir:      cacheDir,
		CacheMaxAge:   cacheMaxAge,
		CacheClear:    cacheClear,
		EnablePDF:     enablePDF,
		Verbose:       verbose,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("run failed")
		if errors.Is(err, app.ErrNoRecords) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
