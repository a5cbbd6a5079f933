package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/caselens/caselens/internal/fetch"
	"github.com/caselens/caselens/internal/llm"
	"github.com/caselens/caselens/internal/schema"
)

// Adapter turns fetched content into a structured record by way of the model
// provider. Provider failures and malformed responses surface as errors; the
// orchestrator treats any error as a per-item failure, never a run abort.
type Adapter struct {
	Provider llm.Provider
	// SystemPrompt and UserTemplate come from the research template. The
	// user template is interpolated per page.
	SystemPrompt string
	UserTemplate string
	// Required lists the fields a parsed record must contain.
	Required []string
	// MaxAttempts is the local retry budget for transient model/parse
	// failures, independent of the HTTP retry executor. Default 2.
	MaxAttempts int
	// RetryDelay is the fixed pause between local attempts. Default 2s.
	RetryDelay time.Duration
}

// Extract invokes the model and parses its response into a record. The hint
// is the pre-extraction classification (schema.InfoPrimary or
// schema.InfoSecondary) derived from domain authority; the record's info
// type is forced to estimated when any field carries the estimated marker.
func (a *Adapter) Extract(ctx context.Context, c *fetch.Content, hint string) (schema.Record, error) {
	user := a.buildUserPrompt(c, hint)

	attempts := a.MaxAttempts
	if attempts <= 0 {
		attempts = 2
	}
	delay := a.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		raw, err := a.Provider.Extract(ctx, a.SystemPrompt, user, c.URL)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Str("url", c.URL).Int("attempt", attempt+1).Msg("model call failed")
			continue
		}
		rec, err := DecodeRecord(raw)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Str("url", c.URL).Int("attempt", attempt+1).Msg("model response unusable")
			continue
		}
		if err := a.validate(rec); err != nil {
			lastErr = err
			log.Warn().Err(err).Str("url", c.URL).Int("attempt", attempt+1).Msg("record incomplete")
			continue
		}
		applyEstimatedOverride(rec, hint)
		return rec, nil
	}
	return nil, fmt.Errorf("extraction failed after %d attempts: %w", attempts, lastErr)
}

func (a *Adapter) validate(rec schema.Record) error {
	for _, f := range a.Required {
		if _, ok := rec[f]; !ok {
			return fmt.Errorf("missing required field: %s", f)
		}
	}
	return nil
}

// applyEstimatedOverride sets the info type: the hint by default, forced to
// estimated when any free-text field starts with the estimated marker. The
// marker conflates data-quality signaling with categorical truth, but the
// downstream reports rely on it, so it is kept as a best-effort heuristic.
func applyEstimatedOverride(rec schema.Record, hint string) {
	rec[schema.FieldInfoType] = hint
	for field, v := range rec {
		if field == schema.FieldInfoType || field == schema.FieldSourceURL {
			continue
		}
		trimmed := strings.TrimSpace(v)
		for _, marker := range schema.EstimatedMarkers {
			if strings.HasPrefix(trimmed, marker) {
				rec[schema.FieldInfoType] = schema.InfoEstimated
				return
			}
		}
	}
}

func (a *Adapter) buildUserPrompt(c *fetch.Content, hint string) string {
	vars := map[string]string{
		"url":             c.URL,
		"info_type":       hint,
		"published_date":  orUnknown(c.PublishedDate),
		"updated_date":    orUnknown(c.UpdatedDate),
		"detected_lang":   orUnknown(c.Language),
		"detected_region": orUnknown(c.Region),
		"content":         c.Body,
	}
	return strings.TrimSpace(Interpolate(a.UserTemplate, vars))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}
