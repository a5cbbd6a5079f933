package app

import (
	"errors"
	"fmt"
	"os"
	"sort"

	yaml "gopkg.in/yaml.v3"

	"github.com/caselens/caselens/internal/schema"
)

// Template is the research template: what to search for, how to structure
// records, how to prompt the model, and how to normalize and render the
// results. Loaded once at startup and immutable for the run.
type Template struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`

	Search struct {
		// Queries groups query strings by language label; all groups run.
		Queries map[string][]string `yaml:"queries"`
		// PriorityDomains rank results; earlier entries rank higher.
		PriorityDomains []string `yaml:"priority_domains"`
		// BlockedDomains drop results by substring match.
		BlockedDomains []string `yaml:"blocked_domains"`
		// PrimaryDomains mark hosts whose pages count as primary information.
		PrimaryDomains []string `yaml:"primary_domains"`
	} `yaml:"search"`

	Schema struct {
		// Fields is the record field list in rendering order. Empty means
		// the built-in default schema.
		Fields []string `yaml:"fields"`
	} `yaml:"schema"`

	Extraction struct {
		SystemPrompt string `yaml:"system_prompt"`
		UserPrompt   string `yaml:"user_prompt"`
	} `yaml:"extraction"`

	Normalization struct {
		Categories     []string          `yaml:"categories"`
		Synonyms       map[string]string `yaml:"synonyms"`
		Fallback       string            `yaml:"fallback"`
		DefaultProduct string            `yaml:"default_product"`
	} `yaml:"normalization"`

	Execution struct {
		TargetRows  int `yaml:"target_rows"`
		Concurrency int `yaml:"concurrency"`
		PerQuery    int `yaml:"per_query"`
	} `yaml:"execution"`

	Output struct {
		// FocusCategories select the phase-2 focus report subset.
		FocusCategories []string `yaml:"focus_categories"`
	} `yaml:"output"`
}

// LoadTemplate reads and validates a YAML research template. Missing
// optional sections fall back to built-in defaults; structural problems are
// fatal before any task begins.
func LoadTemplate(path string) (*Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	t := DefaultTemplate()
	if err := yaml.Unmarshal(b, t); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// DefaultTemplate is the built-in workflow-automation case-study template,
// used when no template file is given.
func DefaultTemplate() *Template {
	t := &Template{
		Name:        "workflow-cases",
		Version:     "1.0",
		Description: "Workflow automation case study collection",
	}
	t.Search.Queries = map[string][]string{
		"en": {
			"workflow automation case study",
			"business process automation success story",
			"no-code automation implementation example",
		},
	}
	t.applyDefaults()
	return t
}

func (t *Template) applyDefaults() {
	if len(t.Schema.Fields) == 0 {
		t.Schema.Fields = append([]string(nil), schema.Fields...)
	}
	if t.Normalization.Fallback == "" {
		t.Normalization.Fallback = "other"
	}
	if len(t.Normalization.Categories) == 0 {
		t.Normalization.Categories = []string{
			"real_estate", "hotel", "restaurant", "nightlife", "ecommerce_retail",
			"healthcare", "finance", "web_marketing", "it_software", "logistics",
			"manufacturing", "education", "recruiting", "insurance", "other",
		}
	}
	if len(t.Normalization.Synonyms) == 0 {
		t.Normalization.Synonyms = map[string]string{
			"real estate": "real_estate", "property": "real_estate",
			"hospitality": "hotel",
			"food":        "restaurant", "dining": "restaurant",
			"retail": "ecommerce_retail", "e-commerce": "ecommerce_retail", "ecommerce": "ecommerce_retail",
			"health": "healthcare", "medical": "healthcare",
			"financial": "finance", "banking": "finance", "fintech": "finance",
			"marketing": "web_marketing",
			"software":  "it_software", "saas": "it_software", "tech": "it_software",
			"shipping": "logistics", "supply chain": "logistics",
			"factory": "manufacturing",
			"school":  "education", "e-learning": "education",
			"hr": "recruiting", "staffing": "recruiting", "hiring": "recruiting",
		}
	}
	if t.Normalization.DefaultProduct == "" {
		t.Normalization.DefaultProduct = "workflow"
	}
	if t.Extraction.SystemPrompt == "" {
		t.Extraction.SystemPrompt = defaultSystemPrompt
	}
	if t.Extraction.UserPrompt == "" {
		t.Extraction.UserPrompt = defaultUserPrompt
	}
	if t.Execution.TargetRows <= 0 {
		t.Execution.TargetRows = 120
	}
	if t.Execution.Concurrency <= 0 {
		t.Execution.Concurrency = 6
	}
	if t.Execution.PerQuery <= 0 {
		t.Execution.PerQuery = 20
	}
}

// Validate rejects templates the pipeline cannot run with. These are
// contract errors: the run must abort at startup, not mid-batch.
func (t *Template) Validate() error {
	if t.Name == "" {
		return errors.New("template: name is required")
	}
	total := 0
	for _, qs := range t.Search.Queries {
		total += len(qs)
	}
	if total == 0 {
		return errors.New("template: at least one search query is required")
	}
	if len(t.Schema.Fields) == 0 {
		return errors.New("template: schema fields are required")
	}
	if t.Extraction.SystemPrompt == "" {
		return errors.New("template: extraction system_prompt is required")
	}
	if t.Extraction.UserPrompt == "" {
		return errors.New("template: extraction user_prompt is required")
	}
	return nil
}

// AllQueries flattens the per-language query groups in stable label order.
func (t *Template) AllQueries() []string {
	labels := make([]string, 0, len(t.Search.Queries))
	for label := range t.Search.Queries {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	out := make([]string, 0, total(t.Search.Queries))
	for _, label := range labels {
		out = append(out, t.Search.Queries[label]...)
	}
	return out
}

func total(m map[string][]string) int {
	n := 0
	for _, v := range m {
		n += len(v)
	}
	return n
}
