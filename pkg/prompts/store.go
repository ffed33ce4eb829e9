// Package prompts stores instruction templates for common data tasks.
//
// A template is looked up by id and optionally extended with caller
// instructions. The "custom" template has no text of its own: it returns
// the caller's instructions verbatim.
package prompts

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Custom is the template that passes caller instructions through unchanged.
const Custom = "custom"

// Template is one instruction prompt.
type Template struct {
	Description string `yaml:"description"`
	Text        string `yaml:"text"`
}

var builtin = map[string]Template{
	"data_analysis": {
		Description: "Analyze and summarize datasets",
		Text: `You are a data analyst. Analyze the provided dataset and provide:
1. Key statistics and patterns
2. Notable trends or anomalies
3. Actionable insights
4. Data quality observations

Format your response in a clear, structured manner.`,
	},
	"data_cleaning": {
		Description: "Identify data quality issues",
		Text: `You are a data quality expert. Review the provided dataset and identify:
1. Missing or null values
2. Data type inconsistencies
3. Outliers or anomalies
4. Duplicate records
5. Formatting issues

Provide specific recommendations for cleaning each issue.`,
	},
	"data_transformation": {
		Description: "Transform data structure",
		Text: `You are a data engineer. Transform the provided data according to the requirements:
1. Apply the specified transformations
2. Ensure data integrity is maintained
3. Validate the output format
4. Provide transformation summary

Return the transformed data in the requested format.`,
	},
	"categorization": {
		Description: "Categorize items into groups",
		Text: `You are a classification expert. Categorize the provided items:
1. Analyze each item's characteristics
2. Assign appropriate categories
3. Provide confidence scores if applicable
4. Explain the categorization logic

Return results in a structured format with categories clearly labeled.`,
	},
	"sentiment_analysis": {
		Description: "Analyze text sentiment",
		Text: `You are a sentiment analysis expert. Analyze the provided text data:
1. Determine overall sentiment (positive/negative/neutral)
2. Identify key emotional indicators
3. Provide sentiment scores
4. Highlight significant phrases

Return results in a structured format with clear sentiment labels.`,
	},
	Custom: {
		Description: "Use custom instructions",
	},
}

// Store is a thread-safe template table.
type Store struct {
	mu        sync.RWMutex
	templates map[string]Template
	path      string
}

// NewStore returns a store with the built-in templates only.
func NewStore() *Store {
	return &Store{templates: maps.Clone(builtin)}
}

// NewStoreFromFile returns a store with the templates of path merged over
// the built-in ones. An empty path is the same as NewStore.
func NewStoreFromFile(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the template file, if any.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the template file. On error the current templates are
// kept.
func (s *Store) Reload() error {
	templates := maps.Clone(builtin)
	if s.path != "" {
		extra, err := LoadFile(s.path)
		if err != nil {
			return err
		}
		maps.Copy(templates, extra)
		slog.Debug("prompt templates loaded", "component", "prompts", "path", s.path, "count", len(extra))
	}

	s.mu.Lock()
	s.templates = templates
	s.mu.Unlock()
	return nil
}

type templateFile struct {
	Templates map[string]Template `yaml:"templates"`
}

// LoadFile reads templates from a YAML file of the form
//
//	templates:
//	  summarize:
//	    description: Summarize a dataset
//	    text: You are ...
func LoadFile(path string) (map[string]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt templates %q: %w", path, err)
	}

	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse prompt templates %q: %w", path, err)
	}

	for id, t := range f.Templates {
		if id == Custom {
			return nil, fmt.Errorf("prompt templates %q: %q is reserved", path, Custom)
		}
		if strings.TrimSpace(t.Text) == "" {
			return nil, fmt.Errorf("prompt templates %q: template %q has no text", path, id)
		}
	}
	return f.Templates, nil
}

// Get returns the instruction text for id. Custom returns extra verbatim.
// For other templates a non-empty extra is appended under an "Additional
// Instructions" heading. Unknown ids yield "".
func (s *Store) Get(id, extra string) string {
	if id == Custom {
		return extra
	}

	s.mu.RLock()
	t, ok := s.templates[id]
	s.mu.RUnlock()
	if !ok {
		return ""
	}

	if extra != "" {
		return t.Text + "\n\nAdditional Instructions:\n" + extra
	}
	return t.Text
}

// Has reports whether id names a template.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.templates[id]
	return ok
}

// List returns template ids mapped to their descriptions.
func (s *Store) List() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.templates))
	for id, t := range s.templates {
		out[id] = t.Description
	}
	return out
}
