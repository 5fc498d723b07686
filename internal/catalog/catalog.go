// Package catalog provides the read-only library of example Σ-IR inputs and
// outputs used for browsing. Outputs are illustrative display data; the
// translator does not consult them.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// ErrTemplateNotFound is returned by ByID for unknown ids.
var ErrTemplateNotFound = errors.New("template not found")

// Template is one catalog entry.
type Template struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
	Input       string `yaml:"input" json:"input"`
	Output      string `yaml:"output" json:"output"`
	UseCase     string `yaml:"use_case" json:"use_case"`
}

// Catalog is an ordered, immutable set of templates.
type Catalog struct {
	categories []string
	templates  []Template
}

type catalogFile struct {
	Categories []string   `yaml:"categories"`
	Templates  []Template `yaml:"templates"`
}

// Parse decodes a catalog document. Every template must name a declared
// category and ids must be unique.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	known := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		known[c] = true
	}
	ids := make(map[string]bool, len(f.Templates))
	for _, t := range f.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has no id", t.Name)
		}
		if ids[t.ID] {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		ids[t.ID] = true
		if !known[t.Category] {
			return nil, fmt.Errorf("template %q has unknown category %q", t.ID, t.Category)
		}
	}

	return &Catalog{categories: f.Categories, templates: f.Templates}, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(templatesYAML)
	})
	return defaultCatalog, defaultErr
}

// Categories returns the category names in display order.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// All returns every template in catalog order.
func (c *Catalog) All() []Template {
	return append([]Template(nil), c.templates...)
}

// ByCategory returns the templates in category, in catalog order.
func (c *Catalog) ByCategory(category string) []Template {
	var out []Template
	for _, t := range c.templates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// ByID returns the template with id.
func (c *Catalog) ByID(id string) (Template, error) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

// Search returns templates whose name, description, input, output or use
// case contains query, ignoring case.
func (c *Catalog) Search(query string) []Template {
	q := strings.ToLower(query)
	var out []Template
	for _, t := range c.templates {
		for _, field := range []string{t.Name, t.Description, t.Input, t.Output, t.UseCase} {
			if strings.Contains(strings.ToLower(field), q) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Markdown renders t as a short Markdown card.
func (t Template) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n", t.Name)
	fmt.Fprintf(&sb, "*%s* · `%s`\n\n", t.Category, t.ID)
	fmt.Fprintf(&sb, "%s\n\n", t.Description)
	fmt.Fprintf(&sb, "**Input**\n\n> %s\n\n", t.Input)
	fmt.Fprintf(&sb, "**Output**\n\n```\n%s\n```\n\n", t.Output)
	fmt.Fprintf(&sb, "**Use case:** %s\n", t.UseCase)
	return sb.String()
}
