package skills

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy selects how many keywords a category may contribute.
type Policy string

const (
	// FirstMatchPerCategory records the first keyword, in declared order,
	// that appears in the text. Later keywords of the same category are ignored.
	FirstMatchPerCategory Policy = "first_match"
	// AllMatchesPerCategory records every keyword that appears.
	AllMatchesPerCategory Policy = "all_matches"
)

var ErrInvalidCatalog = errors.New("invalid skills catalog")

// ParsePolicy maps a config value to a Policy. Empty selects the default.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FirstMatchPerCategory:
		return FirstMatchPerCategory, nil
	case AllMatchesPerCategory:
		return AllMatchesPerCategory, nil
	default:
		return "", fmt.Errorf("%w: unknown policy %q", ErrInvalidCatalog, raw)
	}
}

// Category groups synonymous keywords under one name.
type Category struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Catalog is the ordered list of categories the classifier scans for.
type Catalog struct {
	Policy     Policy     `yaml:"policy,omitempty" json:"policy,omitempty"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// DefaultCatalog returns the built-in keyword groups.
func DefaultCatalog() Catalog {
	return Catalog{
		Policy: FirstMatchPerCategory,
		Categories: []Category{
			{Name: "python", Keywords: []string{"python", "django", "flask", "fastapi"}},
			{Name: "javascript", Keywords: []string{"javascript", "typescript", "node.js", "react"}},
			{Name: "sql", Keywords: []string{"sql", "mysql", "postgresql"}},
			{Name: "nosql", Keywords: []string{"mongodb"}},
			{Name: "containers", Keywords: []string{"docker", "kubernetes"}},
			{Name: "cloud", Keywords: []string{"aws", "azure"}},
		},
	}
}

// LoadCatalog reads a YAML catalog from path.
func LoadCatalog(path string) (Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read skills catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(raw []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return Catalog{}, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

// Validate rejects empty categories, blank keywords and unknown policies.
func (c Catalog) Validate() error {
	if c.Policy != "" {
		if _, err := ParsePolicy(string(c.Policy)); err != nil {
			return err
		}
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}
	seen := make(map[string]struct{}, len(c.Categories))
	for i, cat := range c.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return fmt.Errorf("%w: category %d has no name", ErrInvalidCatalog, i)
		}
		if _, dup := seen[strings.ToLower(name)]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, name)
		}
		seen[strings.ToLower(name)] = struct{}{}
		if len(cat.Keywords) == 0 {
			return fmt.Errorf("%w: category %q has no keywords", ErrInvalidCatalog, name)
		}
		for _, kw := range cat.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("%w: category %q has a blank keyword", ErrInvalidCatalog, name)
			}
		}
	}
	return nil
}

func (c Catalog) clone() Catalog {
	out := Catalog{Policy: c.Policy, Categories: make([]Category, len(c.Categories))}
	for i, cat := range c.Categories {
		out.Categories[i] = Category{Name: cat.Name, Keywords: append([]string(nil), cat.Keywords...)}
	}
	return out
}
