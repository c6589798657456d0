package skills

import (
	"sort"
	"strings"
)

// Classifier detects catalog keywords in text by case-insensitive substring match.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	catalog    Catalog
	categories []Category
	policy     Policy
}

// New builds a Classifier. A policy set on the catalog is used when policy is empty.
func New(catalog Catalog, policy Policy) (*Classifier, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = catalog.Policy
	}
	resolved, err := ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}

	categories := make([]Category, len(catalog.Categories))
	for i, cat := range catalog.Categories {
		keywords := make([]string, len(cat.Keywords))
		for j, kw := range cat.Keywords {
			keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
		categories[i] = Category{Name: cat.Name, Keywords: keywords}
	}
	own := catalog.clone()
	own.Policy = resolved
	return &Classifier{catalog: own, categories: categories, policy: resolved}, nil
}

// Default returns a Classifier over DefaultCatalog with first-match policy.
func Default() *Classifier {
	c, err := New(DefaultCatalog(), FirstMatchPerCategory)
	if err != nil {
		panic(err)
	}
	return c
}

// Policy reports the active policy.
func (c *Classifier) Policy() Policy {
	return c.policy
}

// Catalog returns a copy of the catalog the classifier was built from.
func (c *Classifier) Catalog() Catalog {
	return c.catalog.clone()
}

// Detect returns the matched keywords, deduplicated and sorted. It never returns nil.
func (c *Classifier) Detect(text string) []string {
	lower := strings.ToLower(text)
	found := make(map[string]struct{})
	for _, cat := range c.categories {
		for _, kw := range cat.Keywords {
			if !strings.Contains(lower, kw) {
				continue
			}
			found[kw] = struct{}{}
			if c.policy == FirstMatchPerCategory {
				break
			}
		}
	}

	out := make([]string, 0, len(found))
	for kw := range found {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}
