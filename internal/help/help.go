// Package help serves the built-in help center articles.
package help

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Article is one question with its answer.
type Article struct {
	ID       string `yaml:"id" json:"id"`
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// Category groups related articles.
type Category struct {
	ID       string    `yaml:"id" json:"id"`
	Title    string    `yaml:"title" json:"title"`
	Articles []Article `yaml:"articles" json:"articles"`
}

// Catalog is the ordered list of help categories.
type Catalog []Category

// Default returns the embedded catalog.
func Default() (Catalog, error) {
	return Parse(catalogYAML)
}

// Parse decodes a YAML catalog and rejects unknown keys and blank ids.
func Parse(data []byte) (Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode help catalog: %w", err)
	}
	for _, cat := range c {
		if strings.TrimSpace(cat.ID) == "" {
			return nil, fmt.Errorf("help catalog: category %q has no id", cat.Title)
		}
		for _, a := range cat.Articles {
			if strings.TrimSpace(a.ID) == "" {
				return nil, fmt.Errorf("help catalog: article %q has no id", a.Question)
			}
		}
	}
	return c, nil
}

// Search keeps the categories with at least one article whose question or answer
// contains query, ignoring case. Each kept category lists only its matching articles.
// A blank query returns the whole catalog.
func (c Catalog) Search(query string) Catalog {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c
	}
	out := Catalog{}
	for _, cat := range c {
		var matches []Article
		for _, a := range cat.Articles {
			if strings.Contains(strings.ToLower(a.Question+" "+a.Answer), query) {
				matches = append(matches, a)
			}
		}
		if len(matches) > 0 {
			out = append(out, Category{ID: cat.ID, Title: cat.Title, Articles: matches})
		}
	}
	return out
}

// Article finds one article by id.
func (c Catalog) Article(id string) (Category, Article, bool) {
	for _, cat := range c {
		for _, a := range cat.Articles {
			if a.ID == id {
				return cat, a, true
			}
		}
	}
	return Category{}, Article{}, false
}
