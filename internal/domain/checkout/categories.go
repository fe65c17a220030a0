package checkout

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultCategory = "others"

//go:embed categories.yaml
var defaultCategoriesYAML []byte

// Categories maps shop category names to processor category ids.
type Categories struct {
	Default    string            `yaml:"default"`
	Categories map[string]string `yaml:"categories"`
}

func DefaultCategories() *Categories {
	c, err := ParseCategories(defaultCategoriesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded categories.yaml: %v", err))
	}
	return c
}

// LoadCategories reads a table from path, or the embedded one when path is empty.
func LoadCategories(path string) (*Categories, error) {
	if path == "" {
		return DefaultCategories(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	return ParseCategories(data)
}

func ParseCategories(data []byte) (*Categories, error) {
	var raw Categories
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse categories: %w", err)
	}

	c := &Categories{Default: raw.Default, Categories: make(map[string]string, len(raw.Categories))}
	if c.Default == "" {
		c.Default = DefaultCategory
	}
	for name, id := range raw.Categories {
		c.Categories[normalizeName(name)] = id
	}
	return c, nil
}

func (c *Categories) Lookup(name string) string {
	if id, ok := c.Categories[normalizeName(name)]; ok && id != "" {
		return id
	}
	return c.Default
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
