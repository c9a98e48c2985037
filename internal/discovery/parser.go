package discovery

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"warmtest/internal/domain"
)

// Parser parses suite and helper source files
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and parses the source file at path
func (p *Parser) ParseFile(path string) (*domain.SourceFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	return p.Parse(path, content)
}

// Parse parses source file content; name is used in error messages
func (p *Parser) Parse(name string, content []byte) (*domain.SourceFile, error) {
	var src domain.SourceFile
	if err := yaml.Unmarshal(content, &src); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", name, err)
	}

	for i, c := range src.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("%s: category %d has no name", name, i+1)
		}
	}
	for i, s := range src.Suites {
		if s.Name == "" {
			return nil, fmt.Errorf("%s: suite %d has no name", name, i+1)
		}
		seen := make(map[string]bool)
		for j, c := range s.Tests {
			if c.Name == "" {
				return nil, fmt.Errorf("%s: %s: test %d has no name", name, s.Name, j+1)
			}
			if c.Run == "" {
				return nil, fmt.Errorf("%s: %s: %s has nothing to run", name, s.Name, c.Name)
			}
			if seen[c.Name] {
				return nil, fmt.Errorf("%s: %s: duplicate test %s", name, s.Name, c.Name)
			}
			seen[c.Name] = true
		}
	}
	return &src, nil
}
