package knowledge

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

//go:embed knowledge.yaml
var embeddedDocument []byte

// Default decodes the knowledge base baked into the binary
func Default() (*domain.KnowledgeBase, error) {
	kb, err := Parse(embeddedDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded knowledge base: %w", err)
	}
	return kb, nil
}

// Load reads the knowledge base from path, or the embedded document when path is empty
func Load(path string) (*domain.KnowledgeBase, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base %s: %w", path, err)
	}

	kb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base %s: %w", path, err)
	}
	return kb, nil
}

// Parse decodes a YAML document; unknown signs and bodies are rejected
func Parse(data []byte) (*domain.KnowledgeBase, error) {
	var kb domain.KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, err
	}

	for sign := range kb.Labels.Signs {
		if domain.SignIndex(sign) < 0 {
			return nil, fmt.Errorf("unknown sign %q in labels", sign)
		}
	}
	for slug := range kb.Bodies {
		if !isTracked(slug) {
			return nil, fmt.Errorf("unknown body %q", slug)
		}
	}

	return &kb, nil
}

func isTracked(slug domain.BodySlug) bool {
	for _, b := range domain.TrackedBodies {
		if b == slug {
			return true
		}
	}
	return false
}
