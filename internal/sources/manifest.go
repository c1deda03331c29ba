package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the parsed sources manifest. Source order follows the manifest
// declaration order so that derived output stays stable across runs.
type Manifest struct {
	Names   []string
	Sources map[string]*Source
}

// Get returns the declared configuration of a source. The entry for a source
// declared with a null config is nil.
func (m *Manifest) Get(name string) (*Source, bool) {
	src, ok := m.Sources[name]
	return src, ok
}

// UnmarshalYAML implements custom YAML unmarshaling for Manifest, keeping the
// declaration order of sources. A source declared with a null config is kept
// as a nil entry; structural defaults are filled in when the completion
// registry is built.
func (m *Manifest) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: sources manifest must be a mapping of source names", node.Line)
	}

	m.Names = make([]string, 0, len(node.Content)/2)
	m.Sources = make(map[string]*Source, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return fmt.Errorf("line %d: invalid source name: %w", keyNode.Line, err)
		}

		if _, ok := m.Sources[name]; ok {
			return fmt.Errorf("line %d: duplicate source %q", keyNode.Line, name)
		}

		var src *Source
		if valueNode.Tag != "!!null" {
			src = new(Source)
			if err := valueNode.Decode(src); err != nil {
				return fmt.Errorf("source %q: %w", name, err)
			}
		}

		m.Names = append(m.Names, name)
		m.Sources[name] = src
	}

	return nil
}

// LoadFile loads and parses the sources manifest from the given path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources manifest %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sources manifest %s: %w", path, err)
	}

	return m, nil
}

// Parse parses manifest YAML, applies loader defaults, and validates the
// parts that must be rejected before any derivation runs.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	applyDefaults(&m)

	if err := validate(&m); err != nil {
		return nil, err
	}

	return &m, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(m *Manifest) {
	for _, src := range m.Sources {
		if src == nil {
			continue
		}
		if src.File != "" && src.Delimiter == "" {
			src.Delimiter = DefaultDelimiter
		}
	}
}

// validate rejects structural problems that would otherwise surface as
// confusing failures deep in the pipeline.
func validate(m *Manifest) error {
	for _, name := range m.Names {
		src := m.Sources[name]
		if src == nil {
			continue
		}
		for i, join := range src.Join {
			if len(join.With) == 0 {
				return fmt.Errorf("source %q: join %d: empty with list", name, i)
			}
		}
	}
	return nil
}
