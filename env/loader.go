package env

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseYAML builds an environment from a YAML document.
// The document must be a mapping; an empty document gives an empty environment.
func ParseYAML(data []byte) (*Environment, error) {
	var nested map[string]any
	if err := yaml.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if nested == nil {
		return New(), nil
	}
	return FromNested(nested), nil
}

// LoadYAML reads a YAML configuration file.
// A missing file is not an error and gives an empty environment.
func LoadYAML(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	e, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

// ParseAssignment parses a "key=value" pair as given on the command line.
// The value is decoded as YAML, so "a=[x, y]" stores a list and "a=true" a boolean.
func ParseAssignment(assignment string) (string, any, error) {
	key, raw, found := strings.Cut(assignment, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", nil, fmt.Errorf("invalid assignment %q, expected key=value", assignment)
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return key, raw, nil
	}
	return key, value, nil
}
