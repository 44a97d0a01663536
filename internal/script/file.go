package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the script as indented JSON.
func Save(s *Script, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create script directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal script: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Load reads a script previously written by Save.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file %s: %w", path, err)
	}

	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script file %s: %w", path, err)
	}
	return &s, nil
}
