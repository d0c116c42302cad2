package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the manifest as indented UTF-8 JSON, creating parent
// directories as needed.
func Save(path string, m Manifest) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Load reads a manifest document from disk. JSON that fails to parse at
// all is a hard error; schema problems are the caller's to judge via
// Validate.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}
	return m, nil
}
