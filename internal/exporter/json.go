package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteJSON writes v as indented UTF-8 JSON to filePath.
// Non-ASCII text and HTML characters are written verbatim.
func WriteJSON(filePath string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(filePath), err)
	}

	return file.Close()
}
