package kg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteDocument serializes doc into dir/filename, creating dir if needed,
// and returns the written path.
func WriteDocument(dir, filename string, doc *Document) (string, error) {
	if doc == nil {
		doc = NewDocument()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return path, nil
}

func ReadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.normalize()
	return &doc, nil
}
