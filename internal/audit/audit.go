package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Archiver keeps a copy of raw bulk payloads, such as book import files, on
// disk. Each payload gets its own file named "<kind>-<uuid>.json".
type Archiver struct {
	Dir string
}

func NewArchiver(dir string) *Archiver {
	return &Archiver{Dir: dir}
}

// SaveJSON writes data as indented JSON and returns the file name.
func (a *Archiver) SaveJSON(kind string, data any) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.json", kind, uuid.New().String())

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data to JSON: %w", err)
	}

	if err := os.WriteFile(filepath.Join(a.Dir, filename), jsonData, 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}

	return filename, nil
}
