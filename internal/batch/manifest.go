package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry represents one preview in the output manifest.
type ManifestEntry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Image    string  `json:"image,omitempty"`
	Coverage float64 `json:"coverage"`
	Bounds   [4]int  `json:"bounds"` // x0, y0, x1, y1 of non-transparent pixels
	Error    string  `json:"error,omitempty"`
}

// WriteManifest writes the results as a JSON array.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			ID:       r.ID,
			Name:     r.Name,
			Coverage: r.Coverage,
			Bounds:   [4]int{r.Bounds.Min.X, r.Bounds.Min.Y, r.Bounds.Max.X, r.Bounds.Max.Y},
			Error:    r.Error,
		}
		if r.Success {
			entries[i].Image = r.Image
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read manifest: %w", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("batch: parse manifest: %w", err)
	}
	return entries, nil
}
