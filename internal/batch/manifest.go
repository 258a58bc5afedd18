package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// ManifestEntry represents one converted texture in the output manifest.
type ManifestEntry struct {
	Source string `json:"source"`
	Image  string `json:"image"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// WriteManifest writes manifest.json to the output directory, listing
// every successfully converted texture.
func WriteManifest(path, outputFormat string, results []Result) error {
	var entries []ManifestEntry
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Source: r.Path,
			Image:  strings.TrimSuffix(r.Path, filepath.Ext(r.Path)) + "." + outputFormat,
			Width:  r.Width,
			Height: r.Height,
			Format: r.Format,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
