package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/reminis/internal/shared"
)

// ManifestFilename is the name of the summary written next to an export.
const ManifestFilename = "export_manifest.json"

// ManifestEntry records the outcome of exporting one photo.
type ManifestEntry struct {
	PhotoID string `json:"photo_id"`
	File    string `json:"file,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	Format          string          `json:"format"`
	ExportedAt      time.Time       `json:"exported_at"`
	OutputDirectory string          `json:"output_directory"`
	Document        string          `json:"document,omitempty"`
	TotalPhotos     int             `json:"total_photos"`
	Successful      int             `json:"successful_exports"`
	Failed          int             `json:"failed_exports"`
	Entries         []ManifestEntry `json:"entries"`
}

// NewManifestEntry builds an entry, marking it failed when err is set.
func NewManifestEntry(id, file string, err error) ManifestEntry {
	if err != nil {
		return ManifestEntry{PhotoID: id, Status: "failed", Error: err.Error()}
	}
	return ManifestEntry{PhotoID: id, File: file, Status: "success"}
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m Manifest, path string) error {
	if m.Entries == nil {
		m.Entries = []ManifestEntry{}
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
