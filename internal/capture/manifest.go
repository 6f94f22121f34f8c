package capture

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/mazecapture/internal/fsutil"
	"github.com/banshee-data/mazecapture/internal/security"
)

// ManifestFileName is written into each prefix folder next to the images.
const ManifestFileName = "manifest.json"

// Manifest lists every image of a batch with the pose it was rendered from.
// It carries no timestamps so that the same batch always produces the same
// bytes.
type Manifest struct {
	Prefix string      `json:"prefix"`
	Count  int         `json:"count"`
	Jobs   []RenderJob `json:"jobs"`
}

// WriteManifest writes <root>/<prefix>/manifest.json and returns its path.
func WriteManifest(fs fsutil.FileSystem, root, prefix string, jobs []RenderJob) (string, error) {
	if err := security.ValidatePathComponent(prefix); err != nil {
		return "", fmt.Errorf("invalid prefix: %w", err)
	}
	dir, err := security.JoinWithin(root, prefix)
	if err != nil {
		return "", err
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	if jobs == nil {
		jobs = []RenderJob{}
	}
	data, err := json.MarshalIndent(Manifest{Prefix: prefix, Count: len(jobs), Jobs: jobs}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	out := filepath.Join(dir, ManifestFileName)
	if err := fs.WriteFile(out, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return out, nil
}
