package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/mazecapture/internal/fsutil"
)

func TestWriteManifest(t *testing.T) {
	memFS := fsutil.NewMemoryFileSystem()
	jobs := config0Jobs(t)

	path, err := WriteManifest(memFS, "photos", "config0", jobs)
	if err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	if want := filepath.Join("photos", "config0", ManifestFileName); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	m, err := readManifest(memFS, path)
	if err != nil {
		t.Fatalf("readManifest: %v", err)
	}
	if m.Prefix != "config0" || m.Count != 24 {
		t.Errorf("manifest header = %q/%d", m.Prefix, m.Count)
	}
	if diff := cmp.Diff(jobs, m.Jobs); diff != "" {
		t.Errorf("manifest jobs mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteManifest_Deterministic(t *testing.T) {
	memFS := fsutil.NewMemoryFileSystem()
	jobs := config0Jobs(t)

	path, err := WriteManifest(memFS, "photos", "config0", jobs)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	first, _ := memFS.ReadFile(path)
	if _, err := WriteManifest(memFS, "photos", "config0", jobs); err != nil {
		t.Fatalf("second write: %v", err)
	}
	second, _ := memFS.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Error("manifest bytes differ between identical writes")
	}
	if !bytes.Contains(first, []byte(`"direction": "north"`)) {
		t.Error("manifest should encode directions as tokens")
	}
}

func TestWriteManifest_Errors(t *testing.T) {
	memFS := fsutil.NewMemoryFileSystem()
	if _, err := WriteManifest(memFS, "photos", "../up", nil); err == nil {
		t.Error("expected error for prefix with separator")
	}
	if _, err := WriteManifest(memFS, "photos", "", nil); err == nil {
		t.Error("expected error for empty prefix")
	}
	if _, err := readManifest(memFS, "photos/none/manifest.json"); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestWriteManifest_Empty(t *testing.T) {
	memFS := fsutil.NewMemoryFileSystem()
	path, err := WriteManifest(memFS, "photos", "empty", nil)
	if err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	data, _ := memFS.ReadFile(path)
	if !bytes.Contains(data, []byte(`"jobs": []`)) {
		t.Errorf("empty manifest should list no jobs, got %s", data)
	}
}

func readManifest(fs fsutil.FileSystem, path string) (Manifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}
