// Package filesystem persists run artifacts to the local disk.
package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/secondary"
)

const snapshotPrefix = "mapping_"

// SnapshotStore writes one immutable JSON snapshot per run into a
// directory. File layout: <dir>/mapping_YYYYMMDD_HHMMSS.json with
// {timestamp, mappings, stats, summary} — the compatibility contract for
// downstream consumers.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore returns a store writing into dir.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

// Write persists the snapshot and returns the path of the written file.
// Snapshots are never rewritten; a clashing name means two runs within the
// same second, which the run coordinator does not do.
func (s *SnapshotStore) Write(snapshot *models.Snapshot) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create mappings directory: %w", err)
	}

	name := snapshotPrefix + snapshot.Timestamp.Format("20060102_150405") + ".json"
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	return path, nil
}

// List returns the snapshot files in dir, oldest first.
func (s *SnapshotStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mappings directory: %w", err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, snapshotPrefix) && strings.HasSuffix(name, ".json") {
			out = append(out, filepath.Join(s.dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Load reads one snapshot back.
func (s *SnapshotStore) Load(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &snapshot, nil
}

// Ensure SnapshotStore implements the interface.
var _ secondary.SnapshotWriter = (*SnapshotStore)(nil)
