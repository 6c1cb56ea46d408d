package models

import "time"

// Snapshot is the immutable end-of-run artifact. Its JSON field names and
// nesting are a compatibility contract for downstream consumers of the
// mapping file; do not rename them.
type Snapshot struct {
	RunID     string                     `json:"run_id"`
	Timestamp time.Time                  `json:"timestamp"`
	Mappings  map[Kind]map[string]string `json:"mappings"`
	Stats     map[Kind]Stats             `json:"stats"`
	Summary   Stats                      `json:"summary"`
}
