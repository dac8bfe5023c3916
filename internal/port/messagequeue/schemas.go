package messagequeue

import "time"

// SnapshotRefreshedPayload is the schema for gantt.snapshot.refreshed messages.
type SnapshotRefreshedPayload struct {
	SnapshotID string    `json:"snapshot_id"`
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`
	Excluded   int       `json:"excluded"`
	Fallback   bool      `json:"fallback"`
	Error      string    `json:"error,omitempty"`
	LoadedAt   time.Time `json:"loaded_at"`
}
