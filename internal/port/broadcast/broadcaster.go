// Package broadcast defines the port for pushing events to open dashboards.
package broadcast

import (
	"context"
	"time"
)

// EventSnapshotUpdated is sent after every ingestion run, failed ones included.
const EventSnapshotUpdated = "snapshot.updated"

// SnapshotUpdated is the payload of EventSnapshotUpdated.
type SnapshotUpdated struct {
	SnapshotID string    `json:"snapshot_id"`
	Rows       int       `json:"rows"`
	Fallback   bool      `json:"fallback"`
	Error      string    `json:"error,omitempty"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Broadcaster sends real-time events to all connected clients.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to all connected clients.
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
