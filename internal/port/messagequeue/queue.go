// Package messagequeue defines the port for announcing snapshot changes to
// other processes.
package messagequeue

import "context"

// Publisher sends messages to a subject.
type Publisher interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Close shuts down the connection.
	Close() error
}

// SubjectSnapshotRefreshed carries one SnapshotRefreshedPayload per ingestion run.
const SubjectSnapshotRefreshed = "gantt.snapshot.refreshed"
