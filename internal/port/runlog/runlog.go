// Package runlog defines the port for the ingestion run ledger.
package runlog

import (
	"context"

	"github.com/Strob0t/ganttboard/internal/domain/ingest"
)

// Store persists ingestion runs.
type Store interface {
	// Record appends a run to the ledger.
	Record(ctx context.Context, run *ingest.Run) error

	// Recent returns up to limit runs, newest first.
	Recent(ctx context.Context, limit int) ([]ingest.Run, error)
}
