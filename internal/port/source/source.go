// Package source defines the port for reading the raw spreadsheet grid.
package source

import (
	"context"

	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

// Source fetches the current content of a spreadsheet.
type Source interface {
	// Fetch returns every row of the sheet, header included. Transport
	// failures are reported as *timeline.TransportError.
	Fetch(ctx context.Context) (timeline.Table, error)

	// Locator describes where the data comes from, with secrets removed.
	Locator() string
}

// LocalFile is implemented by sources reading from the local filesystem,
// which lets the service watch the file for changes.
type LocalFile interface {
	Path() string
}
