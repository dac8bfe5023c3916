package timeline

import (
	"fmt"
	"strings"
)

// TransportError reports a failed fetch: network error, timeout, open
// circuit, or a non-2xx response.
type TransportError struct {
	Source string
	Status int // HTTP status, 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.Source, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError reports required columns that could not be located.
type SchemaError struct {
	Missing []Field
	Header  []string // normalised header row as seen
}

func (e *SchemaError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(names, ", "))
}

// ParseError reports a date column in which no cell parsed under any strategy.
type ParseError struct {
	Column  Field
	Samples []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("column %s: no date format matched (samples: %s)", e.Column, strings.Join(e.Samples, ", "))
}

// EmptyResultError reports that admission left no rows.
type EmptyResultError struct {
	Total    int
	Excluded int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no rows admitted (%d read, %d excluded)", e.Total, e.Excluded)
}
