// Package ingest defines the ledger entry written for every ingestion run.
package ingest

import "time"

// Trigger names what started a run.
type Trigger string

const (
	TriggerStartup Trigger = "startup"
	TriggerTimer   Trigger = "timer"
	TriggerManual  Trigger = "manual"
	TriggerFile    Trigger = "file"
	TriggerCLI     Trigger = "cli"
)

// Outcome is the result class of a run.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFallback Outcome = "fallback"
)

// Run is one ingestion attempt.
type Run struct {
	ID         string        `json:"id"`
	SnapshotID string        `json:"snapshot_id"`
	Trigger    Trigger       `json:"trigger"`
	Source     string        `json:"source"`
	Outcome    Outcome       `json:"outcome"`
	ErrorKind  string        `json:"error_kind,omitempty"` // transport | schema | parse | empty
	Error      string        `json:"error,omitempty"`
	Total      int           `json:"total"`
	Admitted   int           `json:"admitted"`
	Excluded   int           `json:"excluded"`
	Imputed    int           `json:"imputed"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
}
