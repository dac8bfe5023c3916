package ingest

import "fmt"

var validTriggers = map[Trigger]bool{
	TriggerStartup: true,
	TriggerTimer:   true,
	TriggerManual:  true,
	TriggerFile:    true,
	TriggerCLI:     true,
}

var validOutcomes = map[Outcome]bool{
	OutcomeOK:       true,
	OutcomeFallback: true,
}

// Validate checks that a Run has all required fields and valid values.
func (r *Run) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("id is required")
	}
	if r.SnapshotID == "" {
		return fmt.Errorf("snapshot_id is required")
	}
	if !validTriggers[r.Trigger] {
		return fmt.Errorf("invalid trigger %q", r.Trigger)
	}
	if !validOutcomes[r.Outcome] {
		return fmt.Errorf("invalid outcome %q", r.Outcome)
	}
	if r.Outcome == OutcomeFallback && r.Error == "" {
		return fmt.Errorf("fallback run needs an error")
	}
	if r.Total < 0 || r.Admitted < 0 || r.Excluded < 0 || r.Imputed < 0 {
		return fmt.Errorf("counts must be non-negative")
	}
	if r.Admitted+r.Excluded != r.Total {
		return fmt.Errorf("admitted %d + excluded %d != total %d", r.Admitted, r.Excluded, r.Total)
	}
	return nil
}
