package ingest

import (
	"strings"
	"testing"
)

func validRun() Run {
	return Run{
		ID:         "run-1",
		SnapshotID: "snap-1",
		Trigger:    TriggerTimer,
		Outcome:    OutcomeOK,
		Total:      5,
		Admitted:   4,
		Excluded:   1,
	}
}

func TestRunValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Run)
		errMsg string
	}{
		{"valid", func(*Run) {}, ""},
		{"missing id", func(r *Run) { r.ID = "" }, "id is required"},
		{"missing snapshot", func(r *Run) { r.SnapshotID = "" }, "snapshot_id is required"},
		{"bad trigger", func(r *Run) { r.Trigger = "cron" }, "invalid trigger"},
		{"bad outcome", func(r *Run) { r.Outcome = "partial" }, "invalid outcome"},
		{"fallback without error", func(r *Run) { r.Outcome = OutcomeFallback }, "needs an error"},
		{"negative count", func(r *Run) { r.Imputed = -1 }, "non-negative"},
		{"unbalanced counts", func(r *Run) { r.Excluded = 3 }, "!= total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRun()
			tt.modify(&r)
			err := r.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Fatalf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}
