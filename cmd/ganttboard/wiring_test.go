package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Strob0t/ganttboard/internal/adapter/memlog"
	"github.com/Strob0t/ganttboard/internal/config"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

func TestPolicyFromDefaultsMatchesDefaultPolicy(t *testing.T) {
	cfg := config.Defaults()
	if diff := cmp.Diff(timeline.DefaultPolicy(), policyFromConfig(&cfg)); diff != "" {
		t.Errorf("policy mismatch (-want +got):\n%s", diff)
	}
}

func TestPolicyFromConfigLayout(t *testing.T) {
	cfg := config.Defaults()
	cfg.Source.SkipRows = 13
	cfg.Source.Positions = []int{2, 5, 6, 7}
	cfg.Pipeline.Admission = "impute"

	p := policyFromConfig(&cfg)
	if p.Layout.SkipRows != 13 || !cmp.Equal(p.Layout.Positions, []int{2, 5, 6, 7}) {
		t.Errorf("unexpected layout %+v", p.Layout)
	}
	if p.Admission != timeline.AdmissionImpute {
		t.Errorf("expected impute admission, got %s", p.Admission)
	}
}

func TestOpenInfraInMemory(t *testing.T) {
	cfg := config.Defaults()
	in, err := openInfra(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("openInfra: %v", err)
	}
	defer in.close()

	if _, ok := in.runs.(*memlog.Store); !ok {
		t.Errorf("expected in-memory run log, got %T", in.runs)
	}
	if in.queue != nil {
		t.Error("no queue expected without nats.url")
	}
}

func TestPrintIngestTable(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	row := timeline.NewRow("RN-1", "Backlog", "Ana", start, start.AddDate(0, 0, 14), 30, false)
	snap := timeline.Snapshot{
		Source: "https://example.com/pub?output=csv",
		Rows:   []timeline.Row{row},
		Report: timeline.Report{
			Total:    4,
			Admitted: 1,
			Excluded: 3,
			Exclusions: map[string]int{
				timeline.ExcludedMissingStart: 2,
				timeline.ExcludedMissingID:    1,
			},
		},
	}

	var buf bytes.Buffer
	if err := printIngestTable(&buf, &snap, timeline.Order(snap.Rows)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	lines := strings.Split(out, "\n")
	if got := strings.Fields(lines[0]); len(got) == 0 || got[0] != "ID" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	wantRow := []string{"RN-1", row.Label, "Backlog", "Ana", "01-03-2024", "15-03-2024", "14", "2024-03"}
	if diff := cmp.Diff(wantRow, strings.Fields(lines[1])); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out, "total 4, admitted 1, excluded 3, imputed 0") {
		t.Errorf("report line missing:\n%s", out)
	}
	idAt := strings.Index(out, timeline.ExcludedMissingID)
	startAt := strings.Index(out, timeline.ExcludedMissingStart)
	if idAt < 0 || startAt < 0 || idAt > startAt {
		t.Errorf("exclusion reasons missing or unsorted:\n%s", out)
	}
}
