package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/Strob0t/ganttboard/internal/adapter/postgres"
	"github.com/Strob0t/ganttboard/internal/config"
	"github.com/Strob0t/ganttboard/internal/domain/ingest"
	"github.com/Strob0t/ganttboard/internal/domain/timeline"
	"github.com/Strob0t/ganttboard/internal/logger"
	"github.com/Strob0t/ganttboard/internal/port/source"
	"github.com/Strob0t/ganttboard/internal/service"
)

// runAdmin dispatches admin subcommands (ingest, hash-token, migrate).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "ingest":
		return runAdminIngest(args[1:])
	case "hash-token":
		return runAdminHashToken(args[1:])
	case "migrate":
		return runAdminMigrate(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: ganttboard admin <command> [options]

Commands:
  ingest       Run the pipeline once and print the admitted rows
  hash-token   Hash a refresh token for auth.refresh_token_hash
  migrate      Apply or roll back run ledger migrations (up | down | version)
  help         Show this help message

Examples:
  ganttboard admin ingest
  ganttboard admin ingest --json --month 2024-03
  ganttboard admin hash-token
  ganttboard admin migrate up
  ganttboard admin migrate down --steps 1
`)
}

func runAdminIngest(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print JSON even on a terminal")
	month := fs.String("month", "", "only rows ending in this month (YYYY-MM)")
	record := fs.Bool("record", false, "append the run to the configured ledger")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, closer := logger.NewWithWriter(cfg.Logging, os.Stderr)
	defer closer.Close()
	slog.SetDefault(log)

	src, err := source.New(cfg.Source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}

	ctx := context.Background()
	in := &infra{runs: noRunLog{}}
	if *record {
		in, err = openInfra(ctx, cfg)
		if err != nil {
			return err
		}
		defer in.close()
	}

	initial := timeline.Fallback("initial", src.Locator(), time.Now(), cfg.Pipeline.LabelMax, nil)
	svc := newIngestService(cfg, in, ingestDeps{source: src, store: service.NewSnapshotStore(&initial)})

	snap, runErr := svc.Ingest(ctx, ingest.TriggerCLI)
	if runErr != nil {
		log.Warn("ingest failed, fallback shown", "error", runErr)
	}

	rows := timeline.Order(timeline.Filter(snap.Rows, timeline.Selection{Month: *month}.Canonical()))
	if *asJSON || !term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec // fd fits in int
		if err := printIngestJSON(os.Stdout, &snap, rows); err != nil {
			return err
		}
	} else if err := printIngestTable(os.Stdout, &snap, rows); err != nil {
		return err
	}
	return runErr
}

func printIngestJSON(w io.Writer, snap *timeline.Snapshot, rows []timeline.DisplayRow) error {
	out := struct {
		SnapshotID string                `json:"snapshot_id"`
		Source     string                `json:"source"`
		Fallback   bool                  `json:"fallback"`
		Error      string                `json:"error,omitempty"`
		Report     timeline.Report       `json:"report"`
		Rows       []timeline.DisplayRow `json:"rows"`
	}{snap.ID, snap.Source, snap.Fallback, snap.Error, snap.Report, rows}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printIngestTable(w io.Writer, snap *timeline.Snapshot, rows []timeline.DisplayRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tLABEL\tSTATUS\tASSIGNEE\tSTART\tEND\tDAYS\tMONTH")
	for i := range rows {
		r := &rows[i]
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Label, r.Status, r.Assignee,
			r.Start.Format(timeline.DisplayLayout), r.End.Format(timeline.DisplayLayout),
			r.DurationDays, r.PeriodKey)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	rep := snap.Report
	if _, err := fmt.Fprintf(w, "\nsource: %s\ntotal %d, admitted %d, excluded %d, imputed %d\n",
		snap.Source, rep.Total, rep.Admitted, rep.Excluded, rep.Imputed); err != nil {
		return err
	}
	for _, reason := range slices.Sorted(maps.Keys(rep.Exclusions)) {
		_, _ = fmt.Fprintf(w, "  excluded %-20s %d\n", reason, rep.Exclusions[reason])
	}
	return nil
}

// noRunLog discards runs of a one-shot ingest.
type noRunLog struct{}

func (noRunLog) Record(context.Context, *ingest.Run) error { return nil }

func (noRunLog) Recent(context.Context, int) ([]ingest.Run, error) { return nil, nil }

func runAdminHashToken(args []string) error {
	fs := flag.NewFlagSet("hash-token", flag.ContinueOnError)
	token := fs.String("token", "", "token to hash (prompted if not provided)") //nolint:gosec // CLI flag
	cost := fs.Int("cost", 0, "bcrypt cost (defaults to auth.bcrypt_cost)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	plain := *token
	if plain == "" {
		var err error
		plain, err = promptPassword("Refresh token: ")
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		confirm, err := promptPassword("Confirm token: ")
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if plain != confirm {
			return errors.New("tokens do not match")
		}
	}
	if plain == "" {
		return errors.New("token must not be empty")
	}

	c := *cost
	if c == 0 {
		c = config.Defaults().Auth.BcryptCost
		if cfg, err := config.Load(); err == nil {
			c = cfg.Auth.BcryptCost
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), c)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}
	fmt.Println(string(hash))
	fmt.Fprintln(os.Stderr, "Set this value as auth.refresh_token_hash or GANTTBOARD_REFRESH_TOKEN_HASH.")
	return nil
}

func runAdminMigrate(args []string) error {
	if len(args) == 0 {
		return errors.New("migrate needs a direction: up | down | version")
	}
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	steps := fs.Int("steps", 1, "migrations to roll back (down only)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn (DATABASE_URL) is not set")
	}

	ctx := context.Background()
	switch args[0] {
	case "up":
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return err
		}
	case "down":
		if err := postgres.RollbackMigrations(ctx, cfg.Postgres.DSN, *steps); err != nil {
			return err
		}
	case "version":
	default:
		return fmt.Errorf("unknown migrate direction: %s", args[0])
	}

	v, err := postgres.MigrationVersion(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "schema version "+strconv.FormatInt(v, 10))
	return nil
}

// promptPassword reads a secret from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)                         // newline after input
	if err != nil {
		return "", err
	}
	return string(b), nil
}
