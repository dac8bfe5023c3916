package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	ingestRunKey
)

// ingestRun scopes log records to one pipeline run.
type ingestRun struct {
	snapshotID string
	trigger    string
}

// WithRequestID returns a new context with the given request ID stored.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID extracts the request ID from the context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithIngestRun marks ctx as belonging to the ingest run producing
// snapshotID. Records logged with it carry snapshot_id and trigger.
func WithIngestRun(ctx context.Context, snapshotID, trigger string) context.Context {
	return context.WithValue(ctx, ingestRunKey, ingestRun{snapshotID: snapshotID, trigger: trigger})
}

// IngestRun returns the snapshot id and trigger stored by WithIngestRun.
func IngestRun(ctx context.Context) (snapshotID, trigger string) {
	run, _ := ctx.Value(ingestRunKey).(ingestRun)
	return run.snapshotID, run.trigger
}

// contextAttrs lists the correlation attributes found in ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if id, trigger := IngestRun(ctx); id != "" {
		attrs = append(attrs, slog.String("snapshot_id", id), slog.String("trigger", trigger))
	}
	return attrs
}
