package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "ganttboard.yaml"

// validIntervals are the refresh intervals offered by the dashboard (seconds, 0 = off).
var validIntervals = map[int]bool{0: true, 30: true, 60: true, 300: true, 900: true}

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if v := os.Getenv("GANTTBOARD_CONFIG"); v != "" {
		path = v
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: operator-supplied config path
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "GANTTBOARD_PORT")
	setString(&cfg.Server.CORSOrigin, "GANTTBOARD_CORS_ORIGIN")

	// Source
	setString(&cfg.Source.Kind, "GANTTBOARD_SOURCE_KIND")
	setString(&cfg.Source.URL, "GANTTBOARD_SOURCE_URL")
	setDuration(&cfg.Source.Timeout, "GANTTBOARD_SOURCE_TIMEOUT")
	setBool(&cfg.Source.CacheBust, "GANTTBOARD_SOURCE_CACHE_BUST")
	setString(&cfg.Source.Sheet, "GANTTBOARD_SOURCE_SHEET")
	setInt(&cfg.Source.SkipRows, "GANTTBOARD_SOURCE_SKIP_ROWS")
	setInts(&cfg.Source.Positions, "GANTTBOARD_SOURCE_POSITIONS")
	setString(&cfg.Source.SpreadsheetID, "GANTTBOARD_SOURCE_SPREADSHEET_ID")
	setString(&cfg.Source.Range, "GANTTBOARD_SOURCE_RANGE")
	setString(&cfg.Source.APIKey, "GANTTBOARD_SOURCE_API_KEY")
	setString(&cfg.Source.CredentialsFile, "GANTTBOARD_SOURCE_CREDENTIALS_FILE")
	setDuration(&cfg.Source.WatchDebounce, "GANTTBOARD_SOURCE_WATCH_DEBOUNCE")

	// Pipeline
	setStrings(&cfg.Pipeline.Columns.ID, "GANTTBOARD_COLUMN_ID")
	setStrings(&cfg.Pipeline.Columns.Status, "GANTTBOARD_COLUMN_STATUS")
	setStrings(&cfg.Pipeline.Columns.Start, "GANTTBOARD_COLUMN_START")
	setStrings(&cfg.Pipeline.Columns.End, "GANTTBOARD_COLUMN_END")
	setStrings(&cfg.Pipeline.Columns.Assignee, "GANTTBOARD_COLUMN_ASSIGNEE")
	setInt(&cfg.Pipeline.LabelMax, "GANTTBOARD_LABEL_MAX")
	setFloat64(&cfg.Pipeline.MinParseRatio, "GANTTBOARD_MIN_PARSE_RATIO")
	setString(&cfg.Pipeline.Admission, "GANTTBOARD_ADMISSION")
	setInt(&cfg.Pipeline.ImputeEndDays, "GANTTBOARD_IMPUTE_END_DAYS")
	setInt(&cfg.Pipeline.ImputeStartDays, "GANTTBOARD_IMPUTE_START_DAYS")

	setInt(&cfg.Refresh.IntervalSeconds, "GANTTBOARD_REFRESH_INTERVAL")

	setString(&cfg.Logging.Level, "GANTTBOARD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "GANTTBOARD_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "GANTTBOARD_LOG_ASYNC")
	setInt(&cfg.Breaker.MaxFailures, "GANTTBOARD_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "GANTTBOARD_BREAKER_TIMEOUT")
	setFloat64(&cfg.Rate.RequestsPerSecond, "GANTTBOARD_RATE_RPS")
	setInt(&cfg.Rate.Burst, "GANTTBOARD_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "GANTTBOARD_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "GANTTBOARD_RATE_MAX_IDLE_TIME")

	// Cache
	setInt64(&cfg.Cache.L1MaxSizeMB, "GANTTBOARD_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "GANTTBOARD_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.TTL, "GANTTBOARD_CACHE_TTL")

	setString(&cfg.NATS.URL, "NATS_URL")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "GANTTBOARD_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "GANTTBOARD_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "GANTTBOARD_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "GANTTBOARD_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "GANTTBOARD_PG_HEALTH_CHECK")

	setString(&cfg.OTel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.OTel.Insecure, "GANTTBOARD_OTEL_INSECURE")
	setString(&cfg.OTel.ServiceName, "OTEL_SERVICE_NAME")

	setBool(&cfg.MCP.Enabled, "GANTTBOARD_MCP_ENABLED")

	setString(&cfg.Auth.RefreshTokenHash, "GANTTBOARD_REFRESH_TOKEN_HASH")
	setInt(&cfg.Auth.BcryptCost, "GANTTBOARD_BCRYPT_COST")

	setString(&cfg.UI.Title, "GANTTBOARD_UI_TITLE")
	setString(&cfg.UI.Theme, "GANTTBOARD_UI_THEME")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch cfg.Source.Kind {
	case "csv", "xlsx":
		if cfg.Source.URL == "" {
			return errors.New("source.url is required")
		}
	case "gsheets":
		if cfg.Source.SpreadsheetID == "" {
			return errors.New("source.spreadsheet_id is required")
		}
	default:
		return fmt.Errorf("source.kind %q is not supported", cfg.Source.Kind)
	}
	if cfg.Source.Timeout <= 0 {
		return errors.New("source.timeout must be > 0")
	}
	if cfg.Source.SkipRows < 0 {
		return errors.New("source.skip_rows must be >= 0")
	}
	if n := len(cfg.Source.Positions); n != 0 && n != 4 && n != 5 {
		return errors.New("source.positions must list 4 or 5 column indexes")
	}
	for _, p := range cfg.Source.Positions {
		if p < 0 {
			return errors.New("source.positions must be >= 0")
		}
	}
	if cfg.Pipeline.LabelMax < 4 {
		return errors.New("pipeline.label_max must be >= 4")
	}
	if cfg.Pipeline.MinParseRatio <= 0 || cfg.Pipeline.MinParseRatio > 1 {
		return errors.New("pipeline.min_parse_ratio must be in (0, 1]")
	}
	if cfg.Pipeline.Admission != "strict" && cfg.Pipeline.Admission != "impute" {
		return errors.New("pipeline.admission must be strict or impute")
	}
	if !validIntervals[cfg.Refresh.IntervalSeconds] {
		return errors.New("refresh.interval_seconds must be one of 0, 30, 60, 300, 900")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	if cfg.Rate.RequestsPerSecond <= 0 {
		return errors.New("rate.requests_per_second must be > 0")
	}
	if cfg.UI.Theme != "light" && cfg.UI.Theme != "dark" {
		return errors.New("ui.theme must be light or dark")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setStrings reads a comma-separated list.
func setStrings(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

func setInts(dst *[]int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return
		}
		out = append(out, n)
	}
	*dst = out
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
