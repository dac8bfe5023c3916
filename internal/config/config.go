// Package config provides hierarchical configuration loading for ganttboard.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the ganttboard service.
type Config struct {
	Server   Server   `yaml:"server"`
	Source   Source   `yaml:"source"`
	Pipeline Pipeline `yaml:"pipeline"`
	Refresh  Refresh  `yaml:"refresh"`
	Logging  Logging  `yaml:"logging"`
	Breaker  Breaker  `yaml:"breaker"`
	Rate     Rate     `yaml:"rate"`
	Cache    Cache    `yaml:"cache"`
	NATS     NATS     `yaml:"nats"`
	Postgres Postgres `yaml:"postgres"`
	OTel     OTel     `yaml:"otel"`
	MCP      MCP      `yaml:"mcp"`
	Auth     Auth     `yaml:"auth"`
	UI       UI       `yaml:"ui"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Source selects and configures the spreadsheet provider.
type Source struct {
	Kind            string        `yaml:"kind"` // "csv" | "xlsx" | "gsheets"
	URL             string        `yaml:"url"`  // CSV export URL, or xlsx path/URL
	Timeout         time.Duration `yaml:"timeout"`
	CacheBust       bool          `yaml:"cache_bust"`
	Sheet           string        `yaml:"sheet"`
	SkipRows        int           `yaml:"skip_rows"`
	Positions       []int         `yaml:"positions"` // id, status, start, end[, assignee]; empty = by name
	SpreadsheetID   string        `yaml:"spreadsheet_id"`
	Range           string        `yaml:"range"`
	APIKey          string        `yaml:"api_key"`
	CredentialsFile string        `yaml:"credentials_file"`
	WatchDebounce   time.Duration `yaml:"watch_debounce"`
}

// Columns maps logical fields to accepted header aliases.
type Columns struct {
	ID       []string `yaml:"id"`
	Status   []string `yaml:"status"`
	Start    []string `yaml:"start"`
	End      []string `yaml:"end"`
	Assignee []string `yaml:"assignee"`
}

// Pipeline holds normalisation policy.
type Pipeline struct {
	Columns         Columns `yaml:"columns"`
	LabelMax        int     `yaml:"label_max"`
	MinParseRatio   float64 `yaml:"min_parse_ratio"`
	Admission       string  `yaml:"admission"` // "strict" | "impute"
	ImputeEndDays   int     `yaml:"impute_end_days"`
	ImputeStartDays int     `yaml:"impute_start_days"`
}

// Refresh holds the auto-refresh timer configuration.
type Refresh struct {
	IntervalSeconds int `yaml:"interval_seconds"` // 0 (off), 30, 60, 300, 900
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration for source fetches.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Rate holds rate limiter configuration for the manual refresh endpoint.
type Rate struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	MaxIdleTime       time.Duration `yaml:"max_idle_time"`
}

// Cache holds view cache configuration.
type Cache struct {
	L1MaxSizeMB int64         `yaml:"l1_max_size_mb"`
	L2Bucket    string        `yaml:"l2_bucket"`
	TTL         time.Duration `yaml:"ttl"`
}

// NATS holds optional NATS JetStream configuration. Empty URL disables it.
type NATS struct {
	URL string `yaml:"url"`
}

// Postgres holds optional run ledger configuration. Empty DSN disables it.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	HealthCheck     time.Duration `yaml:"health_check"`
}

// OTel holds OpenTelemetry exporter configuration. Empty endpoint keeps no-op providers.
type OTel struct {
	Endpoint    string `yaml:"endpoint"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// MCP toggles the Model Context Protocol endpoint.
type MCP struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Auth protects the manual refresh endpoint. Empty hash leaves it open.
type Auth struct {
	RefreshTokenHash string `yaml:"refresh_token_hash"`
	BcryptCost       int    `yaml:"bcrypt_cost"`
}

// UI holds dashboard presentation defaults.
type UI struct {
	Title string `yaml:"title"`
	Theme string `yaml:"theme"` // "light" | "dark"
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:8080",
		},
		Source: Source{
			Kind:          "csv",
			Timeout:       15 * time.Second,
			CacheBust:     true,
			Range:         "A:Z",
			WatchDebounce: 500 * time.Millisecond,
		},
		Pipeline: Pipeline{
			Columns: Columns{
				ID:       []string{"rn"},
				Status:   []string{"estado"},
				Start:    []string{"inicio"},
				End:      []string{"fin"},
				Assignee: []string{"afu asignado"},
			},
			LabelMax:        30,
			MinParseRatio:   0.5,
			Admission:       "strict",
			ImputeEndDays:   7,
			ImputeStartDays: 30,
		},
		Refresh: Refresh{
			IntervalSeconds: 60,
		},
		Logging: Logging{
			Level:   "info",
			Service: "ganttboard",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Rate: Rate{
			RequestsPerSecond: 1,
			Burst:             5,
			CleanupInterval:   5 * time.Minute,
			MaxIdleTime:       10 * time.Minute,
		},
		Cache: Cache{
			L1MaxSizeMB: 32,
			L2Bucket:    "GANTT_VIEWS",
			TTL:         10 * time.Minute,
		},
		Postgres: Postgres{
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
			HealthCheck:     time.Minute,
		},
		OTel: OTel{
			Insecure:    true,
			ServiceName: "ganttboard",
		},
		MCP: MCP{
			Enabled: true,
			Name:    "ganttboard",
			Version: "0.1.0",
		},
		Auth: Auth{
			BcryptCost: 12,
		},
		UI: UI{
			Title: "Gantt",
			Theme: "light",
		},
	}
}
