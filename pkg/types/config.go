// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for outbound requests.
type HTTPConfig struct {
	// Timeout bounds a single backend request, retries included.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent on every outbound request (e.g. "ragscholar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// BackendConfig configures the client for the analysis backend.
type BackendConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the backend root, e.g. "http://localhost:8040".
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxRetries is the number of retries on HTTP 429 (0 uses the default).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// AnalyzeRate caps analysis calls per second. Zero disables the limit.
	AnalyzeRate float64 `json:"analyze_rate" yaml:"analyze_rate" mapstructure:"analyze_rate"`

	// AnalyzeBurst is the limiter's burst size (default 1).
	AnalyzeBurst int `json:"analyze_burst" yaml:"analyze_burst" mapstructure:"analyze_burst"`

	// RandomCount is the listing size requested from GET /. The backend
	// currently ignores it.
	RandomCount int `json:"random_count" yaml:"random_count" mapstructure:"random_count"`

	// APIToken is sent as a bearer token when set. It is normally loaded
	// from the secrets directory rather than the config file.
	APIToken string `json:"-" yaml:"-" mapstructure:"api_token"`
}

// CacheBackend selects the query cache implementation.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheNone   CacheBackend = "none"
)

// CacheConfig configures the read-through query cache.
type CacheConfig struct {
	Backend CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// TTL is how long a cached response stays fresh.
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	// Path is the SQLite database file, used when Backend is "sqlite".
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// SweepInterval is how often expired SQLite rows are deleted.
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// ServerConfig configures the web front end.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// ListWait bounds how long the home page waits for the listing before
	// showing its loading state.
	ListWait time.Duration `json:"list_wait" yaml:"list_wait" mapstructure:"list_wait"`
}

// StubConfig configures the development backend stub.
type StubConfig struct {
	Addr     string `json:"addr" yaml:"addr" mapstructure:"addr"`
	Fixtures string `json:"fixtures" yaml:"fixtures" mapstructure:"fixtures"`
}

// Config groups every section of ragscholar.yaml.
type Config struct {
	// SecretsDir holds one file per credential (see internal/secrets).
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`

	Backend BackendConfig `json:"backend" yaml:"backend" mapstructure:"backend"`
	Cache   CacheConfig   `json:"cache" yaml:"cache" mapstructure:"cache"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Stub    StubConfig    `json:"stub" yaml:"stub" mapstructure:"stub"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() Config {
	return Config{
		SecretsDir: ".secrets",
		Backend: BackendConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "ragscholar/0.1",
			},
			BaseURL:      "http://localhost:8040",
			MaxRetries:   2,
			AnalyzeBurst: 1,
			RandomCount:  10,
		},
		Cache: CacheConfig{
			Backend:       CacheMemory,
			TTL:           5 * time.Minute,
			Path:          "ragscholar-cache.db",
			SweepInterval: time.Minute,
		},
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			ListWait:        3 * time.Second,
		},
		Stub: StubConfig{
			Addr:     ":8040",
			Fixtures: "fixtures/papers.yaml",
		},
	}
}
