package config

import "time"

// Config holds runtime settings for the clinicdesk console.
//
// Units: RequestTimeout and SearchDebounce are time.Duration values;
// RateLimit is requests per second, 0 disables throttling.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	SearchDebounce time.Duration
	PageSize       int
	StoragePath    string
	LogLevel       string
	RateLimit      float64
	MetricsAddr    string
	ExportDir      string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080/api/v1"
	c.RequestTimeout = 30 * time.Second
	c.SearchDebounce = 500 * time.Millisecond
	c.PageSize = 10
	c.StoragePath = "clinicdesk.db"
	c.LogLevel = "warn"
	c.RateLimit = 10
	c.MetricsAddr = ""
	c.ExportDir = "exports"
	c.S3Region = "us-east-1"
}

// S3Enabled reports whether exports should go to object storage instead
// of the export directory.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
