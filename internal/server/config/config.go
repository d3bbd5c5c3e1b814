// Package config handles configuration for the blob host, including
// defaults, JSON overlay and command-line flags.
package config

import "time"

// Config holds runtime settings for the blob host.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP API.
//   - PublicURL: base of the URLs handed back to uploaders; derived from the
//     request when empty.
//   - DatabaseDSN: PostgreSQL DSN (pgx) for the blob index. Empty keeps the
//     index in memory.
//   - DataDir: directory holding blob contents.
//   - SecretKey: HMAC secret for upload grants (HS256). Empty allows
//     anonymous uploads.
//   - RateLimit / RateWindow: uploads allowed per client per window; 0
//     disables limiting.
type Config struct {
	EndpointAddr    string
	PublicURL       string
	DatabaseDSN     string
	DataDir         string
	SecretKey       string
	MaxUploadBytes  int64
	RateLimit       int
	RateWindow      time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.DataDir = "blobs"
	c.MaxUploadBytes = 100 << 20
	c.RateWindow = time.Minute
	c.ShutdownTimeout = 5 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
