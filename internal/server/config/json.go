package config

import (
	"encoding/json"
	"os"

	"github.com/VectorPrivacy/vector-sdk-go/internal/flagx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/timex"
)

// JsonConfig is the JSON form of Config. Durations accept "1m" or integer
// nanoseconds.
type JsonConfig struct {
	EndpointAddr    string         `json:"endpoint_addr"`
	PublicURL       string         `json:"public_url"`
	DatabaseDSN     string         `json:"database_dsn"`
	DataDir         string         `json:"data_dir"`
	SecretKey       string         `json:"secret_key"`
	MaxUploadBytes  int64          `json:"max_upload_bytes"`
	RateLimit       int            `json:"rate_limit"`
	RateWindow      timex.Duration `json:"rate_window"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	Debug           bool           `json:"debug"`
}

// parseJson overlays config with the file named by -c/-config. Empty JSON
// fields leave the current value alone. Read or decode errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	for dst, v := range map[*string]string{
		&config.EndpointAddr: c.EndpointAddr,
		&config.PublicURL:    c.PublicURL,
		&config.DatabaseDSN:  c.DatabaseDSN,
		&config.DataDir:      c.DataDir,
		&config.SecretKey:    c.SecretKey,
	} {
		if v != "" {
			*dst = v
		}
	}
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.RateLimit > 0 {
		config.RateLimit = c.RateLimit
	}
	if c.RateWindow.Duration > 0 {
		config.RateWindow = c.RateWindow.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	config.Debug = config.Debug || c.Debug
}
