package config

import (
	"time"

	"github.com/VectorPrivacy/vector-sdk-go/internal/auth"
	"github.com/VectorPrivacy/vector-sdk-go/internal/destination"
	"github.com/VectorPrivacy/vector-sdk-go/internal/netx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/progress"
	"github.com/VectorPrivacy/vector-sdk-go/internal/retryx"
)

// DefaultDestinations are tried when nothing else is configured.
var DefaultDestinations = []string{
	"nip96+https://medea-1-swiss.vectorapp.io",
}

// Config holds runtime settings for the vector CLI.
type Config struct {
	Destinations []string

	Proxy              string
	ConnectTimeout     time.Duration
	PoolIdleTimeout    time.Duration
	PoolMaxIdlePerHost int
	MaxFetchBytes      int64

	RetryCount   int
	RetrySpacing time.Duration
	MaxSpacing   time.Duration
	ChunkSize    int
	ProgressTick time.Duration
	StallTimeout time.Duration

	// AuthSecret signs per-upload JWT grants. When empty, BearerToken is sent
	// as is, and with neither set uploads are anonymous.
	AuthSecret  string
	AuthSubject string
	BearerToken string

	S3 destination.S3Config

	JournalPath string
	Verbose     bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Destinations = append([]string(nil), DefaultDestinations...)
	c.ConnectTimeout = netx.DefaultConnectTimeout
	c.PoolIdleTimeout = netx.DefaultPoolIdleTimeout
	c.PoolMaxIdlePerHost = netx.DefaultPoolMaxIdlePerHost
	c.MaxFetchBytes = netx.DefaultMaxFetchBytes
	c.RetryCount = retryx.DefaultRetryCount
	c.RetrySpacing = retryx.DefaultRetrySpacing
	c.MaxSpacing = retryx.DefaultMaxSpacing
	c.ChunkSize = netx.DefaultChunkSize
	c.ProgressTick = progress.DefaultTick
	c.StallTimeout = progress.DefaultTick * progress.DefaultStallThreshold
	c.AuthSubject = "vector"
	c.S3.PutExpiry = destination.DefaultPutExpiry
	c.S3.GetExpiry = destination.DefaultGetExpiry
	c.JournalPath = "deliveries.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Network returns the transport settings.
func (c *Config) Network() netx.Config {
	return netx.Config{
		ConnectTimeout:     c.ConnectTimeout,
		PoolIdleTimeout:    c.PoolIdleTimeout,
		PoolMaxIdlePerHost: c.PoolMaxIdlePerHost,
		Proxy:              c.Proxy,
		MaxFetchBytes:      c.MaxFetchBytes,
	}
}

// Retry returns the per-destination retry settings. The stall timeout is
// expressed as a whole number of progress ticks, at least one.
func (c *Config) Retry() retryx.Config {
	tick := c.ProgressTick
	if tick <= 0 {
		tick = progress.DefaultTick
	}
	threshold := int(c.StallTimeout / tick)
	if threshold < 1 {
		threshold = 1
	}
	return retryx.Config{
		RetryCount:   c.RetryCount,
		RetrySpacing: c.RetrySpacing,
		MaxSpacing:   c.MaxSpacing,
		ChunkSize:    c.ChunkSize,
		Progress:     progress.Config{Tick: tick, StallThreshold: threshold},
	}
}

// Authorizer picks how uploads are authorized.
func (c *Config) Authorizer() auth.Authorizer {
	switch {
	case c.AuthSecret != "":
		return auth.NewJWTAuthorizer([]byte(c.AuthSecret), c.AuthSubject)
	case c.BearerToken != "":
		return auth.Bearer(c.BearerToken)
	default:
		return auth.None()
	}
}
