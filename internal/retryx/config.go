package retryx

import (
	"time"

	"github.com/VectorPrivacy/vector-sdk-go/internal/netx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/progress"
)

const (
	DefaultRetryCount   = 3
	DefaultRetrySpacing = 2 * time.Second
	DefaultMaxSpacing   = 30 * time.Second
)

// Config controls retries against one destination.
//
// RetryCount is used as given, so 0 means a single try; start from
// DefaultConfig to get the usual three retries. Zero durations and chunk
// size take their defaults.
type Config struct {
	RetryCount   int
	RetrySpacing time.Duration
	// MaxSpacing caps the spacing after rate-limit doubling.
	MaxSpacing time.Duration
	ChunkSize  int
	Progress   progress.Config
}

func DefaultConfig() Config {
	return Config{
		RetryCount:   DefaultRetryCount,
		RetrySpacing: DefaultRetrySpacing,
		MaxSpacing:   DefaultMaxSpacing,
		ChunkSize:    netx.DefaultChunkSize,
	}
}

func (c Config) withDefaults() Config {
	if c.RetryCount < 0 {
		c.RetryCount = 0
	}
	if c.RetrySpacing <= 0 {
		c.RetrySpacing = DefaultRetrySpacing
	}
	if c.MaxSpacing <= 0 {
		c.MaxSpacing = DefaultMaxSpacing
	}
	if c.MaxSpacing < c.RetrySpacing {
		c.MaxSpacing = c.RetrySpacing
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = netx.DefaultChunkSize
	}
	return c
}
