package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/VectorPrivacy/vector-sdk-go/internal/flagx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so they can be written as "2s" or integer nanoseconds.
type JsonConfig struct {
	Destinations       []string       `json:"destinations"`
	Proxy              string         `json:"proxy"`
	ConnectTimeout     timex.Duration `json:"connect_timeout"`
	PoolIdleTimeout    timex.Duration `json:"pool_idle_timeout"`
	PoolMaxIdlePerHost int            `json:"pool_max_idle_per_host"`
	MaxFetchBytes      int64          `json:"max_fetch_bytes"`
	RetryCount         *int           `json:"retry_count"`
	RetrySpacing       timex.Duration `json:"retry_spacing"`
	MaxSpacing         timex.Duration `json:"max_spacing"`
	ChunkSize          int            `json:"chunk_size"`
	ProgressTick       timex.Duration `json:"progress_tick"`
	StallTimeout       timex.Duration `json:"stall_timeout"`
	AuthSecret         string         `json:"auth_secret"`
	AuthSubject        string         `json:"auth_subject"`
	BearerToken        string         `json:"bearer_token"`
	S3                 jsonS3         `json:"s3"`
	JournalPath        string         `json:"journal_path"`
	Verbose            bool           `json:"verbose"`
}

type jsonS3 struct {
	Region       string         `json:"region"`
	Endpoint     string         `json:"endpoint"`
	AccessKey    string         `json:"access_key"`
	SecretKey    string         `json:"secret_key"`
	UsePathStyle bool           `json:"use_path_style"`
	PutExpiry    timex.Duration `json:"put_expiry"`
	GetExpiry    timex.Duration `json:"get_expiry"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Fields absent from the file keep their current value; retry_count is a
// pointer so that an explicit 0 (a single try) is honoured. Read and
// unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if len(jc.Destinations) > 0 {
		cfg.Destinations = jc.Destinations
	}
	setString(&cfg.Proxy, jc.Proxy)
	setDuration(&cfg.ConnectTimeout, jc.ConnectTimeout)
	setDuration(&cfg.PoolIdleTimeout, jc.PoolIdleTimeout)
	if jc.PoolMaxIdlePerHost > 0 {
		cfg.PoolMaxIdlePerHost = jc.PoolMaxIdlePerHost
	}
	if jc.MaxFetchBytes > 0 {
		cfg.MaxFetchBytes = jc.MaxFetchBytes
	}
	if jc.RetryCount != nil {
		cfg.RetryCount = *jc.RetryCount
	}
	setDuration(&cfg.RetrySpacing, jc.RetrySpacing)
	setDuration(&cfg.MaxSpacing, jc.MaxSpacing)
	if jc.ChunkSize > 0 {
		cfg.ChunkSize = jc.ChunkSize
	}
	setDuration(&cfg.ProgressTick, jc.ProgressTick)
	setDuration(&cfg.StallTimeout, jc.StallTimeout)
	setString(&cfg.AuthSecret, jc.AuthSecret)
	setString(&cfg.AuthSubject, jc.AuthSubject)
	setString(&cfg.BearerToken, jc.BearerToken)

	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	cfg.S3.UsePathStyle = cfg.S3.UsePathStyle || jc.S3.UsePathStyle
	setDuration(&cfg.S3.PutExpiry, jc.S3.PutExpiry)
	setDuration(&cfg.S3.GetExpiry, jc.S3.GetExpiry)

	setString(&cfg.JournalPath, jc.JournalPath)
	cfg.Verbose = cfg.Verbose || jc.Verbose
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
