// Package netx streams attachment bodies to content hosts in bounded chunks
// and downloads them back for recipients.
//
// Connection parameters (connect timeout, idle pool retention, idle
// connections per host, proxy) are passed straight to net/http and do not
// change how bodies are chunked. A Client may be shared by concurrent
// upload sessions; only idle pooled connections are reused between them.
package netx

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultConnectTimeout     = 5 * time.Second
	DefaultPoolIdleTimeout    = 90 * time.Second
	DefaultPoolMaxIdlePerHost = 2
	DefaultChunkSize          = 64 * 1024
	DefaultMaxFetchBytes      = 512 << 20
)

// Config holds connection-level settings. Zero values take the defaults.
type Config struct {
	ConnectTimeout     time.Duration
	PoolIdleTimeout    time.Duration
	PoolMaxIdlePerHost int
	// Proxy is either host:port (SOCKS5) or a full proxy URL.
	Proxy string
	// MaxFetchBytes bounds downloads made with Fetch.
	MaxFetchBytes int64
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.PoolIdleTimeout <= 0 {
		c.PoolIdleTimeout = DefaultPoolIdleTimeout
	}
	if c.PoolMaxIdlePerHost <= 0 {
		c.PoolMaxIdlePerHost = DefaultPoolMaxIdlePerHost
	}
	if c.MaxFetchBytes <= 0 {
		c.MaxFetchBytes = DefaultMaxFetchBytes
	}
	return c
}

// Client performs chunked uploads over a pooled HTTP transport.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a client. It fails only on a malformed proxy setting.
func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = (&net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	tr.TLSHandshakeTimeout = cfg.ConnectTimeout
	tr.IdleConnTimeout = cfg.PoolIdleTimeout
	tr.MaxIdleConnsPerHost = cfg.PoolMaxIdlePerHost

	if cfg.Proxy != "" {
		proxyURL, err := parseProxy(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		tr.Proxy = http.ProxyURL(proxyURL)
	}

	// No overall timeout: a slow but steady upload may run as long as it
	// needs, liveness is judged by the progress monitor.
	return &Client{cfg: cfg, http: &http.Client{Transport: tr}}, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// CloseIdleConnections drops pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func parseProxy(s string) (*url.URL, error) {
	if !strings.Contains(s, "://") {
		s = "socks5://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", s, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q: missing host", s)
	}
	return u, nil
}
