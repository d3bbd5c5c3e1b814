package destination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
)

// WellKnownNIP96 is where a NIP-96 host publishes its server configuration.
const WellKnownNIP96 = "/.well-known/nostr/nip96.json"

var ErrDiscovery = errors.New("nip96 server config discovery")

// Fetcher downloads a document. *netx.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// ServerConfig is the part of a NIP-96 server configuration used here.
type ServerConfig struct {
	APIURL         string   `json:"api_url"`
	DownloadURL    string   `json:"download_url,omitempty"`
	DelegatedToURL string   `json:"delegated_to_url,omitempty"`
	SupportedNIPs  []int    `json:"supported_nips,omitempty"`
	ContentTypes   []string `json:"content_types,omitempty"`
}

// NIP96Discovery looks up upload endpoints of NIP-96 hosts. Successful
// lookups are cached per origin for the life of the value; failures are not.
type NIP96Discovery struct {
	fetch Fetcher

	mu    sync.Mutex
	cache map[string]string
}

func NewNIP96Discovery(f Fetcher) *NIP96Discovery {
	return &NIP96Discovery{fetch: f, cache: make(map[string]string)}
}

// APIURL returns the upload endpoint advertised by the host of base.
func (n *NIP96Discovery) APIURL(ctx context.Context, base *url.URL) (string, error) {
	origin := base.Scheme + "://" + base.Host

	n.mu.Lock()
	api, ok := n.cache[origin]
	n.mu.Unlock()
	if ok {
		return api, nil
	}

	raw, err := n.fetch.Fetch(ctx, origin+WellKnownNIP96)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrDiscovery, origin, err)
	}
	var conf ServerConfig
	if err := json.Unmarshal(raw, &conf); err != nil {
		return "", fmt.Errorf("%w %s: decode: %w", ErrDiscovery, origin, err)
	}
	if conf.APIURL == "" {
		return "", fmt.Errorf("%w %s: no api_url", ErrDiscovery, origin)
	}
	ref, err := url.Parse(conf.APIURL)
	if err != nil {
		return "", fmt.Errorf("%w %s: api_url: %w", ErrDiscovery, origin, err)
	}
	api = base.ResolveReference(ref).String()

	n.mu.Lock()
	n.cache[origin] = api
	n.mu.Unlock()
	return api, nil
}
