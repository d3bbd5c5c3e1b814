// Package destination turns destination identifiers into upload targets.
//
// Identifiers are strings:
//
//	https://blossom.example          Blossom host, PUT /upload
//	blossom.example                  same, https implied
//	nip96+https://host/api/v2/media  NIP-96 upload endpoint
//	nip96+https://host               NIP-96 host, endpoint from its
//	                                 /.well-known/nostr/nip96.json
//	s3://bucket/prefix               object store, presigned PUT and GET
package destination

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalid     = errors.New("invalid destination")
	ErrNoPresigner = errors.New("s3 destination without presigner")
)

// Kind is the upload protocol a destination speaks.
type Kind int

const (
	KindBlossom Kind = iota + 1
	KindNIP96
	KindS3
)

func (k Kind) String() string {
	switch k {
	case KindBlossom:
		return "blossom"
	case KindNIP96:
		return "nip96"
	case KindS3:
		return "s3"
	default:
		return "unknown"
	}
}

const nip96Prefix = "nip96+"

type Destination struct {
	// ID is the identifier as given by the caller.
	ID   string
	Kind Kind
	// URL is the host base (Blossom) or upload endpoint (NIP-96).
	URL *url.URL

	Bucket string
	Prefix string
}

func (d Destination) String() string {
	return d.ID
}

// Parse validates an identifier. It does no network I/O.
func Parse(id string) (Destination, error) {
	raw := strings.TrimSpace(id)
	if raw == "" {
		return Destination{}, fmt.Errorf("%w: empty identifier", ErrInvalid)
	}

	kind := KindBlossom
	switch {
	case strings.HasPrefix(raw, "s3://"):
		return parseS3(id, raw)
	case strings.HasPrefix(raw, nip96Prefix):
		kind = KindNIP96
		raw = strings.TrimPrefix(raw, nip96Prefix)
	case !strings.Contains(raw, "://"):
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Destination{}, fmt.Errorf("%w %q: %w", ErrInvalid, id, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return Destination{}, fmt.Errorf("%w %q: unsupported scheme %q", ErrInvalid, id, u.Scheme)
	}
	if u.Host == "" {
		return Destination{}, fmt.Errorf("%w %q: missing host", ErrInvalid, id)
	}
	u.RawQuery, u.Fragment = "", ""

	return Destination{ID: id, Kind: kind, URL: u}, nil
}

func parseS3(id, raw string) (Destination, error) {
	rest := strings.TrimPrefix(raw, "s3://")
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Destination{}, fmt.Errorf("%w %q: missing bucket", ErrInvalid, id)
	}
	return Destination{ID: id, Kind: KindS3, Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

// ParseAll parses every identifier, keeping order and duplicates.
func ParseAll(ids []string) ([]Destination, error) {
	out := make([]Destination, 0, len(ids))
	for _, id := range ids {
		d, err := Parse(id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// needsDiscovery reports whether a NIP-96 identifier names only the host.
func (d Destination) needsDiscovery() bool {
	return d.Kind == KindNIP96 && strings.Trim(d.URL.Path, "/") == ""
}

func (d Destination) uploadURL() string {
	u := *d.URL
	if d.Kind == KindBlossom {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/upload"
	}
	return u.String()
}
