package destination

import (
	"context"
	"fmt"
	"net/http"

	"github.com/VectorPrivacy/vector-sdk-go/internal/auth"
	"github.com/VectorPrivacy/vector-sdk-go/internal/netx"
)

// Blob describes the ciphertext being uploaded.
type Blob struct {
	// SHA256 is the lowercase hex digest of the ciphertext.
	SHA256   string
	MimeType string
	Size     int64
	FileName string
}

// Resolver builds a fresh netx.Target for every attempt.
type Resolver struct {
	// S3 is required only for s3:// destinations.
	S3 *S3Presigner
	// NIP96 finds the upload endpoint of nip96+ destinations given without
	// a path. Without it such destinations post to the host root.
	NIP96 *NIP96Discovery
}

func (r *Resolver) Resolve(ctx context.Context, d Destination, b Blob, a auth.Authorizer) (netx.Target, error) {
	if a == nil {
		a = auth.None()
	}

	switch d.Kind {
	case KindBlossom, KindNIP96:
		t := netx.Target{
			Protocol: netx.ProtocolBlossom,
			URL:      d.uploadURL(),
			Header:   make(http.Header),
			FileName: b.FileName,
		}
		method := http.MethodPut
		if d.Kind == KindNIP96 {
			t.Protocol = netx.ProtocolNIP96
			method = http.MethodPost
			if d.needsDiscovery() && r != nil && r.NIP96 != nil {
				api, err := r.NIP96.APIURL(ctx, d.URL)
				if err != nil {
					return netx.Target{}, err
				}
				t.URL = api
			}
		} else {
			t.Header.Set("X-SHA-256", b.SHA256)
		}

		h, err := a.Authorize(ctx, method, t.URL, b.SHA256)
		if err != nil {
			return netx.Target{}, fmt.Errorf("authorize %s: %w", d, err)
		}
		if h != "" {
			t.Header.Set("Authorization", h)
		}
		return t, nil

	case KindS3:
		if r == nil || r.S3 == nil {
			return netx.Target{}, fmt.Errorf("%w: %s", ErrNoPresigner, d)
		}
		return r.S3.Target(ctx, d, b)

	default:
		return netx.Target{}, fmt.Errorf("%w: %s: unknown kind", ErrInvalid, d)
	}
}
