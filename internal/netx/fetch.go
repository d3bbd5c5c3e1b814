package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetch downloads the body at rawURL, bounded by Config.MaxFetchBytes.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("netx: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, rejected(resp)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxFetchBytes+1))
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	if int64(len(b)) > c.cfg.MaxFetchBytes {
		return nil, invalidResponse("body exceeds %d bytes", c.cfg.MaxFetchBytes)
	}
	return b, nil
}
