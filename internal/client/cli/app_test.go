package cli

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorPrivacy/vector-sdk-go/internal/auth"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/config"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/models"
)

// blossomHost stores uploaded blobs by digest and serves them back.
type blossomHost struct {
	mu    sync.Mutex
	blobs map[string][]byte
	srv   *httptest.Server
}

func newBlossomHost(t *testing.T) *blossomHost {
	t.Helper()
	h := &blossomHost{blobs: map[string][]byte{}}
	h.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			b, _ := io.ReadAll(r.Body)
			sum := sha256.Sum256(b)
			key := hex.EncodeToString(sum[:])
			h.mu.Lock()
			h.blobs[key] = b
			h.mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]string{"url": "http://" + r.Host + "/" + key})
		case http.MethodGet:
			h.mu.Lock()
			b, ok := h.blobs[strings.TrimPrefix(r.URL.Path, "/")]
			h.mu.Unlock()
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(b)
		}
	}))
	t.Cleanup(h.srv.Close)
	return h
}

func (h *blossomHost) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.blobs)
}

func newTestApp(t *testing.T, destinations ...string) (*App, *bytes.Buffer) {
	t.Helper()

	var c config.Config
	c.LoadDefaults()
	c.Destinations = destinations
	c.RetryCount = 1
	c.RetrySpacing = time.Millisecond
	c.ProgressTick = 5 * time.Millisecond
	c.JournalPath = filepath.Join(t.TempDir(), "journal.db")

	app, err := NewApp(context.Background(), &c, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	var out bytes.Buffer
	app.out = &out
	return app, &out
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestApp_SendFetchRoundTrip(t *testing.T) {
	host := newBlossomHost(t)
	app, out := newTestApp(t, host.srv.URL)
	ctx := context.Background()

	plaintext := bytes.Repeat([]byte("vector"), 4096)
	require.NoError(t, app.Run(ctx, []string{"send", writeFile(t, "photo.png", plaintext)}))
	assert.Contains(t, out.String(), "delivered photo.png")
	assert.Contains(t, out.String(), "decryption-key")

	rows, err := app.journal.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	rec := rows[0]
	assert.Equal(t, models.StatusDelivered, rec.Status)
	assert.Equal(t, "image/png", rec.MimeType)
	assert.Equal(t, host.srv.URL, rec.Destination)

	host.mu.Lock()
	for _, b := range host.blobs {
		assert.False(t, bytes.Contains(b, []byte("vectorvector")), "host must only see ciphertext")
	}
	host.mu.Unlock()

	dst := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, app.Run(ctx, []string{"fetch", rec.ID, dst}))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)

	out.Reset()
	require.NoError(t, app.Show(ctx, []string{rec.ID}))
	assert.Contains(t, out.String(), "attempt "+host.srv.URL+" #1")
	assert.Contains(t, out.String(), "ok")
}

func TestApp_SendFailureIsJournaled(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer down.Close()

	app, out := newTestApp(t, down.URL)
	ctx := context.Background()

	err := app.Run(ctx, []string{"send", writeFile(t, "notes.txt", []byte("hello"))})
	require.Error(t, err)
	assert.Contains(t, out.String(), down.URL+": rejected after 1 tries")

	rows, err := app.journal.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.StatusFailed, rows[0].Status)
	assert.Contains(t, rows[0].Error, "all 1 destinations failed")

	err = app.Fetch(ctx, []string{rows[0].ID})
	assert.ErrorContains(t, err, "was not delivered")

	out.Reset()
	require.NoError(t, app.History(ctx, nil))
	assert.Contains(t, out.String(), "failed")
	assert.Contains(t, out.String(), "notes.txt")
}

func TestApp_SendUsesExplicitDestinations(t *testing.T) {
	configured := newBlossomHost(t)
	explicit := newBlossomHost(t)
	app, _ := newTestApp(t, configured.srv.URL)

	require.NoError(t, app.Send(context.Background(), []string{writeFile(t, "a.bin", []byte("x")), explicit.srv.URL}))

	assert.Equal(t, 0, configured.count())
	assert.Equal(t, 1, explicit.count())
}

func TestApp_CommandUsage(t *testing.T) {
	app, out := newTestApp(t, "https://a.example")
	ctx := context.Background()

	assert.ErrorContains(t, app.Send(ctx, nil), "usage: send")
	assert.ErrorContains(t, app.Fetch(ctx, nil), "usage: fetch")
	assert.ErrorContains(t, app.Show(ctx, nil), "usage: show")
	assert.ErrorContains(t, app.History(ctx, []string{"zero"}), "invalid count")
	assert.Error(t, app.Fetch(ctx, []string{"unknown-id"}))

	require.NoError(t, app.History(ctx, nil))
	assert.Contains(t, out.String(), "no deliveries yet")
}

func TestApp_Hosts(t *testing.T) {
	app, out := newTestApp(t, "https://blossom.example", "nip96+https://nip96.example", "ftp://nope")

	require.NoError(t, app.Hosts(context.Background()))
	assert.Contains(t, out.String(), "1. https://blossom.example  (blossom)")
	assert.Contains(t, out.String(), "2. nip96+https://nip96.example  (nip96)")
	assert.Contains(t, out.String(), "3. ftp://nope  (invalid")
}

func TestApp_Secret(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) { return []byte("host-secret"), nil }

	app, _ := newTestApp(t, "https://a.example")
	require.NoError(t, app.Secret(context.Background()))

	_, ok := app.auth.(*auth.JWTAuthorizer)
	assert.True(t, ok)

	readPassword = func(int) ([]byte, error) { return nil, nil }
	assert.Error(t, app.Secret(context.Background()))
}
