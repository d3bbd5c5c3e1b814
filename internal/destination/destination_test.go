package destination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VectorPrivacy/vector-sdk-go/internal/auth"
	"github.com/VectorPrivacy/vector-sdk-go/internal/netx"
)

func TestParse(t *testing.T) {
	tests := []struct {
		id      string
		kind    Kind
		upload  string
		bucket  string
		prefix  string
		wantErr bool
	}{
		{id: "https://blossom.example", kind: KindBlossom, upload: "https://blossom.example/upload"},
		{id: "https://blossom.example/", kind: KindBlossom, upload: "https://blossom.example/upload"},
		{id: "http://127.0.0.1:8080/base", kind: KindBlossom, upload: "http://127.0.0.1:8080/base/upload"},
		{id: "  blossom.example ", kind: KindBlossom, upload: "https://blossom.example/upload"},
		{id: "nip96+https://nostr.build/api/v2/upload/files", kind: KindNIP96, upload: "https://nostr.build/api/v2/upload/files"},
		{id: "s3://attachments/vector/", kind: KindS3, bucket: "attachments", prefix: "vector"},
		{id: "s3://attachments", kind: KindS3, bucket: "attachments"},
		{id: "", wantErr: true},
		{id: "ftp://host", wantErr: true},
		{id: "https://", wantErr: true},
		{id: "s3:///prefix", wantErr: true},
		{id: "nip96+ws://host", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, err := Parse(tt.id)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.id, d.String())
			if tt.upload != "" {
				assert.Equal(t, tt.upload, d.uploadURL())
			}
			assert.Equal(t, tt.bucket, d.Bucket)
			assert.Equal(t, tt.prefix, d.Prefix)
		})
	}
}

func TestParseAll_KeepsOrderAndDuplicates(t *testing.T) {
	ds, err := ParseAll([]string{"https://b.example", "https://a.example", "https://b.example"})
	require.NoError(t, err)
	require.Len(t, ds, 3)
	assert.Equal(t, "https://b.example", ds[0].ID)
	assert.Equal(t, "https://a.example", ds[1].ID)
	assert.Equal(t, "https://b.example", ds[2].ID)

	_, err = ParseAll([]string{"https://ok.example", "gopher://nope"})
	assert.ErrorIs(t, err, ErrInvalid)
}

type recordingAuthorizer struct {
	method, url, digest string
	err                 error
}

func (r *recordingAuthorizer) Authorize(_ context.Context, method, url, digest string) (string, error) {
	r.method, r.url, r.digest = method, url, digest
	if r.err != nil {
		return "", r.err
	}
	return "Bearer signed", nil
}

func TestResolver_Blossom(t *testing.T) {
	d, err := Parse("https://blossom.example")
	require.NoError(t, err)

	a := &recordingAuthorizer{}
	blob := Blob{SHA256: "abc123", MimeType: "image/png", Size: 10, FileName: "a.png"}

	target, err := (&Resolver{}).Resolve(context.Background(), d, blob, a)
	require.NoError(t, err)
	assert.Equal(t, netx.ProtocolBlossom, target.Protocol)
	assert.Equal(t, "https://blossom.example/upload", target.URL)
	assert.Equal(t, "Bearer signed", target.Header.Get("Authorization"))
	assert.Equal(t, "abc123", target.Header.Get("X-SHA-256"))

	assert.Equal(t, "PUT", a.method)
	assert.Equal(t, target.URL, a.url)
	assert.Equal(t, "abc123", a.digest)
}

func TestResolver_NIP96(t *testing.T) {
	d, err := Parse("nip96+https://files.example/api/upload")
	require.NoError(t, err)

	a := &recordingAuthorizer{}
	target, err := (&Resolver{}).Resolve(context.Background(), d, Blob{SHA256: "ff", FileName: "doc.pdf"}, a)
	require.NoError(t, err)
	assert.Equal(t, netx.ProtocolNIP96, target.Protocol)
	assert.Equal(t, "https://files.example/api/upload", target.URL)
	assert.Equal(t, "doc.pdf", target.FileName)
	assert.Equal(t, "POST", a.method)
}

func TestResolver_NoCredentials(t *testing.T) {
	d, _ := Parse("https://blossom.example")
	target, err := (&Resolver{}).Resolve(context.Background(), d, Blob{SHA256: "ff"}, nil)
	require.NoError(t, err)
	assert.Empty(t, target.Header.Get("Authorization"))
}

func TestResolver_Errors(t *testing.T) {
	d, _ := Parse("https://blossom.example")
	boom := errors.New("signer offline")
	_, err := (&Resolver{}).Resolve(context.Background(), d, Blob{}, &recordingAuthorizer{err: boom})
	assert.ErrorIs(t, err, boom)

	s3d, _ := Parse("s3://bucket/prefix")
	_, err = (&Resolver{}).Resolve(context.Background(), s3d, Blob{}, auth.None())
	assert.ErrorIs(t, err, ErrNoPresigner)

	_, err = (&Resolver{}).Resolve(context.Background(), Destination{ID: "x"}, Blob{}, nil)
	assert.ErrorIs(t, err, ErrInvalid)
}
