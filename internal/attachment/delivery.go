package attachment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/VectorPrivacy/vector-sdk-go/internal/cryptox"
	"github.com/VectorPrivacy/vector-sdk-go/internal/retryx"
)

var ErrMissingTag = errors.New("missing attachment tag")

// Delivery is everything a recipient needs to fetch and decrypt an upload.
// Key, Nonce and Digest travel out of band and are never sent to the host.
type Delivery struct {
	Location    string
	Destination string
	Key         string
	Nonce       string
	// Digest is the sha256 of the plaintext.
	Digest string
	// Size is the ciphertext length.
	Size      int64
	MimeType  string
	Algorithm string
	ImageMeta *ImageMeta

	SessionID uuid.UUID
	Attempts  []retryx.Attempt
}

func (d *Delivery) Params() cryptox.EncryptionParams {
	return cryptox.EncryptionParams{Key: d.Key, Nonce: d.Nonce}
}

// Tags renders the message tags that accompany the location URL.
func (d *Delivery) Tags() [][]string {
	tags := [][]string{
		{"url", d.Location},
		{"file-type", d.MimeType},
		{"size", strconv.FormatInt(d.Size, 10)},
		{"encryption-algorithm", d.Algorithm},
		{"decryption-key", d.Key},
		{"decryption-nonce", d.Nonce},
		{"ox", d.Digest},
	}
	if m := d.ImageMeta; m != nil {
		tags = append(tags,
			[]string{"blurhash", m.Blurhash},
			[]string{"dim", fmt.Sprintf("%dx%d", m.Width, m.Height)},
		)
	}
	return tags
}

// ParseTags rebuilds a Delivery on the recipient side. An empty location is
// taken from the url tag.
func ParseTags(location string, tags [][]string) (*Delivery, error) {
	values := make(map[string]string, len(tags))
	for _, t := range tags {
		if len(t) >= 2 {
			values[t[0]] = t[1]
		}
	}

	if location == "" {
		location = values["url"]
	}
	d := &Delivery{Location: location, Algorithm: cryptox.Algorithm}
	for name, dst := range map[string]*string{
		"decryption-key":   &d.Key,
		"decryption-nonce": &d.Nonce,
		"ox":               &d.Digest,
	} {
		v, ok := values[name]
		if !ok || v == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingTag, name)
		}
		*dst = v
	}

	if alg, ok := values["encryption-algorithm"]; ok && alg != cryptox.Algorithm {
		return nil, fmt.Errorf("unsupported encryption algorithm %q", alg)
	}
	d.MimeType = values["file-type"]
	if s, ok := values["size"]; ok {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid size tag %q: %w", s, err)
		}
		d.Size = n
	}

	if bh, ok := values["blurhash"]; ok {
		m := &ImageMeta{Blurhash: bh}
		if dim, ok := values["dim"]; ok {
			w, h, _ := strings.Cut(dim, "x")
			wi, _ := strconv.ParseUint(w, 10, 32)
			hi, _ := strconv.ParseUint(h, 10, 32)
			m.Width, m.Height = uint32(wi), uint32(hi)
		}
		d.ImageMeta = m
	}
	return d, nil
}
