package attachment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultExtension = "bin"

var mimeTypes = map[string]string{
	// images
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	// audio
	"wav":  "audio/wav",
	"mp3":  "audio/mp3",
	"flac": "audio/flac",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	// video
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
}

// MimeType maps a file extension to its MIME type, falling back to
// application/octet-stream.
func MimeType(ext string) string {
	if mt, ok := mimeTypes[normalizeExt(ext)]; ok {
		return mt
	}
	return "application/octet-stream"
}

// ExtensionFor is the inverse of MimeType for the known types.
func ExtensionFor(mimeType string) string {
	best := ""
	for ext, mt := range mimeTypes {
		if mt == mimeType && (best == "" || ext < best) {
			best = ext
		}
	}
	if best == "" {
		return defaultExtension
	}
	return best
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ImageMeta carries the preview data clients render before download.
type ImageMeta struct {
	Blurhash string `json:"blurhash"`
	Width    uint32 `json:"width"`
	Height   uint32 `json:"height"`
}

// Attachment is a plaintext file ready to be sent.
type Attachment struct {
	Bytes     []byte
	Extension string
	ImageMeta *ImageMeta
}

// FromPath reads a file and takes its extension from the name.
func FromPath(path string) (*Attachment, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	ext := normalizeExt(filepath.Ext(path))
	if ext == "" {
		ext = defaultExtension
	}
	return &Attachment{Bytes: b, Extension: ext}, nil
}

// FromBytes wraps in-memory data with the generic "bin" extension.
func FromBytes(b []byte) *Attachment {
	return &Attachment{Bytes: b, Extension: defaultExtension}
}

func (a *Attachment) MimeType() string {
	return MimeType(a.Extension)
}
