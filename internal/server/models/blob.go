// Package models defines the records kept by the blob host.
package models

import "time"

// Blob describes stored content. SHA256 is the lowercase hex digest of the
// bytes and doubles as the public identifier.
type Blob struct {
	SHA256    string
	Size      int64
	MimeType  string
	Uploader  string
	CreatedAt time.Time
}
