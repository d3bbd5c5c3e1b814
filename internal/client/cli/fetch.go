package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/VectorPrivacy/vector-sdk-go/internal/attachment"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/models"
	"github.com/VectorPrivacy/vector-sdk-go/internal/cryptox"
	"github.com/VectorPrivacy/vector-sdk-go/internal/filex"
)

// receivedDir is where fetched files go when no output path is given.
const receivedDir = "received"

// Fetch downloads the journaled delivery args[0], decrypts and verifies it,
// and writes the plaintext to args[1] or to received/<id>.<ext>.
func (a *App) Fetch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: fetch <id> [output]")
	}

	rec, err := a.journal.GetByID(ctx, args[0])
	if err != nil {
		return err
	}
	if rec.Status != models.StatusDelivered {
		return fmt.Errorf("delivery %s was not delivered: %s", rec.ID, rec.Error)
	}

	plaintext, err := a.service.Receive(ctx, &attachment.Delivery{
		Location:  rec.Location,
		Key:       rec.Key,
		Nonce:     rec.Nonce,
		Digest:    rec.Digest,
		Size:      rec.Size,
		MimeType:  rec.MimeType,
		Algorithm: cryptox.Algorithm,
	})
	if err != nil {
		return err
	}

	out := ""
	if len(args) > 1 {
		out = args[1]
	} else {
		dir, err := filex.EnsureSubDir("", receivedDir)
		if err != nil {
			return err
		}
		out = filepath.Join(dir, rec.ID+"."+attachment.ExtensionFor(rec.MimeType))
	}

	if err := filex.WriteAtomic(out, plaintext, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "fetched %d bytes to %s\n", len(plaintext), out)
	return nil
}
