package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/VectorPrivacy/vector-sdk-go/internal/attachment"
	"github.com/VectorPrivacy/vector-sdk-go/internal/auth"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/models"
	"github.com/VectorPrivacy/vector-sdk-go/internal/cryptox"
	"github.com/VectorPrivacy/vector-sdk-go/internal/destination"
)

const defaultHistory = 20

// History lists the newest deliveries, args[0] of them if given.
func (a *App) History(ctx context.Context, args []string) error {
	limit := defaultHistory
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("history: invalid count %q", args[0])
		}
		limit = n
	}

	rows, err := a.journal.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "no deliveries yet")
		return nil
	}

	for _, d := range rows {
		where := d.Location
		if d.Status == models.StatusFailed {
			where = d.Error
		}
		fmt.Fprintf(a.out, "%s  %s  %-9s  %-20s  %s\n",
			d.ID, d.CreatedAt.Format(time.DateTime), d.Status, d.FileName, where)
	}
	return nil
}

// Show prints one delivery with its message tags and attempts.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: show <id>")
	}
	d, err := a.journal.GetByID(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s  %s  %s\n", d.ID, d.Status, d.FileName)
	if d.Status == models.StatusFailed {
		fmt.Fprintf(a.out, "  error: %s\n", d.Error)
		return nil
	}

	fmt.Fprintf(a.out, "  location: %s\n  host:     %s\n", d.Location, d.Destination)
	printTags(a.out, (&attachment.Delivery{
		MimeType:  d.MimeType,
		Size:      d.Size,
		Algorithm: cryptox.Algorithm,
		Key:       d.Key,
		Nonce:     d.Nonce,
		Digest:    d.Digest,
	}).Tags())

	for _, at := range d.Attempts {
		outcome := "ok"
		if at.Error != "" {
			outcome = at.Class + ": " + at.Error
		}
		fmt.Fprintf(a.out, "  attempt %s #%d  %d bytes  %s  %s\n",
			at.Destination, at.Index+1, at.BytesSent, at.Duration.Round(time.Millisecond), outcome)
	}
	return nil
}

// Hosts lists the configured destinations in failover order.
func (a *App) Hosts(context.Context) error {
	for i, id := range a.config.Destinations {
		d, err := destination.Parse(id)
		if err != nil {
			fmt.Fprintf(a.out, "%d. %s  (invalid: %v)\n", i+1, id, err)
			continue
		}
		fmt.Fprintf(a.out, "%d. %s  (%s)\n", i+1, id, d.Kind)
	}
	return nil
}

// Secret prompts for the upload signing secret and switches to per-upload
// JWT authorization.
func (a *App) Secret(ctx context.Context) error {
	secret, err := GetSecret("Upload signing secret", a.out)
	if err != nil {
		return err
	}
	if len(secret) == 0 {
		return errors.New("secret: empty input, authorization unchanged")
	}
	a.auth = auth.NewJWTAuthorizer(secret, a.config.AuthSubject)
	a.log.Info(ctx, "upload authorization switched to signed tokens", "subject", a.config.AuthSubject)
	return nil
}
