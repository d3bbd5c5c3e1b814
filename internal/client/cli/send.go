package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/VectorPrivacy/vector-sdk-go/internal/attachment"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/models"
	"github.com/VectorPrivacy/vector-sdk-go/internal/failover"
	"github.com/VectorPrivacy/vector-sdk-go/internal/progress"
)

// Send encrypts the file at args[0] and uploads it to args[1:], or to the
// configured destinations. The outcome is journaled either way.
func (a *App) Send(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: send <path> [destination ...]")
	}

	att, err := attachment.FromPath(args[0])
	if err != nil {
		return err
	}
	dests := args[1:]
	if len(dests) == 0 {
		dests = a.config.Destinations
	}

	p := &progressPrinter{w: a.out}
	d, sendErr := a.service.Send(ctx, att, dests, attachment.SendOptions{
		Auth:       a.auth,
		OnProgress: p.update,
	})
	p.done()

	rec := deliveryRecord(filepath.Base(args[0]), att, d, sendErr)
	if err := a.journal.Create(ctx, rec); err != nil {
		a.log.Warn(ctx, "journal write failed", "error", err)
	}

	if sendErr != nil {
		var agg *failover.AllDestinationsFailedError
		if errors.As(sendErr, &agg) {
			for _, f := range agg.Failures {
				fmt.Fprintln(a.out, "  "+f.String())
			}
		}
		return sendErr
	}

	fmt.Fprintf(a.out, "delivered %s\n  id:       %s\n  location: %s\n", filepath.Base(args[0]), rec.ID, d.Location)
	printTags(a.out, d.Tags())
	return nil
}

// deliveryRecord turns a send outcome into a journal row.
func deliveryRecord(fileName string, att *attachment.Attachment, d *attachment.Delivery, err error) *models.Delivery {
	rec := &models.Delivery{
		FileName: fileName,
		MimeType: att.MimeType(),
		Status:   models.StatusDelivered,
	}
	if err != nil {
		rec.Status = models.StatusFailed
		rec.Error = err.Error()
		return rec
	}

	rec.ID = d.SessionID.String()
	rec.Location = d.Location
	rec.Destination = d.Destination
	rec.Size = d.Size
	rec.Digest = d.Digest
	rec.Key = d.Key
	rec.Nonce = d.Nonce
	for _, at := range d.Attempts {
		row := models.Attempt{
			ID:          at.ID.String(),
			Destination: at.Destination,
			Index:       at.Index,
			BytesSent:   at.BytesSent,
			Duration:    at.Duration,
		}
		if at.Err != nil {
			row.Class = at.Class.String()
			row.Error = at.Err.Error()
		}
		rec.Attempts = append(rec.Attempts, row)
	}
	return rec
}

func printTags(w io.Writer, tags [][]string) {
	for _, t := range tags {
		fmt.Fprintf(w, "  %-21s %s\n", t[0], t[1])
	}
}

// progressPrinter renders progress events on one terminal line. A drop in
// the byte count means a new attempt started, which begins a new line.
type progressPrinter struct {
	w       io.Writer
	mu      sync.Mutex
	last    progress.Event
	started bool
}

func (p *progressPrinter) update(e progress.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started && e == p.last {
		return nil
	}
	if p.started && e.Bytes < p.last.Bytes {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintf(p.w, "\rsending %s", e)
	p.last, p.started = e, true
	return nil
}

func (p *progressPrinter) done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		fmt.Fprintln(p.w)
	}
}
