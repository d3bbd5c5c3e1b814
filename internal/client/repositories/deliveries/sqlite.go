package deliveries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/VectorPrivacy/vector-sdk-go/internal/client/models"
	"github.com/VectorPrivacy/vector-sdk-go/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, d *models.Delivery) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO deliveries (id, file_name, status, location, destination, mime_type, size,
				digest, decryption_key, decryption_nonce, error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, query, d.ID, d.FileName, string(d.Status), d.Location, d.Destination,
			d.MimeType, d.Size, d.Digest, d.Key, d.Nonce, d.Error, d.CreatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to insert delivery: %w", err)
		}

		for i := range d.Attempts {
			a := &d.Attempts[i]
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			a.DeliveryID = d.ID
			if err := insertAttempt(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertAttempt(ctx context.Context, tx dbx.DBTX, a *models.Attempt) error {
	query := `INSERT INTO delivery_attempts (id, delivery_id, destination, idx, bytes_sent, duration_ms, class, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, query, a.ID, a.DeliveryID, a.Destination, a.Index, a.BytesSent,
		a.Duration.Milliseconds(), a.Class, a.Error)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}
	return nil
}

const selectDelivery = `SELECT id, file_name, status, location, destination, mime_type, size,
	digest, decryption_key, decryption_nonce, error, created_at FROM deliveries`

func scanDelivery(s dbx.Scanner) (*models.Delivery, error) {
	d := &models.Delivery{}
	var status string
	var created int64
	err := s.Scan(&d.ID, &d.FileName, &status, &d.Location, &d.Destination, &d.MimeType, &d.Size,
		&d.Digest, &d.Key, &d.Nonce, &d.Error, &created)
	if err != nil {
		return nil, err
	}
	d.Status = models.DeliveryStatus(status)
	d.CreatedAt = time.UnixMilli(created)
	return d, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Delivery, error) {
	d, err := scanDelivery(r.db.QueryRowContext(ctx, selectDelivery+` WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error selecting delivery: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, delivery_id, destination, idx, bytes_sent, duration_ms, class, error
		FROM delivery_attempts WHERE delivery_id=? ORDER BY idx, rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("error selecting attempts: %w", err)
	}
	d.Attempts, err = dbx.CollectRows(rows, scanAttempt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func scanAttempt(s dbx.Scanner) (models.Attempt, error) {
	var a models.Attempt
	var ms int64
	if err := s.Scan(&a.ID, &a.DeliveryID, &a.Destination, &a.Index, &a.BytesSent, &ms, &a.Class, &a.Error); err != nil {
		return a, err
	}
	a.Duration = time.Duration(ms) * time.Millisecond
	return a, nil
}

func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*models.Delivery, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, selectDelivery+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("error selecting deliveries: %w", err)
	}
	return dbx.CollectRows(rows, scanDelivery)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM delivery_attempts WHERE delivery_id=?`, id); err != nil {
			return fmt.Errorf("failed to delete attempts: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM deliveries WHERE id=?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete delivery: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected != 1 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil
	})
}
