package blobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/VectorPrivacy/vector-sdk-go/internal/dbx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/migrations"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres connects with the pgx stdlib driver and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (r *PostgresRepository) Create(ctx context.Context, b *models.Blob) error {
	query := `
		INSERT INTO blobs (sha256, size, mime_type, uploader, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (sha256) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, b.SHA256, b.Size, b.MimeType, b.Uploader, b.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetBySHA256(ctx context.Context, sha256 string) (*models.Blob, error) {
	query := `SELECT sha256, size, mime_type, uploader, created_at FROM blobs WHERE sha256=$1`

	b := &models.Blob{}
	err := r.db.QueryRowContext(ctx, query, sha256).Scan(&b.SHA256, &b.Size, &b.MimeType, &b.Uploader, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select blob: %w", err)
	}
	return b, nil
}
