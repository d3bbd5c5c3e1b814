// Package storage opens the local SQLite delivery journal and applies its
// migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/VectorPrivacy/vector-sdk-go/internal/client/migrations"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/repositories/deliveries"
)

type Repositories struct {
	Deliveries deliveries.Repository
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens dsn with the pure-Go sqlite driver and migrates it.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, *Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	// a single connection keeps :memory: databases and pragmas consistent
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}

	return db, &Repositories{
		Deliveries: deliveries.NewSQLiteRepository(db),
	}, nil
}
