// Package server wires the blob host: configuration, storage, the HTTP API
// and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/VectorPrivacy/vector-sdk-go/internal/logging"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/blobs"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/config"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/httpapi"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/limiter"
)

type App struct {
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	api    *httpapi.Server
}

// NewApp opens storage and builds the API. An empty DatabaseDSN keeps the
// blob index in memory.
func NewApp(ctx context.Context, c *config.Config, logger *zap.Logger) (*App, error) {
	store, err := blobs.NewDiskStore(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir init error: %w", err)
	}

	app := &App{config: c, logger: logger}

	var repo blobs.Repository
	if c.DatabaseDSN == "" {
		logger.Warn("no database configured, blob index is kept in memory")
		repo = blobs.NewMemoryRepository()
	} else {
		db, err := blobs.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		repo = blobs.NewPostgresRepository(db)
	}

	app.api = httpapi.New(httpapi.Options{
		Blobs:          blobs.NewService(repo, store, logging.NewZapLogger(logger.Named("blobs"))),
		Limiter:        limiter.NewMemory(c.RateLimit, c.RateWindow),
		Secret:         []byte(c.SecretKey),
		MaxUploadBytes: c.MaxUploadBytes,
		PublicURL:      c.PublicURL,
		Logger:         logger,
	})
	return app, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (app *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.EndpointAddr,
		Handler:           app.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("blob host listening",
			zap.String("addr", srv.Addr),
			zap.Bool("grants", app.config.SecretKey != ""),
			zap.Bool("postgres", app.db != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (app *App) Close() error {
	if app.db != nil {
		return app.db.Close()
	}
	return nil
}
