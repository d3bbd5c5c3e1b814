package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/VectorPrivacy/vector-sdk-go/internal/server"
	"github.com/VectorPrivacy/vector-sdk-go/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	logger, _ := zap.NewProduction()
	if cfg.Debug {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init", zap.Error(err))
	}
	defer app.Close()

	if err := app.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
