package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/VectorPrivacy/vector-sdk-go/internal/client/cli"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/config"
	"github.com/VectorPrivacy/vector-sdk-go/internal/flagx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/logging"
)

var valuedFlags = []string{"-c", "-config", "-d", "-p", "-r", "-s", "-k", "-stall", "-db"}

func main() {
	cfg := config.LoadConfig()
	log := logging.NewTextLogger(os.Stderr, cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = app.Run(ctx, flagx.Positional(os.Args[1:], valuedFlags))
	_ = app.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
