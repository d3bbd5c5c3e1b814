package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/VectorPrivacy/vector-sdk-go/internal/server/config"
)

func TestApp_RunStopsOnCancel(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddr = "127.0.0.1:0"
	c.DataDir = t.TempDir()

	app, err := NewApp(context.Background(), c, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, app.Run(ctx))
}
