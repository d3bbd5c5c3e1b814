package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"

	"github.com/VectorPrivacy/vector-sdk-go/internal/attachment"
	"github.com/VectorPrivacy/vector-sdk-go/internal/auth"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/config"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/repositories/deliveries"
	"github.com/VectorPrivacy/vector-sdk-go/internal/client/storage"
	"github.com/VectorPrivacy/vector-sdk-go/internal/destination"
	"github.com/VectorPrivacy/vector-sdk-go/internal/failover"
	"github.com/VectorPrivacy/vector-sdk-go/internal/logging"
	"github.com/VectorPrivacy/vector-sdk-go/internal/netx"
	"github.com/VectorPrivacy/vector-sdk-go/internal/retryx"
)

type App struct {
	config  *config.Config
	service *attachment.Service
	journal deliveries.Repository
	auth    auth.Authorizer
	log     logging.Logger

	reader *bufio.Reader
	out    io.Writer

	client *netx.Client
	db     *sql.DB
}

// NewApp builds the upload pipeline and opens the delivery journal.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}

	client, err := netx.NewClient(c.Network())
	if err != nil {
		return nil, err
	}

	db, repos, err := storage.InitDatabase(ctx, c.JournalPath)
	if err != nil {
		log.Error(ctx, "error initializing journal", "path", c.JournalPath, "error", err)
		return nil, err
	}

	resolver := &destination.Resolver{
		S3:    destination.NewS3Presigner(c.S3),
		NIP96: destination.NewNIP96Discovery(client),
	}
	orch := failover.New(retryx.NewController(client, log), resolver, log)

	return &App{
		config:  c,
		service: attachment.NewService(orch, client, c.Retry(), log),
		journal: repos.Deliveries,
		auth:    c.Authorizer(),
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		client:  client,
		db:      db,
	}, nil
}

// Close releases idle connections and the journal.
func (a *App) Close() error {
	if a.client != nil {
		a.client.CloseIdleConnections()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Run executes args as a single command, or starts the REPL when args is
// empty.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if err := dispatch(ctx, a, args); err != nil && !errors.Is(err, errQuit) {
			return err
		}
		return nil
	}

	printlnFn("Welcome to vector CLI (type 'help' for commands)")
	runREPL(ctx, a, bufio.NewScanner(a.reader))
	return nil
}
