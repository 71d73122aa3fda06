package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/config"
	"github.com/dmitrijs2005/filevault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/filevault/internal/client/services"
	"github.com/dmitrijs2005/filevault/internal/logging"
)

// App wires the client core to the terminal.
type App struct {
	config   *config.Config
	logger   logging.Logger
	sessions *services.SessionManager
	files    *services.FileRepository
	uploads  *services.Uploader
	share    *services.ShareResolver
	reader   *bufio.Reader
	out      io.Writer
	closers  []io.Closer
}

// NewApp opens the local database, connects to the server and builds the
// services on top of them.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init local database: %w", err)
	}

	api, err := client.NewGRPCClient(client.Options{
		Endpoint:       c.ServerEndpointAddr,
		PublicEndpoint: c.PublicEndpoint,
		ChunkSize:      c.ChunkSize,
		RequestTimeout: c.RequestTimeout,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", c.ServerEndpointAddr, err)
	}

	tokens := services.NewMetadataTokenStore(metadata.NewSQLiteRepository(db))
	a := newApp(c, logger, api, api, tokens, os.Stdin, os.Stdout)
	a.closers = []io.Closer{api, dbCloser{db}}
	return a, nil
}

type dbCloser struct{ db *sql.DB }

func (d dbCloser) Close() error { return d.db.Close() }

func newApp(c *config.Config, logger logging.Logger, identity client.IdentityService, storage client.ObjectStorage, tokens services.TokenStore, in io.Reader, out io.Writer) *App {
	state := services.NewState()
	files := services.NewFileRepository(storage, state, c.BucketID, logger)
	return &App{
		config:   c,
		logger:   logger,
		sessions: services.NewSessionManager(identity, state, tokens, logger),
		files:    files,
		uploads:  services.NewUploader(storage, state, files, c.BucketID, logger),
		share:    services.NewShareResolver(storage, c.ShareOrigin, c.BucketID),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run restores a previous session and then serves commands until exit.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	fmt.Fprintln(a.out, "Welcome to FileVault (type 'help' for commands)")
	if err := a.probe(ctx); err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))
	return nil
}

func (a *App) probe(ctx context.Context) error {
	s, err := a.sessions.Probe(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			return fmt.Errorf("server unreachable, continuing signed out: %w", err)
		}
		return err
	}
	if s != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", s.Email)
	}
	return nil
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn(context.Background(), "close", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current() != nil
}

func (a *App) status() string {
	if s := a.sessions.Current(); s != nil {
		return s.Email
	}
	return "signed out"
}
