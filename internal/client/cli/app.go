// Package cli implements the interactive FileVault client: wallet
// management, encrypted uploads and downloads, sharing and revocation, with
// a local metadata cache.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"log"
	"os"

	"github.com/sentinelchain/filevault/internal/client/api"
	"github.com/sentinelchain/filevault/internal/client/cache"
	"github.com/sentinelchain/filevault/internal/client/config"
	"github.com/sentinelchain/filevault/internal/client/coordinator"
	"github.com/sentinelchain/filevault/internal/identity"
)

type App struct {
	config *config.Config
	client *api.HTTPClient
	coord  *coordinator.Coordinator
	wallet *identity.Wallet
	cache  cache.Repository
	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := cache.InitDatabase(ctx, c.CacheDSN)
	if err != nil {
		log.Printf("error initializing cache database: %s", err.Error())
		return nil, err
	}

	return &App{
		config: c,
		client: api.NewHTTPClient(c.ServerEndpointAddr),
		cache:  cache.NewSQLiteRepository(db),
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.wallet != nil
}
