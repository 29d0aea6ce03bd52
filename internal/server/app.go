// Package server initializes and runs the FileVault server: the ledger over
// PostgreSQL, the blob store backend, the key directory and the HTTP API,
// with graceful shutdown on OS signals.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentinelchain/filevault/internal/ledger"
	"github.com/sentinelchain/filevault/internal/logging"
	"github.com/sentinelchain/filevault/internal/server/auth"
	"github.com/sentinelchain/filevault/internal/server/config"
	"github.com/sentinelchain/filevault/internal/server/httpapi"
	"github.com/sentinelchain/filevault/internal/server/repositories/keys"
	"github.com/sentinelchain/filevault/internal/server/repositories/postgres"
	"github.com/sentinelchain/filevault/internal/storage"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	api    *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store := postgres.NewStore(db)
	if err := store.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	api := httpapi.New(
		ledger.NewService(store),
		blobs,
		keys.NewPostgresRepository(db),
		auth.NewChallengeStore(cfg.ChallengeValidityDuration),
		[]byte(cfg.SecretKey),
		cfg.AccessTokenValidityDuration,
		httpapi.WithLogger(logger),
	)

	return &App{config: cfg, logger: logger, api: api}, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.BlobBackend {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Config{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
		})
	case "fs":
		return storage.NewFSStore(cfg.BlobDir)
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the HTTP API until ctx is cancelled or a termination signal
// arrives, then drains in-flight requests.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr, "blob_backend", app.config.BlobBackend)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.api,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "server failed", "error", err)
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown error", "error", err)
		}
	}
}
