package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/accelefreight/af-server/internal/adapters/ai"
	identityadapter "github.com/accelefreight/af-server/internal/adapters/identity"
	"github.com/accelefreight/af-server/internal/adapters/httpapi"
	"github.com/accelefreight/af-server/internal/adapters/persistence"
	"github.com/accelefreight/af-server/internal/adapters/storage"
	"github.com/accelefreight/af-server/internal/application/shipments"
	"github.com/accelefreight/af-server/internal/domain/shared"
	"github.com/accelefreight/af-server/internal/infrastructure/config"
	"github.com/accelefreight/af-server/internal/infrastructure/database"
	"github.com/accelefreight/af-server/internal/infrastructure/logging"
)

func main() {
	cfg := config.MustLoadConfig("")

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	store := persistence.NewStore(db)

	blobs, err := storage.NewS3Store(ctx, &cfg.Storage)
	if err != nil {
		return err
	}

	extractor := ai.NewAnthropicExtractor(&cfg.AI)
	verifier := identityadapter.NewHTTPVerifier(&cfg.Auth)
	auth := identityadapter.NewAuthenticator(verifier, store.Users)

	svc := shipments.NewService(store, blobs, extractor, &shared.RealClock{}, logger, shipments.Config{
		Environment:  cfg.Environment,
		SignedURLTTL: cfg.Storage.SignedURLTTL,
	})

	server := httpapi.NewServer(svc, auth, logger, &cfg.Server)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("address", cfg.Server.Address),
			zap.String("environment", cfg.Environment))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
