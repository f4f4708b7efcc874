// Package app wires configuration, storage, the query core and the
// HTTP transport into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mirrosha26/CoreBackend/internal/config"
	"github.com/mirrosha26/CoreBackend/internal/loader"
	"github.com/mirrosha26/CoreBackend/internal/query/cache"
	"github.com/mirrosha26/CoreBackend/internal/query/complexity"
	"github.com/mirrosha26/CoreBackend/internal/query/executor"
	"github.com/mirrosha26/CoreBackend/internal/service/library"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/card"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/category"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/folder"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/note"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/participant"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/signal"
	"github.com/mirrosha26/CoreBackend/internal/store/postgres/teammember"
	"github.com/mirrosha26/CoreBackend/internal/transport/graphql"
	"github.com/mirrosha26/CoreBackend/internal/transport/middleware"
	"github.com/mirrosha26/CoreBackend/internal/transport/rest"
)

// Run is the application entry point. It blocks until the context is
// cancelled, then shuts the server down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Query core.
	analyzer := complexity.New(
		cfg.Query.MaxComplexity,
		cfg.Query.MaxDepth,
		cfg.Query.IntrospectionComplexity,
	)
	coordinator := cache.New(cfg.Cache, logger)

	cardRepo := card.New(pool)
	signalRepo := signal.New(pool)
	participantRepo := participant.New(pool)
	noteRepo := note.New(pool)
	folderRepo := folder.New(pool)

	repos := &loader.Repos{
		Signal:      signalRepo,
		Participant: participantRepo,
		Category:    category.New(pool),
		TeamMember:  teammember.New(pool),
		Note:        noteRepo,
	}

	exec := executor.WithMonitoring(
		executor.New(cfg.Query, analyzer, coordinator, cardRepo, repos, logger),
		cfg.Query,
		logger,
	)

	// Write path.
	txManager := postgres.NewTxManager(pool)
	libraryService := library.New(noteRepo, folderRepo, participantRepo, txManager, coordinator, logger)

	// HTTP transport.
	gqlHandler := graphql.NewHandler(exec, libraryService, participantRepo, logger)
	health := rest.NewHealthHandler(pool, coordinator, BuildVersion())

	mux := http.NewServeMux()
	mux.Handle("/graphql", gqlHandler)
	mux.HandleFunc("/health", health.Health)
	mux.HandleFunc("/health/live", health.Live)
	mux.HandleFunc("/health/ready", health.Ready)
	mux.HandleFunc("/debug/cache", health.CacheStats)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Identity,
		middleware.Logger(logger),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      chain(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	return server.Shutdown(shutdownCtx)
}
