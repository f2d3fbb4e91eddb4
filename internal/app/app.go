// Package app wires configuration, stores, providers, services, and the
// HTTP server into a running process.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/wordfall/wordfall/internal/adapter/jsonfile"
	"github.com/wordfall/wordfall/internal/adapter/postgres"
	pgwords "github.com/wordfall/wordfall/internal/adapter/postgres/words"
	"github.com/wordfall/wordfall/internal/adapter/provider/freedict"
	"github.com/wordfall/wordfall/internal/adapter/provider/llm"
	"github.com/wordfall/wordfall/internal/adapter/provider/mymemory"
	"github.com/wordfall/wordfall/internal/adapter/provider/wiktionary"
	"github.com/wordfall/wordfall/internal/config"
	"github.com/wordfall/wordfall/internal/service/lookup"
	"github.com/wordfall/wordfall/internal/service/review"
	"github.com/wordfall/wordfall/internal/service/translate"
	"github.com/wordfall/wordfall/internal/service/vocab"
	"github.com/wordfall/wordfall/internal/store"
	"github.com/wordfall/wordfall/internal/transport/middleware"
	"github.com/wordfall/wordfall/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, builds the
// store stack and services, starts the HTTP server, and blocks until ctx is
// canceled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.Bool("mirror_enabled", cfg.Mirror.Enabled()),
	)

	// Store stack: local file, optionally mirrored to Postgres.
	wordStore, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// Providers.
	primary := freedict.NewProviderWithURL(cfg.Providers.DictionaryURL, cfg.Providers.Timeout, logger)
	secondary := wiktionary.NewProviderWithURL(cfg.Providers.WiktionaryURL, cfg.Providers.Timeout, logger)
	bilingual := mymemory.NewProviderWithURL(cfg.Providers.TranslationURL, cfg.Providers.Timeout, logger)

	llmClient, err := llm.New(cfg.LLM.APIKey, cfg.LLM.Model, int(cfg.LLM.MaxTokens), cfg.LLM.Timeout, logger)
	if err != nil {
		// Without credentials the LLM tier is simply absent.
		logger.Warn("llm tier disabled", slog.String("reason", err.Error()))
		llmClient = nil
	}

	// Services.
	schedule := review.Schedule{
		Intervals:            cfg.SRS.Intervals,
		MasteredIntervalDays: cfg.SRS.MasteredIntervalDays,
	}

	var translateSvc *translate.Service
	if llmClient != nil {
		translateSvc = translate.New(bilingual, llmClient, logger)
	} else {
		translateSvc = translate.New(bilingual, nil, logger)
	}

	resolver := lookup.NewResolver(primary, secondary, translateSvc, logger)
	reviewSvc := review.New(wordStore, schedule, nil, logger)
	vocabSvc := vocab.New(wordStore, translateSvc, schedule, cfg.Providers.TTSURL, nil, logger)

	// Transport.
	mux := rest.NewRouter(
		rest.NewLookupHandler(resolver, logger),
		rest.NewWordsHandler(vocabSvc, logger),
		rest.NewReviewHandler(reviewSvc, nil, logger),
		rest.NewHealthHandler(wordStore, BuildVersion()),
	)

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)(mux)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}

// buildStore opens the local file store and, when a mirror DSN is configured,
// wraps it in the mirrored composition and runs the startup load order.
func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	local, err := jsonfile.Open(cfg.Store.Path, logger)
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Mirror.Enabled() {
		return local, func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Mirror)
	if err != nil {
		// A dead mirror must not keep the vocabulary offline.
		logger.Warn("mirror unavailable, running on local store only",
			slog.String("error", err.Error()),
		)
		return local, func() {}, nil
	}

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		logger.Warn("mirror migration failed, running on local store only",
			slog.String("error", err.Error()),
		)
		return local, func() {}, nil
	}

	mirrored := store.NewMirrored(local, pgwords.New(pool), cfg.Mirror.SyncTimeout, logger)

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := mirrored.Init(initCtx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return mirrored, pool.Close, nil
}
