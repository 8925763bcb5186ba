package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/harshilgor/prompt-to-3d/internal/adapter/repo"
	"github.com/harshilgor/prompt-to-3d/internal/http/handlers"
	httpapi "github.com/harshilgor/prompt-to-3d/internal/http/httpapi"
	"github.com/harshilgor/prompt-to-3d/internal/infra"
	"github.com/harshilgor/prompt-to-3d/internal/openscad"
	"github.com/harshilgor/prompt-to-3d/internal/pipeline"
	"github.com/harshilgor/prompt-to-3d/internal/providers/llm"
	"github.com/harshilgor/prompt-to-3d/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	// Job history is optional; without DATABASE_URL the service runs
	// filesystem-only.
	var jobs *repo.JobRepositoryPG
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()
		jobs = repo.NewJobRepository(infra.NewSQLRunner(pool, logger))
	} else {
		logger.Warn().Msg("DATABASE_URL not set, job history disabled")
	}

	if !cfg.GeminiConfigured() {
		logger.Warn().Msg("GEMINI_API_KEY not set, only the template path will work")
	}

	client := llm.NewClient(llm.Options{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
	})
	selector := llm.NewSelector(client, cfg.GeminiModels, cfg.GenAttemptTimeout, logger)
	compiler := openscad.New(cfg.OpenSCADBin, cfg.CompileTimeout)

	var recorder pipeline.Recorder
	if jobs != nil {
		recorder = jobs
	}
	orchestrator := pipeline.New(selector, compiler, store, recorder, logger, cfg.GeminiConfigured())

	app := &handlers.App{
		Config:   cfg,
		Logger:   logger,
		Pipeline: orchestrator,
		Store:    store,
		Compiler: compiler,
		Jobs:     jobs,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
