package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"postgen/internal/adapter/repo"
	"postgen/internal/domain"
	"postgen/internal/http/handlers"
	httpapi "postgen/internal/http/httpapi"
	"postgen/internal/infra"
	"postgen/internal/infra/credentials"
	"postgen/internal/pipeline"
	"postgen/internal/providers/runpod"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	if cfg.AutoMigrate {
		if err := infra.Migrate(ctx, runner); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	if used, err := credentials.ApplyRunpodFallback(ctx, cfg, credentials.NewStore(runner)); err != nil {
		logger.Warn().Err(err).Msg("failed to load runpod api key from store")
	} else if used {
		logger.Info().Msg("using runpod api key from credential store")
	}

	// A configuration problem keeps the API up; generate reports it per request.
	var (
		pipe      handlers.Pipeline
		inference handlers.Inference
	)
	configErr := infra.ValidateRunpod(cfg)
	if configErr == nil {
		orchestrator, client, err := buildPipeline(cfg, &logger)
		if err != nil {
			configErr = err
		} else {
			pipe, inference = orchestrator, client
		}
	}
	if configErr != nil {
		logger.Error().Err(configErr).Msg("inference not configured")
	}

	app := handlers.NewApp(pipe, inference, repo.NewGenerationRepository(runner), &logger, configErr)
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		if err := server.Start(); err != nil {
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

func buildPipeline(cfg *infra.Config, logger *infra.Logger) (*pipeline.Orchestrator, *runpod.Client, error) {
	httpClient := &http.Client{Timeout: cfg.RunpodSubmitTimeout + 5*time.Second}
	client, err := runpod.NewClient(runpod.OptionsFromConfig(cfg, httpClient, logger))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}
	orchestrator, err := pipeline.New(client, pipeline.Options{Logger: logger})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}
	return orchestrator, client, nil
}
