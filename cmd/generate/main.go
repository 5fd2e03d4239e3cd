package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"postgen/internal/adapter/repo"
	"postgen/internal/domain"
	"postgen/internal/infra"
	"postgen/internal/infra/credentials"
	"postgen/internal/pipeline"
	"postgen/internal/providers/runpod"
	"postgen/internal/storage"
)

func main() {
	var (
		topicFlag  string
		promptFlag string
		saveFlag   bool
		outFlag    string
	)
	flag.StringVar(&topicFlag, "topic", "", "Short topic for the post")
	flag.StringVar(&promptFlag, "prompt", "", "Free-form description for the post")
	flag.BoolVar(&saveFlag, "save", false, "Persist the result to DATABASE_URL")
	flag.StringVar(&outFlag, "out", "", "Directory to write the post archive into")
	flag.Parse()

	kind, content, err := inputFromFlags(topicFlag, promptFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := infra.LoadEnv()
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel).With().Str("cmd", "generate").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var generations domain.GenerationRepository
	if saveFlag {
		if cfg.DatabaseURL == "" {
			fmt.Fprintln(os.Stderr, infra.ErrMissingDatabaseURL)
			os.Exit(1)
		}
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("db connection failed")
		}
		defer pool.Close()
		runner := infra.NewSQLRunner(pool, logger)
		if cfg.AutoMigrate {
			if err := infra.Migrate(ctx, runner); err != nil {
				logger.Fatal().Err(err).Msg("migrate failed")
			}
		}
		if _, err := credentials.ApplyRunpodFallback(ctx, cfg, credentials.NewStore(runner)); err != nil {
			logger.Warn().Err(err).Msg("failed to load runpod api key from store")
		}
		generations = repo.NewGenerationRepository(runner)
	}

	if err := infra.ValidateRunpod(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	httpClient := &http.Client{Timeout: cfg.RunpodSubmitTimeout + 5*time.Second}
	client, err := runpod.NewClient(runpod.OptionsFromConfig(cfg, httpClient, &logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure runpod client")
	}
	orchestrator, err := pipeline.New(client, pipeline.Options{Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load prompt catalog")
	}

	result, err := orchestrator.Run(ctx, kind, content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result.FinalArtifact)
	fmt.Println()
	printCosts(result.Costs)

	record := domain.NewGeneration(kind, content, *result)
	if generations != nil {
		if err := generations.Create(ctx, record); err != nil {
			logger.Fatal().Err(err).Msg("failed to save generation")
		}
		fmt.Printf("saved generation %s\n", record.ID)
	}
	if outFlag != "" {
		path, err := exportArchive(ctx, outFlag, record)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to export archive")
		}
		fmt.Printf("wrote %s\n", path)
	}
}

func exportArchive(ctx context.Context, dir string, record *domain.Generation) (string, error) {
	store, err := storage.NewFileStore(dir)
	if err != nil {
		return "", err
	}
	archive, err := storage.PostArchive(record)
	if err != nil {
		return "", err
	}
	return store.Write(ctx, storage.ArchiveName(record), archive)
}

func inputFromFlags(topic, prompt string) (domain.InputKind, string, error) {
	topic, prompt = strings.TrimSpace(topic), strings.TrimSpace(prompt)
	switch {
	case topic != "" && prompt != "":
		return "", "", fmt.Errorf("use either -topic or -prompt, not both")
	case topic != "":
		return domain.InputKindTopic, topic, nil
	case prompt != "":
		return domain.InputKindPrompt, prompt, nil
	default:
		return "", "", fmt.Errorf("one of -topic or -prompt is required")
	}
}

func printCosts(c domain.CostBreakdown) {
	fmt.Printf("cost (USD): hook %.5f, caption %.5f, cta %.5f, merge %.5f, total %.5f\n",
		c.Hook, c.Caption, c.Cta, c.Merge, c.Total)
}
