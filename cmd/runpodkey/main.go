package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"postgen/internal/infra"
	"postgen/internal/infra/credentials"
)

func main() {
	var (
		keyFlag    string
		deleteFlag bool
	)
	flag.StringVar(&keyFlag, "key", "", "Runpod API key (fallbacks to RUNPOD_API_KEY)")
	flag.BoolVar(&deleteFlag, "delete", false, "Remove the stored key instead of setting it")
	flag.Parse()

	_ = godotenv.Load()

	key := strings.TrimSpace(keyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv("RUNPOD_API_KEY"))
	}
	if key == "" && !deleteFlag {
		fmt.Fprintln(os.Stderr, "RUNPOD API key is required via -key or environment")
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", os.Getenv("LOG_LEVEL")).With().Str("cmd", "runpodkey").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	if err := infra.Migrate(ctx, runner); err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare schema: %v\n", err)
		os.Exit(1)
	}
	store := credentials.NewStore(runner)

	if deleteFlag {
		existed, err := store.DeleteRunpodAPIKey(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to delete runpod api key: %v\n", err)
			os.Exit(1)
		}
		if !existed {
			fmt.Println("no RUNPOD API key was stored")
			return
		}
		fmt.Println("RUNPOD API key deleted")
		return
	}

	endpoints := nonEmpty(os.Getenv("RUNPOD_PHI2_ENDPOINT_ID"), os.Getenv("RUNPOD_MISTRAL_ENDPOINT_ID"))
	if err := store.SetRunpodAPIKey(ctx, key, endpoints...); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist runpod api key: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("RUNPOD API key stored successfully")
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
