package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"postgen/internal/domain"
	"postgen/internal/infra"
	"postgen/internal/providers/runpod"
)

// Pipeline runs one full generation.
type Pipeline interface {
	Run(ctx context.Context, kind domain.InputKind, content string) (*domain.GenerationResult, error)
}

// Inference exposes the provider diagnostics used by the test routes.
type Inference interface {
	Probe(ctx context.Context) (string, error)
	Status(ctx context.Context, endpointID, jobID string) (runpod.Value, error)
}

// App carries the handler dependencies. ConfigErr holds the inference
// configuration problem found at startup; while set, Pipeline and Runpod are nil.
type App struct {
	Pipeline    Pipeline
	Runpod      Inference
	Generations domain.GenerationRepository
	Logger      *infra.Logger
	ConfigErr   error
	Version     string
}

// NewApp constructs the handler set.
func NewApp(pipeline Pipeline, inference Inference, generations domain.GenerationRepository, logger *infra.Logger, configErr error) *App {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &App{
		Pipeline:    pipeline,
		Runpod:      inference,
		Generations: generations,
		Logger:      logger,
		ConfigErr:   configErr,
		Version:     "1.0.0",
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error  errorBody `json:"error"`
	Detail string    `json:"detail"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, errorEnvelope{Error: errorBody{Code: errCode, Message: msg}, Detail: msg})
}
