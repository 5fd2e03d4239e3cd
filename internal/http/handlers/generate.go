package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"postgen/internal/domain"
	"postgen/internal/middleware"
	"postgen/internal/providers/runpod"
)

const maxGenerateBody = 1 << 20

type generateRequest struct {
	InputType    string `json:"input_type"`
	InputContent string `json:"input_content"`
}

type generationResponse struct {
	ID           string    `json:"id"`
	InputType    string    `json:"input_type"`
	InputContent string    `json:"input_content"`
	Hook         string    `json:"hook"`
	Caption      string    `json:"caption"`
	Cta          string    `json:"cta"`
	FinalOutput  string    `json:"final_output"`
	Cost         float64   `json:"cost"`
	HookCost     float64   `json:"hook_cost"`
	CaptionCost  float64   `json:"caption_cost"`
	CtaCost      float64   `json:"cta_cost"`
	MergeCost    float64   `json:"merge_cost"`
	Timestamp    time.Time `json:"timestamp"`
}

func toGenerationResponse(g *domain.Generation) generationResponse {
	return generationResponse{
		ID:           g.ID,
		InputType:    string(g.InputKind),
		InputContent: g.InputContent,
		Hook:         g.Hook,
		Caption:      g.Caption,
		Cta:          g.Cta,
		FinalOutput:  g.FinalOutput,
		Cost:         g.Cost,
		HookCost:     g.HookCost,
		CaptionCost:  g.CaptionCost,
		CtaCost:      g.CtaCost,
		MergeCost:    g.MergeCost,
		Timestamp:    g.CreatedAt,
	}
}

// Generate runs the pipeline for one input and persists the result.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGenerateBody))
	if err := dec.Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	kind, err := domain.ParseInputKind(req.InputType)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": "))
		return
	}
	content := strings.TrimSpace(norm.NFC.String(req.InputContent))
	if content == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "input_content is required")
		return
	}
	if a.ConfigErr != nil || a.Pipeline == nil {
		a.error(w, http.StatusBadRequest, "config_error", configMessage(a.ConfigErr))
		return
	}

	logger := a.Logger.With().
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Str("input_type", string(kind)).
		Logger()

	// Runs to completion even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	result, err := a.Pipeline.Run(ctx, kind, content)
	if err != nil {
		code, errCode, msg := generationFailure(err)
		logger.Error().Err(err).Int("status", code).Msg("generation failed")
		a.error(w, code, errCode, msg)
		return
	}

	record := domain.NewGeneration(kind, content, *result)
	if err := a.Generations.Create(ctx, record); err != nil {
		logger.Error().Err(err).Msg("persist generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "Generation failed: could not save result: "+err.Error())
		return
	}
	logger.Info().Str("generation_id", record.ID).Float64("cost_usd", record.Cost).Msg("generation stored")
	a.json(w, http.StatusOK, toGenerationResponse(record))
}

func configMessage(err error) string {
	if err == nil {
		return "Configuration error: inference client is not configured"
	}
	return "Configuration error: " + strings.TrimPrefix(err.Error(), domain.ErrConfig.Error()+": ")
}

// generationFailure maps a pipeline error to a status, code and user-facing message.
func generationFailure(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request", strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
	case errors.Is(err, domain.ErrConfig):
		return http.StatusBadRequest, "config_error", configMessage(err)
	}

	msg := err.Error()
	var rerr *runpod.Error
	switch {
	case errors.As(err, &rerr):
		if rerr.Kind == runpod.KindProviderRejected || rerr.Kind == runpod.KindProviderUnreachable {
			msg = endpointMessage(msg)
		}
	case errors.Is(err, runpod.ErrMissingAPIKey), errors.Is(err, runpod.ErrMissingEndpoint),
		strings.Contains(strings.ToUpper(msg), "RUNPOD"), strings.Contains(strings.ToUpper(msg), "API_KEY"):
		msg = "Runpod configuration error: " + msg + ". Please check your .env file."
	case strings.Contains(strings.ToLower(msg), "endpoint"):
		msg = endpointMessage(msg)
	}
	return http.StatusInternalServerError, "generation_failed", "Generation failed: " + msg
}

func endpointMessage(msg string) string {
	return "Runpod endpoint error: " + msg + ". Please verify your endpoint IDs are correct."
}
