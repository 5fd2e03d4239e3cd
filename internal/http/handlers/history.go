package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"postgen/internal/adapter/repo"
	"postgen/internal/domain"
	"postgen/internal/storage"
)

const defaultPageSize = 10

type historyItem struct {
	ID           string    `json:"id"`
	InputType    string    `json:"input_type"`
	InputContent string    `json:"input_content"`
	FinalOutput  string    `json:"final_output"`
	Cost         float64   `json:"cost"`
	Timestamp    time.Time `json:"timestamp"`
}

type historyResponse struct {
	Items    []historyItem `json:"items"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func (a *App) HistoryList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil || page < 1 {
		a.error(w, http.StatusBadRequest, "bad_request", "page must be an integer >= 1")
		return
	}
	pageSize, err := queryInt(r, "page_size", defaultPageSize)
	if err != nil || pageSize < 1 || pageSize > repo.MaxPageSize {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("page_size must be an integer between 1 and %d", repo.MaxPageSize))
		return
	}
	summaries, total, err := a.Generations.List(r.Context(), page, pageSize)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list history failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to retrieve history: "+err.Error())
		return
	}
	items := make([]historyItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, historyItem{
			ID:           s.ID,
			InputType:    string(s.InputKind),
			InputContent: s.InputContent,
			FinalOutput:  s.FinalOutput,
			Cost:         s.Cost,
			Timestamp:    s.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, historyResponse{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (a *App) HistoryGet(w http.ResponseWriter, r *http.Request) {
	g, ok := a.loadGeneration(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, toGenerationResponse(g))
}

func (a *App) HistoryDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Generations.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Generation not found")
			return
		}
		a.Logger.Error().Err(err).Str("generation_id", id).Msg("delete generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "Failed to delete generation: "+err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "Generation deleted successfully"})
}

// HistoryDownload returns the stored post as a zip of plain text files.
func (a *App) HistoryDownload(w http.ResponseWriter, r *http.Request) {
	g, ok := a.loadGeneration(w, r)
	if !ok {
		return
	}
	archive, err := storage.PostArchive(g)
	if err != nil {
		a.Logger.Error().Err(err).Str("generation_id", g.ID).Msg("build archive failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", storage.ArchiveName(g)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) loadGeneration(w http.ResponseWriter, r *http.Request) (*domain.Generation, bool) {
	id := chi.URLParam(r, "id")
	g, err := a.Generations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "Generation not found")
			return nil, false
		}
		a.Logger.Error().Err(err).Str("generation_id", id).Msg("load generation failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load generation")
		return nil, false
	}
	return g, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
