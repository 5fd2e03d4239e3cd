package handlers

import (
	"net/http"
)

func (a *App) Root(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"message": "Runpod Text Models Integration API",
		"version": a.Version,
		"endpoints": map[string]string{
			"generate": "/api/generate",
			"history":  "/api/history",
		},
	})
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "healthy"})
}
