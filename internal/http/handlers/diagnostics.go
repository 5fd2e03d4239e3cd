package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TestRunpod sends a one-word prompt to the fast endpoint. Failures are
// reported in the body with a 200 status.
func (a *App) TestRunpod(w http.ResponseWriter, r *http.Request) {
	if a.ConfigErr != nil || a.Runpod == nil {
		a.json(w, http.StatusOK, map[string]string{"status": "error", "message": configMessage(a.ConfigErr)})
		return
	}
	text, err := a.Runpod.Probe(r.Context())
	if err != nil {
		a.Logger.Warn().Err(err).Msg("runpod probe failed")
		a.json(w, http.StatusOK, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	a.json(w, http.StatusOK, map[string]string{
		"status":        "success",
		"message":       "Runpod endpoint is working",
		"test_response": text,
	})
}

// CheckJob returns the raw provider status of a job.
func (a *App) CheckJob(w http.ResponseWriter, r *http.Request) {
	endpointID := chi.URLParam(r, "endpoint_id")
	jobID := chi.URLParam(r, "job_id")
	if a.ConfigErr != nil || a.Runpod == nil {
		a.json(w, http.StatusOK, map[string]string{"status": "error", "message": configMessage(a.ConfigErr)})
		return
	}
	doc, err := a.Runpod.Status(r.Context(), endpointID, jobID)
	if err != nil {
		a.json(w, http.StatusOK, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"status":     "success",
		"job_id":     jobID,
		"job_status": doc,
	})
}
