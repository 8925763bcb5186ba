package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harshilgor/prompt-to-3d/internal/domain"
)

// JobStatus returns the recorded history row for a finished job. Without a
// configured database every lookup is a 404.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	if a.Jobs == nil {
		a.error(w, http.StatusNotFound, "not_found", "job history is not enabled")
		return
	}
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":         job.ID,
		"status":     job.Status,
		"strategy":   job.Strategy,
		"model":      job.Model,
		"prompt":     job.Prompt,
		"error":      job.Error,
		"file_size":  job.FileSize,
		"created_at": job.CreatedAt,
		"updated_at": job.UpdatedAt,
	})
}
