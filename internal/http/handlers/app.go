// Package handlers exposes the HTTP surface of the generation service.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/harshilgor/prompt-to-3d/internal/adapter/repo"
	"github.com/harshilgor/prompt-to-3d/internal/domain"
	"github.com/harshilgor/prompt-to-3d/internal/infra"
	"github.com/harshilgor/prompt-to-3d/internal/storage"
)

// PipelineRunner executes one generation request to a terminal state.
// Implemented by pipeline.Orchestrator.
type PipelineRunner interface {
	Run(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

// VersionProber reports the external compiler's version, used by the health
// surface. Implemented by openscad.Compiler.
type VersionProber interface {
	Version(ctx context.Context) (string, error)
}

// App is the handler container. Jobs is nil when no database is configured.
type App struct {
	Config   *infra.Config
	Logger   infra.Logger
	Pipeline PipelineRunner
	Store    *storage.FileStore
	Compiler VersionProber
	Jobs     *repo.JobRepositoryPG
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"code": errCode, "error": message})
}
