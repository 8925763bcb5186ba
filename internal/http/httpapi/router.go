package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/harshilgor/prompt-to-3d/internal/http/handlers"
	"github.com/harshilgor/prompt-to-3d/internal/middleware"
)

// NewRouter assembles the service routes and middleware stack.
func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
	)

	r.Get("/api/health", app.Health)
	r.Post("/api/generate", app.Generate)
	r.Get("/api/jobs/{job_id}", app.JobStatus)
	r.Get("/models/{filename}", app.ServeModel)

	return r
}
