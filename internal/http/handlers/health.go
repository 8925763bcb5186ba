package handlers

import (
	"net/http"
)

// Health reports readiness diagnostics: whether the generation credential is
// configured and whether the OpenSCAD binary answers a version probe. It is
// purely informational and not part of the pipeline contract.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":            "ok",
		"gemini_configured": a.Config.GeminiConfigured(),
	}
	version, err := a.Compiler.Version(r.Context())
	if err != nil {
		body["openscad_available"] = false
	} else {
		body["openscad_available"] = true
		body["openscad_version"] = version
	}
	a.json(w, http.StatusOK, body)
}
