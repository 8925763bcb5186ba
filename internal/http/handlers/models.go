package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

var modelContentTypes = map[string]string{
	".stl":  "model/stl",
	".scad": "text/plain; charset=utf-8",
}

// ServeModel serves a compiled artifact or its source by file name. The store
// rejects traversal attempts; only known extensions are served.
func (a *App) ServeModel(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "filename required")
		return
	}
	contentType, ok := modelContentTypes[strings.ToLower(path.Ext(filename))]
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown file type")
		return
	}
	data, err := a.Store.Read(filename)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "file not found")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
