package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/decartgilad/decart-video-processor/internal/batch"
	"github.com/decartgilad/decart-video-processor/internal/infra"
	"github.com/decartgilad/decart-video-processor/internal/storage"
)

// App holds the collaborators shared by every handler.
type App struct {
	Runner         *batch.Runner
	Archive        *storage.Archive
	Previews       *storage.FileStore
	MaxUploadBytes int64
	Logger         *infra.Logger
}

func NewApp(runner *batch.Runner, archive *storage.Archive, previews *storage.FileStore, maxUploadBytes int64, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{
		Runner:         runner,
		Archive:        archive,
		Previews:       previews,
		MaxUploadBytes: maxUploadBytes,
		Logger:         logger,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"success": false, "error": message})
}
