package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"mediagrab/internal/infra"
	"mediagrab/internal/service"
)

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	Cfg       *infra.Config
	Logger    zerolog.Logger
	Retriever *service.Retriever
	Batch     *service.Batch
}

// NewApp builds the handler container.
func NewApp(cfg *infra.Config, logger zerolog.Logger, retriever *service.Retriever, batch *service.Batch) *App {
	return &App{Cfg: cfg, Logger: logger, Retriever: retriever, Batch: batch}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes a structured failure: code, message and the request context
// that triggered it, so batch summaries can list exactly which inputs failed
// and why.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, message string) {
	params := map[string]string{}
	for key := range r.URL.Query() {
		params[key] = r.URL.Query().Get(key)
	}
	a.json(w, code, map[string]any{
		"code":    code,
		"message": message,
		"router":  r.URL.Path,
		"params":  params,
	})
}
