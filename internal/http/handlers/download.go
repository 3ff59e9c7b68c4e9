package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"mediagrab/internal/domain"
	"mediagrab/internal/fetch"
	"mediagrab/internal/middleware"
	"mediagrab/internal/service"
)

var featureDisabledMsg = map[string]string{
	"en": "Download endpoint is disabled in the configuration.",
	"zh": "配置文件中已禁用下载端点。",
}

// Download retrieves a single asset and serves it back as a file download.
// Query parameters: url (required), prefix, with_watermark, and an optional
// naming override for the public filename.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	sourceURL := r.URL.Query().Get("url")
	if sourceURL == "" {
		a.error(w, r, http.StatusBadRequest, "url parameter is required")
		return
	}

	opts := service.RetrieveOptions{
		SourceURL:     sourceURL,
		WithWatermark: boolParam(r, "with_watermark", false),
		Prefix:        boolParam(r, "prefix", true),
		Naming:        r.URL.Query().Get("naming"),
	}

	artifact, err := a.Retriever.Retrieve(r.Context(), opts, disconnectProbe(r))
	if err != nil {
		a.downloadError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+artifact.PublicFilename+`"`)
	w.Header().Set("Content-Type", artifact.MediaType)
	http.ServeFile(w, r, artifact.StoragePath)
}

func (a *App) downloadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrFeatureDisabled):
		a.error(w, r, http.StatusBadRequest, featureDisabledMsg[middleware.LocaleFromContext(r.Context())])
	case errors.Is(err, domain.ErrDeliveryAborted):
		// Requester is gone; nothing useful can be written back.
		a.Logger.Debug().Str("url", r.URL.Query().Get("url")).Msg("download aborted by client")
	default:
		a.error(w, r, http.StatusBadRequest, err.Error())
	}
}

// disconnectProbe adapts the request context into the cancellation probe the
// streaming fetch consults between chunks.
func disconnectProbe(r *http.Request) fetch.CancelProbe {
	ctx := r.Context()
	return func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}
}

func boolParam(r *http.Request, key string, fallback bool) bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
