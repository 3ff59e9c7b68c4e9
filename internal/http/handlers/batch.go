package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"mediagrab/internal/domain"
)

// RunBatch retrieves every submitted link in order and reports aggregate
// statistics plus staggered download actions for the client to trigger.
func (a *App) RunBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		a.error(w, r, http.StatusBadRequest, "no links submitted")
		return
	}

	job := a.Batch.Run(r.Context(), req.URLs)
	a.json(w, http.StatusOK, batchResponse(job))
}

func batchResponse(job *domain.BatchJob) map[string]any {
	results := make([]map[string]any, 0, len(job.Results))
	for _, res := range job.Results {
		item := map[string]any{
			"index": res.Index,
			"url":   res.SourceURL,
		}
		if res.Err != "" {
			item["error"] = res.Err
		}
		if res.Artifact != nil {
			item["storage_path"] = res.Artifact.StoragePath
			item["filename"] = res.Artifact.PublicFilename
			item["media_type"] = res.Artifact.MediaType
		}
		results = append(results, item)
	}

	downloads := make([]map[string]any, 0, len(job.Downloads))
	for _, action := range job.Downloads {
		downloads = append(downloads, map[string]any{
			"delay_ms": action.Delay / time.Millisecond,
			"url":      action.SourceURL,
			"filename": action.Filename,
		})
	}

	return map[string]any{
		"job_id":        job.ID,
		"success_count": job.SuccessCount,
		"failed_count":  job.FailedCount,
		"elapsed_ms":    job.Elapsed / time.Millisecond,
		"success_list":  job.SuccessList,
		"failed_list":   job.FailedList,
		"truncated":     job.Truncated,
		"results":       results,
		"downloads":     downloads,
	}
}
