package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mediagrab/internal/domain"
	"mediagrab/internal/infra"
)

// downloadDelayStep spaces the deferred download triggers so a browser does
// not reject near-simultaneous downloads.
const downloadDelayStep = 100 * time.Millisecond

// Batch runs many independent retrievals sequentially and aggregates their
// outcomes.
type Batch struct {
	retriever *Retriever
	cfg       *infra.Config
	logger    zerolog.Logger
}

// NewBatch wires the batch scheduler.
func NewBatch(retriever *Retriever, cfg *infra.Config, logger zerolog.Logger) *Batch {
	return &Batch{retriever: retriever, cfg: cfg, logger: logger}
}

// Run processes the given source URLs strictly in input order, one retrieval
// at a time. A failing item is recorded and the next item still proceeds.
// Inputs beyond the configured cap are dropped and reported via Truncated.
// For every retrieved video the job also carries a staggered DownloadAction
// the presentation layer can trigger.
func (b *Batch) Run(ctx context.Context, urls []string) *domain.BatchJob {
	job := &domain.BatchJob{ID: uuid.NewString()}

	if limit := b.cfg.MaxBatchURLs; limit > 0 && len(urls) > limit {
		job.Truncated = len(urls) - limit
		b.logger.Warn().
			Int("submitted", len(urls)).
			Int("max", limit).
			Msg("too many links submitted, extra links ignored")
		urls = urls[:limit]
	}

	start := time.Now()
	for i, u := range urls {
		res := domain.BatchItemResult{Index: i, SourceURL: u}
		artifact, err := b.retriever.Retrieve(ctx, RetrieveOptions{SourceURL: u, Prefix: true}, nil)
		if err != nil {
			res.Err = err.Error()
			job.FailedCount++
			job.FailedList = append(job.FailedList, u)
			job.Results = append(job.Results, res)
			b.logger.Error().Err(err).Str("url", u).Int("item", i+1).Msg("batch item failed, continuing")
			continue
		}
		res.Artifact = artifact
		job.SuccessCount++
		job.SuccessList = append(job.SuccessList, u)
		job.Results = append(job.Results, res)
		if artifact.MediaType == "video/mp4" {
			job.Downloads = append(job.Downloads, domain.DownloadAction{
				Delay:     time.Duration(len(job.Downloads)+1) * downloadDelayStep,
				SourceURL: u,
				Filename:  artifact.PublicFilename,
			})
		}
	}
	job.Elapsed = time.Since(start)

	b.logger.Info().
		Str("job_id", job.ID).
		Int("success", job.SuccessCount).
		Int("failed", job.FailedCount).
		Dur("elapsed", job.Elapsed).
		Msg("batch completed")
	return job
}
