package domain

import "time"

// BatchItemResult records the outcome of one item within a batch run, in
// input order.
type BatchItemResult struct {
	Index     int
	SourceURL string
	Artifact  *StoredArtifact
	Err       string
}

// DownloadAction is a deferred single-item download trigger emitted for the
// presentation layer. Delay staggers near-simultaneous browser downloads; it
// is a scheduling hint, not a concurrency guarantee.
type DownloadAction struct {
	Delay     time.Duration
	SourceURL string
	Filename  string
}

// BatchJob aggregates the outcome of one batch retrieval run. It is mutated
// incrementally as items resolve and is final once Run returns.
type BatchJob struct {
	ID           string
	SuccessCount int
	FailedCount  int
	Elapsed      time.Duration
	SuccessList  []string
	FailedList   []string
	Results      []BatchItemResult
	Downloads    []DownloadAction
	// Truncated counts inputs dropped because the batch cap was exceeded.
	Truncated int
}
