package domain

import "context"

// Resolver turns a shared link or page URL into a structured asset
// description. Implementations call an external metadata service; failures
// are surfaced verbatim to the caller and never retried by the pipeline.
type Resolver interface {
	Resolve(ctx context.Context, sourceURL string) (*AssetDescriptor, error)
}
