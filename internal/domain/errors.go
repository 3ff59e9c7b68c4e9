package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFeatureDisabled short-circuits a retrieval before any resolution
	// attempt when the download feature is switched off in configuration.
	ErrFeatureDisabled = errors.New("download feature is disabled")

	// ErrMissingSource reports that the requested watermark rendition has no
	// source URL.
	ErrMissingSource = errors.New("requested source variant is unavailable")

	// ErrDeliveryAborted reports that the requester disconnected while a video
	// was being streamed to disk. The partial file has been removed.
	ErrDeliveryAborted = errors.New("delivery aborted by client disconnect")
)

// UpstreamHTTPError reports a non-2xx response from a media host. It is
// terminal for the retrieval and never retried here.
type UpstreamHTTPError struct {
	URL    string
	Status int
}

func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("upstream returned %d for %s", e.Status, e.URL)
}
