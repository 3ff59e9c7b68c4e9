package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"mediagrab/internal/domain"
)

const streamChunkSize = 64 * 1024

// Stream issues a GET and copies the body to path chunk by chunk, never
// buffering the whole payload. Before each chunk is written the probe is
// consulted; once it reports cancellation the partial file is removed and
// Stream returns false. When the upstream status is an error no file is
// created. On return the file at path is either complete or absent, never
// truncated.
func (c *Client) Stream(ctx context.Context, url string, probe CancelProbe, path string, headers http.Header) (bool, error) {
	resp, err := c.do(ctx, url, headers)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return false, &domain.UpstreamHTTPError{URL: url, Status: resp.StatusCode}
	}

	out, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("fetch: create %s: %w", path, err)
	}

	discard := func() {
		_ = out.Close()
		_ = os.Remove(path)
	}

	buf := make([]byte, streamChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if probe != nil && probe() {
				discard()
				return false, nil
			}
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				discard()
				return false, fmt.Errorf("fetch: write %s: %w", path, writeErr)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			discard()
			return false, fmt.Errorf("fetch: read stream from %s: %w", url, readErr)
		}
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return false, fmt.Errorf("fetch: close %s: %w", path, err)
	}
	return true, nil
}
