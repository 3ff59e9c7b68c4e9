// Package storage implements the on-disk asset cache. Artifact names are
// deterministic functions of the cache key (platform, kind, asset id,
// watermark flag), so repeated requests for the same asset resolve to the
// same file and are served without another fetch.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediagrab/internal/domain"
)

// FileStore persists retrieved artifacts on the local filesystem under a
// single root directory, one subdirectory per platform and asset kind.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	return s.basePath
}

// ArtifactDir ensures and returns the storage directory for a platform/kind
// pair, e.g. "tiktok_video".
func (s *FileStore) ArtifactDir(platform string, kind domain.AssetKind) (string, error) {
	dir := filepath.Join(s.basePath, fmt.Sprintf("%s_%s", platform, kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory %s: %w", dir, err)
	}
	return dir, nil
}

// Exists reports whether a completed artifact is already cached at path.
// The store never deletes completed artifacts; entries are permanent until
// purged externally.
func (s *FileStore) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// VideoName builds the deterministic storage filename for a video rendition.
func VideoName(prefix, platform, assetID string, watermark bool) string {
	return artifactName(prefix, platform, assetID, "", watermark, "mp4")
}

// ArchiveName builds the deterministic storage filename for an image-set
// archive.
func ArchiveName(prefix, platform, assetID string, watermark bool) string {
	return artifactName(prefix, platform, assetID, "_images", watermark, "zip")
}

// ImageName builds the storage filename for the idx-th image (1-based) of an
// image set. The extension comes from the upstream content type.
func ImageName(prefix, platform, assetID string, idx int, watermark bool, ext string) string {
	return artifactName(prefix, platform, assetID, fmt.Sprintf("_%d", idx), watermark, ext)
}

func artifactName(prefix, platform, assetID, tag string, watermark bool, ext string) string {
	base := fmt.Sprintf("%s%s_%s%s", prefix, platform, assetID, tag)
	if watermark {
		base += "_watermark"
	}
	return base + "." + ext
}
