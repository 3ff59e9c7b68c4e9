// Package service coordinates the retrieval pipeline: resolve, classify,
// cache check, fetch, package, deliver.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"mediagrab/internal/domain"
	"mediagrab/internal/fetch"
	"mediagrab/internal/infra"
	"mediagrab/internal/storage"
	"mediagrab/pkg/filename"
	"mediagrab/pkg/zip"
)

// RetrieveOptions describe one retrieval request.
type RetrieveOptions struct {
	SourceURL     string
	WithWatermark bool
	// Naming optionally overrides the public display name. It is sanitized
	// before use and never changes the storage filename.
	Naming string
	// Prefix applies the configured filename prefix to storage names.
	Prefix bool
}

// Retriever drives single-asset retrievals. It owns the lifetime of any
// partially written file while a stream is in flight.
type Retriever struct {
	resolver domain.Resolver
	store    *storage.FileStore
	fetcher  *fetch.Client
	cfg      *infra.Config
	logger   zerolog.Logger

	// inflight collapses concurrent requests for the same cache key into a
	// single download.
	inflight singleflight.Group
}

// NewRetriever wires the retrieval orchestrator with its collaborators.
func NewRetriever(resolver domain.Resolver, store *storage.FileStore, fetcher *fetch.Client, cfg *infra.Config, logger zerolog.Logger) *Retriever {
	return &Retriever{
		resolver: resolver,
		store:    store,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// Retrieve resolves the source, fetches the asset unless it is already
// cached, and returns the stored artifact. probe reports whether the original
// requester is still connected; it is consulted only while streaming video
// and may be nil.
func (r *Retriever) Retrieve(ctx context.Context, opts RetrieveOptions, probe fetch.CancelProbe) (*domain.StoredArtifact, error) {
	if !r.cfg.DownloadEnabled {
		return nil, domain.ErrFeatureDisabled
	}

	desc, err := r.resolver.Resolve(ctx, opts.SourceURL)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", opts.SourceURL, err)
	}

	prefix := ""
	if opts.Prefix {
		prefix = r.cfg.DownloadFilePrefix
	}
	dir, err := r.store.ArtifactDir(desc.Platform, desc.Kind)
	if err != nil {
		return nil, err
	}

	switch desc.Kind {
	case domain.AssetKindVideo:
		return r.retrieveVideo(ctx, desc, dir, prefix, opts, probe)
	case domain.AssetKindImage:
		return r.retrieveImageSet(ctx, desc, dir, prefix, opts)
	default:
		return nil, fmt.Errorf("unsupported asset kind %q", desc.Kind)
	}
}

func (r *Retriever) retrieveVideo(ctx context.Context, desc *domain.AssetDescriptor, dir, prefix string, opts RetrieveOptions, probe fetch.CancelProbe) (*domain.StoredArtifact, error) {
	storageName := storage.VideoName(prefix, desc.Platform, desc.AssetID, opts.WithWatermark)
	path := filepath.Join(dir, storageName)
	artifact := &domain.StoredArtifact{
		StoragePath:    path,
		PublicFilename: publicName(opts.Naming, storageName, "mp4"),
		MediaType:      "video/mp4",
	}

	if r.store.Exists(path) {
		r.logger.Debug().Str("path", path).Msg("serving cached video")
		return artifact, nil
	}

	srcURL := desc.Video.URL(opts.WithWatermark)
	if srcURL == "" {
		return nil, fmt.Errorf("%s %s: %w", desc.Platform, desc.AssetID, domain.ErrMissingSource)
	}

	v, err, _ := r.inflight.Do(path, func() (any, error) {
		if r.store.Exists(path) {
			return true, nil
		}
		return r.fetcher.Stream(ctx, srcURL, probe, path, nil)
	})
	if err != nil {
		return nil, err
	}
	if done, _ := v.(bool); !done {
		r.logger.Info().Str("path", path).Msg("client disconnected, partial video removed")
		return nil, domain.ErrDeliveryAborted
	}
	r.logger.Info().Str("path", path).Msg("video stored")
	return artifact, nil
}

func (r *Retriever) retrieveImageSet(ctx context.Context, desc *domain.AssetDescriptor, dir, prefix string, opts RetrieveOptions) (*domain.StoredArtifact, error) {
	archiveName := storage.ArchiveName(prefix, desc.Platform, desc.AssetID, opts.WithWatermark)
	archivePath := filepath.Join(dir, archiveName)
	artifact := &domain.StoredArtifact{
		StoragePath:    archivePath,
		PublicFilename: publicName(opts.Naming, archiveName, "zip"),
		MediaType:      "application/zip",
	}

	if r.store.Exists(archivePath) {
		r.logger.Debug().Str("path", archivePath).Msg("serving cached archive")
		return artifact, nil
	}

	urls := desc.Images.URLs(opts.WithWatermark)
	if len(urls) == 0 {
		return nil, fmt.Errorf("%s %s: %w", desc.Platform, desc.AssetID, domain.ErrMissingSource)
	}

	_, err, _ := r.inflight.Do(archivePath, func() (any, error) {
		if r.store.Exists(archivePath) {
			return nil, nil
		}
		// Images are fetched strictly in source order so the archive keeps
		// the positional correspondence between renditions. Any single
		// failure aborts the whole set; no partial archive is produced.
		paths := make([]string, 0, len(urls))
		for i, u := range urls {
			resp, err := r.fetcher.Get(ctx, u, nil)
			if err != nil {
				return nil, fmt.Errorf("image %d of %d: %w", i+1, len(urls), err)
			}
			ext := extensionFromContentType(resp.Header.Get("Content-Type"))
			name := storage.ImageName(prefix, desc.Platform, desc.AssetID, i+1, opts.WithWatermark, ext)
			p := filepath.Join(dir, name)
			if err := os.WriteFile(p, resp.Body, 0o644); err != nil {
				return nil, fmt.Errorf("write image %d: %w", i+1, err)
			}
			paths = append(paths, p)
		}
		return nil, zip.ArchiveFiles(paths, archivePath)
	})
	if err != nil {
		return nil, err
	}
	r.logger.Info().Str("path", archivePath).Int("images", len(urls)).Msg("image archive stored")
	return artifact, nil
}

// publicName picks the display filename: the sanitized custom name when one
// was supplied, the storage name otherwise.
func publicName(naming, storageName, ext string) string {
	if naming == "" {
		return storageName
	}
	return filename.Sanitize(naming) + "." + ext
}

// extensionFromContentType derives a file extension from the MIME subtype,
// e.g. "image/jpeg" yields "jpeg".
func extensionFromContentType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if i := strings.Index(contentType, "/"); i >= 0 && i < len(contentType)-1 {
		return contentType[i+1:]
	}
	return "bin"
}
