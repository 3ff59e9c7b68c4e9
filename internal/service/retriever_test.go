package service

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"mediagrab/internal/domain"
	"mediagrab/internal/fetch"
	"mediagrab/internal/infra"
	"mediagrab/internal/storage"
)

type fakeResolver struct {
	descriptors map[string]*domain.AssetDescriptor
	err         error
}

func (f *fakeResolver) Resolve(ctx context.Context, sourceURL string) (*domain.AssetDescriptor, error) {
	if f.err != nil {
		return nil, f.err
	}
	desc, ok := f.descriptors[sourceURL]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", sourceURL)
	}
	return desc, nil
}

func testConfig(t *testing.T) *infra.Config {
	t.Helper()
	return &infra.Config{
		DownloadEnabled:    true,
		DownloadPath:       t.TempDir(),
		DownloadFilePrefix: "",
		MaxBatchURLs:       10,
	}
}

func newTestRetriever(t *testing.T, cfg *infra.Config, res domain.Resolver) *Retriever {
	t.Helper()
	store, err := storage.NewFileStore(cfg.DownloadPath)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return NewRetriever(res, store, fetch.New(nil), cfg, zerolog.Nop())
}

func videoDescriptor(platform, id, nwmURL, wmURL string) *domain.AssetDescriptor {
	return &domain.AssetDescriptor{
		Platform: platform,
		AssetID:  id,
		Kind:     domain.AssetKindVideo,
		Video:    &domain.VideoSources{NoWatermarkURL: nwmURL, WatermarkURL: wmURL},
	}
}

func TestRetrieveDisabledFeature(t *testing.T) {
	cfg := testConfig(t)
	cfg.DownloadEnabled = false
	r := newTestRetriever(t, cfg, &fakeResolver{})

	_, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://a"}, nil)
	if !errors.Is(err, domain.ErrFeatureDisabled) {
		t.Fatalf("error = %v, want ErrFeatureDisabled", err)
	}
}

func TestRetrieveVideoStoragePathAndPublicName(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("videodata"))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	res := &fakeResolver{descriptors: map[string]*domain.AssetDescriptor{
		"http://src/1": videoDescriptor("x", "123", srv.URL+"/v.mp4", ""),
	}}
	r := newTestRetriever(t, cfg, res)

	artifact, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/1"}, nil)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	wantPath := filepath.Join(cfg.DownloadPath, "x_video", "x_123.mp4")
	if artifact.StoragePath != wantPath {
		t.Fatalf("StoragePath = %q, want %q", artifact.StoragePath, wantPath)
	}
	if artifact.PublicFilename != "x_123.mp4" {
		t.Fatalf("PublicFilename = %q, want x_123.mp4", artifact.PublicFilename)
	}
	if artifact.MediaType != "video/mp4" {
		t.Fatalf("MediaType = %q", artifact.MediaType)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil || string(data) != "videodata" {
		t.Fatalf("stored file = %q, err = %v", data, err)
	}
	if hits.Load() != 1 {
		t.Fatalf("fetch count = %d, want 1", hits.Load())
	}
}

func TestRetrieveVideoMissingWatermarkVariant(t *testing.T) {
	cfg := testConfig(t)
	res := &fakeResolver{descriptors: map[string]*domain.AssetDescriptor{
		"http://src/1": videoDescriptor("x", "123", "http://h/v.mp4", ""),
	}}
	r := newTestRetriever(t, cfg, res)

	_, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/1", WithWatermark: true}, nil)
	if !errors.Is(err, domain.ErrMissingSource) {
		t.Fatalf("error = %v, want ErrMissingSource", err)
	}
}

func TestRetrieveVideoIdempotentCaching(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("videodata"))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	res := &fakeResolver{descriptors: map[string]*domain.AssetDescriptor{
		"http://src/1": videoDescriptor("x", "123", srv.URL, ""),
	}}
	r := newTestRetriever(t, cfg, res)

	first, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/1"}, nil)
	if err != nil {
		t.Fatalf("first Retrieve: %v", err)
	}
	second, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/1"}, nil)
	if err != nil {
		t.Fatalf("second Retrieve: %v", err)
	}
	if first.StoragePath != second.StoragePath {
		t.Fatalf("storage paths differ: %q vs %q", first.StoragePath, second.StoragePath)
	}
	if hits.Load() != 1 {
		t.Fatalf("fetch count = %d, want 1 (second call must hit the cache)", hits.Load())
	}
}

func TestRetrieveVideoNamingDecoupling(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("videodata"))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	res := &fakeResolver{descriptors: map[string]*domain.AssetDescriptor{
		"http://src/1": videoDescriptor("x", "123", srv.URL, ""),
	}}
	r := newTestRetriever(t, cfg, res)

	a, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/1", Naming: "my clip"}, nil)
	if err != nil {
		t.Fatalf("first Retrieve: %v", err)
	}
	b, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/1", Naming: "other/name"}, nil)
	if err != nil {
		t.Fatalf("second Retrieve: %v", err)
	}
	if a.PublicFilename != "my clip.mp4" || b.PublicFilename != "other_name.mp4" {
		t.Fatalf("public names = %q, %q", a.PublicFilename, b.PublicFilename)
	}
	if a.StoragePath != b.StoragePath {
		t.Fatalf("storage paths differ: %q vs %q", a.StoragePath, b.StoragePath)
	}
	entries, err := os.ReadDir(filepath.Join(cfg.DownloadPath, "x_video"))
	if err != nil {
		t.Fatalf("read storage dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("file count = %d, want 1 shared artifact", len(entries))
	}
	if hits.Load() != 1 {
		t.Fatalf("fetch count = %d, want 1", hits.Load())
	}
}

func TestRetrieveVideoClientDisconnect(t *testing.T) {
	payload := strings.Repeat("v", 512*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	res := &fakeResolver{descriptors: map[string]*domain.AssetDescriptor{
		"http://src/1": videoDescriptor("x", "123", srv.URL, ""),
	}}
	r := newTestRetriever(t, cfg, res)

	probe := func() bool { return true }
	_, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/1"}, probe)
	if !errors.Is(err, domain.ErrDeliveryAborted) {
		t.Fatalf("error = %v, want ErrDeliveryAborted", err)
	}
	path := filepath.Join(cfg.DownloadPath, "x_video", "x_123.mp4")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("partial file survived, stat err = %v", err)
	}
}

func TestRetrieveImageSetArchiveOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("img" + strings.TrimPrefix(r.URL.Path, "/")))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	res := &fakeResolver{descriptors: map[string]*domain.AssetDescriptor{
		"http://src/imgs": {
			Platform: "tiktok",
			AssetID:  "9",
			Kind:     domain.AssetKindImage,
			Images: &domain.ImageSources{
				NoWatermarked: []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"},
			},
		},
	}}
	r := newTestRetriever(t, cfg, res)

	artifact, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/imgs"}, nil)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if artifact.MediaType != "application/zip" {
		t.Fatalf("MediaType = %q", artifact.MediaType)
	}
	wantPath := filepath.Join(cfg.DownloadPath, "tiktok_image", "tiktok_9_images.zip")
	if artifact.StoragePath != wantPath {
		t.Fatalf("StoragePath = %q, want %q", artifact.StoragePath, wantPath)
	}

	zr, err := zip.OpenReader(artifact.StoragePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	want := []string{"tiktok_9_1.jpeg", "tiktok_9_2.jpeg", "tiktok_9_3.jpeg"}
	if len(zr.File) != len(want) {
		t.Fatalf("entry count = %d, want %d", len(zr.File), len(want))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Fatalf("entry[%d] = %q, want %q", i, f.Name, want[i])
		}
	}
}

func TestRetrieveImageSetAbortsOnSingleFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/b" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("img"))
	}))
	defer srv.Close()

	cfg := testConfig(t)
	res := &fakeResolver{descriptors: map[string]*domain.AssetDescriptor{
		"http://src/imgs": {
			Platform: "tiktok",
			AssetID:  "9",
			Kind:     domain.AssetKindImage,
			Images: &domain.ImageSources{
				NoWatermarked: []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/c"},
			},
		},
	}}
	r := newTestRetriever(t, cfg, res)

	_, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/imgs"}, nil)
	var upstream *domain.UpstreamHTTPError
	if !errors.As(err, &upstream) {
		t.Fatalf("error = %v, want UpstreamHTTPError", err)
	}
	archive := filepath.Join(cfg.DownloadPath, "tiktok_image", "tiktok_9_images.zip")
	if _, err := os.Stat(archive); !os.IsNotExist(err) {
		t.Fatalf("partial archive survived, stat err = %v", err)
	}
}

func TestRetrieveResolutionFailureSurfaced(t *testing.T) {
	cfg := testConfig(t)
	r := newTestRetriever(t, cfg, &fakeResolver{err: errors.New("cookie expired")})

	_, err := r.Retrieve(context.Background(), RetrieveOptions{SourceURL: "http://src/1"}, nil)
	if err == nil || !strings.Contains(err.Error(), "cookie expired") {
		t.Fatalf("error = %v, want resolver failure surfaced verbatim", err)
	}
}

func TestExtensionFromContentType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"image/jpeg", "jpeg"},
		{"image/webp; charset=binary", "webp"},
		{"", "bin"},
		{"weird", "bin"},
	}
	for _, tt := range tests {
		if got := extensionFromContentType(tt.in); got != tt.want {
			t.Fatalf("extensionFromContentType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
