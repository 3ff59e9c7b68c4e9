package storage

import (
	"os"
	"path/filepath"
	"testing"

	"mediagrab/internal/domain"
)

func TestNewFileStoreRequiresBasePath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatal("expected error for empty base path")
	}
}

func TestArtifactDirCreatesPlatformKindSubdir(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	dir, err := store.ArtifactDir("tiktok", domain.AssetKindVideo)
	if err != nil {
		t.Fatalf("ArtifactDir: %v", err)
	}
	want := filepath.Join(root, "tiktok_video")
	if dir != want {
		t.Fatalf("dir = %q, want %q", dir, want)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestArtifactNamesAreDeterministic(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"video no watermark", VideoName("", "x", "123", false), "x_123.mp4"},
		{"video watermark", VideoName("", "x", "123", true), "x_123_watermark.mp4"},
		{"video prefixed", VideoName("dl_", "douyin", "42", false), "dl_douyin_42.mp4"},
		{"archive no watermark", ArchiveName("", "tiktok", "9", false), "tiktok_9_images.zip"},
		{"archive watermark", ArchiveName("dl_", "tiktok", "9", true), "dl_tiktok_9_images_watermark.zip"},
		{"image indexed", ImageName("", "tiktok", "9", 3, false, "jpeg"), "tiktok_9_3.jpeg"},
		{"image watermark", ImageName("", "tiktok", "9", 1, true, "webp"), "tiktok_9_1_watermark.webp"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestExists(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	path := filepath.Join(root, "x_video", "x_123.mp4")
	if store.Exists(path) {
		t.Fatal("Exists = true for absent file")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if store.Exists(filepath.Dir(path)) {
		t.Fatal("Exists = true for a directory")
	}
	if err := os.WriteFile(path, []byte("v"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !store.Exists(path) {
		t.Fatal("Exists = false for cached artifact")
	}
}
