// Package zip bundles locally stored files into a single archive artifact.
package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArchiveFiles writes each input file into a new zip archive at dest under
// its base filename, preserving input order. The archive is assembled at a
// temporary path and renamed into place on success, so dest never holds a
// half-written archive.
func ArchiveFiles(paths []string, dest string) error {
	tmp := dest + ".tmp"
	if err := writeArchive(paths, tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("zip: finalize %s: %w", dest, err)
	}
	return nil
}

func writeArchive(paths []string, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("zip: create %s: %w", dest, err)
	}
	zw := zip.NewWriter(out)
	for _, path := range paths {
		if err := addFile(zw, path); err != nil {
			_ = zw.Close()
			_ = out.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("zip: close archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("zip: close %s: %w", dest, err)
	}
	return nil
}

func addFile(zw *zip.Writer, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("zip: open %s: %w", path, err)
	}
	defer in.Close()
	w, err := zw.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("zip: add %s: %w", path, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("zip: write %s: %w", path, err)
	}
	return nil
}
