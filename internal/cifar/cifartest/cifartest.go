// Package cifartest builds small synthetic CIFAR-10 batches for tests.
package cifartest

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/cifar/internal/cifar"
)

// Pixel returns the deterministic byte stored at position p of sample i.
func Pixel(i, p int) uint8 {
	return uint8((i*31 + p*7) % 256)
}

// NewBatch returns a batch with the given labels and Pixel-generated images.
func NewBatch(labels ...uint8) *cifar.Batch {
	b := &cifar.Batch{
		Pixels: make([]uint8, len(labels)*cifar.PixelsPerImage),
		Labels: append([]uint8(nil), labels...),
	}
	for i := range labels {
		img := b.Image(i)
		for p := range img {
			img[p] = Pixel(i, p)
		}
	}
	return b
}

// CyclicLabels returns n labels cycling through the ten classes, starting at offset.
func CyclicLabels(n, offset int) []uint8 {
	labels := make([]uint8, n)
	for i := range labels {
		labels[i] = uint8((i + offset) % cifar.NumClasses)
	}
	return labels
}

// WriteDir writes a complete extracted archive layout into dir with
// recordsPerFile samples in each of the six batch files.
func WriteDir(t testing.TB, dir string, recordsPerFile int) {
	t.Helper()
	for i, name := range cifar.BatchFiles() {
		b := NewBatch(CyclicLabels(recordsPerFile, i)...)
		if err := cifar.WriteBatchFile(filepath.Join(dir, name), b); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// ArchiveBytes returns a tar.gz mirror of the published archive: the batches
// directory entry followed by the six batch files, recordsPerFile samples each.
func ArchiveBytes(t testing.TB, recordsPerFile int) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{
		Name:     cifar.BatchesDir + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
	}); err != nil {
		t.Fatalf("write dir header: %v", err)
	}
	for i, name := range cifar.BatchFiles() {
		var data bytes.Buffer
		if err := cifar.WriteBatch(&data, NewBatch(CyclicLabels(recordsPerFile, i)...)); err != nil {
			t.Fatalf("encode %s: %v", name, err)
		}
		if err := tw.WriteHeader(&tar.Header{
			Name:     cifar.BatchesDir + "/" + name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(data.Len()),
		}); err != nil {
			t.Fatalf("write %s header: %v", name, err)
		}
		if _, err := tw.Write(data.Bytes()); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive writes ArchiveBytes to a temporary file and returns its path.
func WriteArchive(t testing.TB, recordsPerFile int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cifar-10-binary.tar.gz")
	if err := os.WriteFile(path, ArchiveBytes(t, recordsPerFile), 0o600); err != nil {
		t.Fatalf("write archive: %v", err)
	}
	return path
}
