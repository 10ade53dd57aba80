package fetch

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxEntrySize bounds a single extracted file (the batches are ~30 MiB each).
const maxEntrySize = 1 << 30

// ExtractTarGz unpacks a gzip'd tar stream into dest. Entries that would land
// outside dest are rejected with ErrIllegalPath, entries larger than 1 GiB
// with ErrEntryTooLarge.
func ExtractTarGz(r io.Reader, dest string) error {
	return extractTarGz(r, dest, maxEntrySize)
}

func extractTarGz(r io.Reader, dest string, limit int64) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("unable to open gzip stream: %w", err)
	}
	defer gz.Close()

	root := filepath.Clean(dest) + string(os.PathSeparator)
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("unable to read tar header: %w", err)
		}

		target := filepath.Join(dest, header.Name) //nolint:gosec // G305: checked below
		if target != filepath.Clean(dest) && !strings.HasPrefix(target, root) {
			return fmt.Errorf("%w: %s", ErrIllegalPath, header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o750); err != nil {
				return fmt.Errorf("unable to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if header.Size > limit {
				return fmt.Errorf("%w: %s is %d bytes", ErrEntryTooLarge, header.Name, header.Size)
			}
			if err := writeEntry(tr, target, limit); err != nil {
				return err
			}
		default:
			// links and devices are not part of the archive
		}
	}
}

func writeEntry(r io.Reader, target string, limit int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("unable to create directory: %w", err)
	}
	//nolint:gosec // G304: target is confined to the destination directory
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", target, err)
	}
	n, err := io.CopyN(f, r, limit)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return fmt.Errorf("unable to extract %s: %w", target, err)
	}
	if n == limit {
		// The entry must end exactly at the limit.
		if m, _ := io.CopyN(io.Discard, r, 1); m > 0 {
			_ = f.Close()
			_ = os.Remove(target)
			return fmt.Errorf("%w: %s", ErrEntryTooLarge, target)
		}
	}
	return f.Close()
}
