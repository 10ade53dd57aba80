package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileProvider copies an archive from a local mirror.
type FileProvider struct{}

var _ Provider = FileProvider{}

// Download copies the file named by a file:// uri into dst.
func (FileProvider) Download(_ context.Context, uri string, dst *os.File) error {
	path := strings.TrimPrefix(uri, string(File))
	//nolint:gosec // G304: the mirror path is user configuration
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open mirror: %w", err)
	}
	defer src.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("unable to copy mirror: %w", err)
	}
	return nil
}
