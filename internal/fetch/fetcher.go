package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/logging"
	"go.uber.org/zap"
)

// Published archive location and digest.
const (
	DefaultSourceURI   = "https://www.cs.toronto.edu/~kriz/cifar-10-binary.tar.gz"
	DefaultChecksum    = "c32a1d4ab5d03f1284b67883e8d87530"
	DefaultArchiveName = "cifar-10-binary.tar.gz"
)

// Fetcher makes the extracted batch files available under Dir.
type Fetcher struct {
	Dir       string
	SourceURI string
	// Checksum is the expected MD5 hex digest; empty skips verification.
	Checksum  string
	Providers map[Protocol]Provider
	Options   ProviderOptions
	Logger    *zap.SugaredLogger
}

// New returns a Fetcher for the published archive.
func New(dir string, logger *zap.SugaredLogger) *Fetcher {
	return &Fetcher{
		Dir:       dir,
		SourceURI: DefaultSourceURI,
		Checksum:  DefaultChecksum,
		Providers: make(map[Protocol]Provider),
		Logger:    logger,
	}
}

// BatchesDir is where the batch files end up after extraction.
func (f *Fetcher) BatchesDir() string {
	return filepath.Join(f.Dir, cifar.BatchesDir)
}

// ArchivePath is where the downloaded archive is kept.
func (f *Fetcher) ArchivePath() string {
	return filepath.Join(f.Dir, archiveName(f.sourceURI()))
}

// Ensure downloads and extracts the archive as needed and returns the
// directory holding the batch files. Running it again is a no-op.
func (f *Fetcher) Ensure(ctx context.Context) (string, error) {
	log := f.logger()
	batches := f.BatchesDir()

	if len(cifar.MissingFiles(batches)) == 0 {
		log.Debugw("batch files already extracted", "dir", batches)
		return batches, nil
	}

	if err := os.MkdirAll(f.Dir, 0o750); err != nil {
		return "", fmt.Errorf("unable to create data directory: %w", err)
	}

	archive := f.ArchivePath()
	_, err := os.Stat(archive)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := f.download(ctx, archive); err != nil {
			return "", err
		}
	case err != nil:
		return "", fmt.Errorf("unable to stat archive: %w", err)
	default:
		log.Infow("using existing archive", "path", archive)
		if err := f.verify(archive); err != nil {
			return "", err
		}
	}

	log.Infow("extracting archive", "path", archive, "dir", f.Dir)
	if err := extractFile(archive, f.Dir); err != nil {
		return "", err
	}
	if missing := cifar.MissingFiles(batches); len(missing) > 0 {
		return "", fmt.Errorf("%w: %v", ErrIncompleteArchive, missing)
	}
	return batches, nil
}

func (f *Fetcher) download(ctx context.Context, archive string) error {
	log := f.logger()
	uri := f.sourceURI()

	protocol, err := ProtocolOf(uri)
	if err != nil {
		return err
	}
	if f.Providers == nil {
		f.Providers = make(map[Protocol]Provider)
	}
	provider, err := GetProvider(ctx, f.Providers, protocol, f.Options)
	if err != nil {
		return fmt.Errorf("unable to create %s provider: %w", protocol, err)
	}

	tmp, err := os.CreateTemp(f.Dir, filepath.Base(archive)+".part-*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	log.Infow("downloading archive", "uri", uri, "dest", archive)
	if err := provider.Download(ctx, uri, tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to download %s: %w", uri, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write archive: %w", err)
	}
	if err := f.verify(tmpName); err != nil {
		return err
	}
	if err := os.Rename(tmpName, archive); err != nil {
		return fmt.Errorf("unable to move archive into place: %w", err)
	}
	return nil
}

func (f *Fetcher) verify(path string) error {
	if f.Checksum == "" {
		return nil
	}
	sum, err := ComputeChecksumFile(path)
	if err != nil {
		return fmt.Errorf("unable to checksum archive: %w", err)
	}
	return ValidateChecksum(sum, f.Checksum)
}

func (f *Fetcher) sourceURI() string {
	if f.SourceURI == "" {
		return DefaultSourceURI
	}
	return f.SourceURI
}

func (f *Fetcher) logger() *zap.SugaredLogger {
	if f.Logger == nil {
		return logging.Nop()
	}
	return f.Logger
}

func extractFile(archive, dest string) error {
	//nolint:gosec // G304: archive lives in the data directory
	r, err := os.Open(archive)
	if err != nil {
		return fmt.Errorf("unable to open archive: %w", err)
	}
	defer r.Close()
	return ExtractTarGz(r, dest)
}

func archiveName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return DefaultArchiveName
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return DefaultArchiveName
	}
	return name
}
