package cifar

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dataset holds both splits of the decoded archive.
type Dataset struct {
	Train      *Batch
	Test       *Batch
	ClassNames []string
}

// LoadOptions controls LoadDir.
type LoadOptions struct {
	// RecordsPerFile is the exact record count every batch file must hold.
	// Zero disables the check.
	RecordsPerFile int
}

// LoadDir reads the extracted batch files in dir.
//
// Expected files in dir:
//   - data_batch_1.bin ... data_batch_5.bin (train split, concatenated in order)
//   - test_batch.bin (test split)
//   - batches.meta.txt (optional, class names)
func LoadDir(dir string, opts LoadOptions) (*Dataset, error) {
	parts := make([]*Batch, 0, len(TrainBatchFiles))
	for _, name := range TrainBatchFiles {
		b, err := loadFile(filepath.Join(dir, name), opts)
		if err != nil {
			return nil, err
		}
		parts = append(parts, b)
	}

	test, err := loadFile(filepath.Join(dir, TestBatchFile), opts)
	if err != nil {
		return nil, err
	}

	names, err := ReadClassNames(filepath.Join(dir, MetaFile))
	if errors.Is(err, fs.ErrNotExist) {
		names = append([]string(nil), DefaultClassNames...)
	} else if err != nil {
		return nil, err
	}

	return &Dataset{
		Train:      concat(parts),
		Test:       test,
		ClassNames: names,
	}, nil
}

func loadFile(path string, opts LoadOptions) (*Batch, error) {
	b, err := ReadBatchFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
	}
	if opts.RecordsPerFile > 0 && b.Len() != opts.RecordsPerFile {
		return nil, &FormatError{
			File:   path,
			Record: -1,
			Err:    fmt.Errorf("%w: got %d, want %d", ErrRecordCount, b.Len(), opts.RecordsPerFile),
		}
	}
	return b, nil
}

// ReadClassNames reads one class name per line, skipping blank lines.
func ReadClassNames(path string) ([]string, error) {
	//nolint:gosec // G304: path is built from the configured data directory
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read class names: %w", err)
	}
	if len(names) != NumClasses {
		return nil, fmt.Errorf("%w: %s has %d names, want %d", ErrClassNames, path, len(names), NumClasses)
	}
	return names, nil
}

// MissingFiles returns the batch files absent from dir.
func MissingFiles(dir string) []string {
	var missing []string
	for _, name := range BatchFiles() {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			missing = append(missing, name)
		}
	}
	return missing
}
