package cifar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Batch holds decoded samples in the publisher's layout.
type Batch struct {
	Pixels []uint8 // [num_samples, 3072], plane-major per image
	Labels []uint8 // [num_samples], each in [0, 9]
}

// Len returns the number of samples.
func (b *Batch) Len() int {
	return len(b.Labels)
}

// Image returns the 3072 pixel bytes of sample i.
func (b *Batch) Image(i int) []uint8 {
	return b.Pixels[i*PixelsPerImage : (i+1)*PixelsPerImage]
}

// Subset returns samples [lo, hi) sharing memory with b. The views are
// capped at hi, so appending to them never writes into b's later samples.
func (b *Batch) Subset(lo, hi int) (*Batch, error) {
	if lo < 0 || hi > b.Len() || lo > hi {
		return nil, fmt.Errorf("subset [%d:%d] out of range for %d samples", lo, hi, b.Len())
	}
	return &Batch{
		Pixels: b.Pixels[lo*PixelsPerImage : hi*PixelsPerImage : hi*PixelsPerImage],
		Labels: b.Labels[lo:hi:hi],
	}, nil
}

// Split splits the batch into train and validation parts.
//
// Parameters:
//   - validationRatio: Fraction of samples to hold out (e.g., 0.1 for 10%)
//
// The held-out samples are taken from the end, so the split is deterministic.
func (b *Batch) Split(validationRatio float64) (*Batch, *Batch) {
	n := b.Len()
	splitIdx := int(float64(n) * (1.0 - validationRatio))
	splitIdx = max(0, min(splitIdx, n))

	train, _ := b.Subset(0, splitIdx)
	val, _ := b.Subset(splitIdx, n)
	return train, val
}

// ClassCounts returns how many samples carry each label.
func (b *Batch) ClassCounts() [NumClasses]int {
	var counts [NumClasses]int
	for _, l := range b.Labels {
		if int(l) < NumClasses {
			counts[l]++
		}
	}
	return counts
}

// Validate checks the pixel/label lengths agree and every label is in range.
func (b *Batch) Validate() error {
	if len(b.Pixels) != b.Len()*PixelsPerImage {
		return fmt.Errorf("%w: %d pixel bytes for %d labels", ErrMalformedBatch, len(b.Pixels), b.Len())
	}
	for i, l := range b.Labels {
		if int(l) >= NumClasses {
			return &FormatError{Record: i, Err: fmt.Errorf("%w: %d", ErrLabelOutOfRange, l)}
		}
	}
	return nil
}

// ReadBatch decodes records from r until EOF.
//
// An empty stream or a trailing partial record is reported as ErrMalformedBatch.
func ReadBatch(r io.Reader) (*Batch, error) {
	br := bufio.NewReaderSize(r, 64*RecordSize)
	b := &Batch{}
	record := make([]byte, RecordSize)

	for i := 0; ; i++ {
		_, err := io.ReadFull(br, record)
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &FormatError{Record: i, Err: fmt.Errorf("%w: truncated record", ErrMalformedBatch)}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", i, err)
		}

		label := record[0]
		if int(label) >= NumClasses {
			return nil, &FormatError{Record: i, Err: fmt.Errorf("%w: %d", ErrLabelOutOfRange, label)}
		}
		b.Labels = append(b.Labels, label)
		b.Pixels = append(b.Pixels, record[1:]...)
	}

	if b.Len() == 0 {
		return nil, &FormatError{Record: -1, Err: fmt.Errorf("%w: no records", ErrMalformedBatch)}
	}
	return b, nil
}

// ReadBatchFile reads a batch file from disk.
//
// The file length is checked against the record size before decoding so a
// malformed archive fails fast without partial allocation.
func ReadBatchFile(path string) (*Batch, error) {
	//nolint:gosec // G304: batch paths are built from the configured data directory
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat batch file: %w", err)
	}
	size := info.Size()
	if size == 0 || size%RecordSize != 0 {
		return nil, &FormatError{
			File:   path,
			Record: -1,
			Err:    fmt.Errorf("%w: %d bytes is not a positive multiple of %d", ErrMalformedBatch, size, RecordSize),
		}
	}

	b, err := ReadBatch(f)
	if err != nil {
		var fe *FormatError
		if errors.As(err, &fe) {
			fe.File = path
		}
		return nil, err
	}
	return b, nil
}

// WriteBatch encodes b in the binary record format.
func WriteBatch(w io.Writer, b *Batch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for i := 0; i < b.Len(); i++ {
		if err := bw.WriteByte(b.Labels[i]); err != nil {
			return fmt.Errorf("failed to write label %d: %w", i, err)
		}
		if _, err := bw.Write(b.Image(i)); err != nil {
			return fmt.Errorf("failed to write image %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteBatchFile writes b to path, creating or truncating the file.
func WriteBatchFile(path string, b *Batch) error {
	//nolint:gosec // G304: caller chooses the output path
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create batch file: %w", err)
	}
	if err := WriteBatch(f, b); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// concat joins batches in order into one freshly allocated batch.
func concat(parts []*Batch) *Batch {
	n := 0
	for _, p := range parts {
		n += p.Len()
	}
	out := &Batch{
		Pixels: make([]uint8, 0, n*PixelsPerImage),
		Labels: make([]uint8, 0, n),
	}
	for _, p := range parts {
		out.Pixels = append(out.Pixels, p.Pixels...)
		out.Labels = append(out.Labels, p.Labels...)
	}
	return out
}
