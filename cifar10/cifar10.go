// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cifar10

import (
	"context"
	"errors"
	"fmt"

	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/export"
	"github.com/born-ml/cifar/internal/fetch"
	"github.com/born-ml/cifar/internal/format"
	"github.com/born-ml/cifar/internal/logging"
	"github.com/born-ml/cifar/internal/minibatch"
	"github.com/born-ml/cifar/internal/parallel"
	"github.com/born-ml/cifar/internal/stats"
	"github.com/born-ml/cifar/internal/tensor"
	"go.uber.org/zap"
)

// Layout is the axis order of image tensors.
type Layout = format.Layout

// Supported layouts.
const (
	ChannelsFirst Layout = format.ChannelsFirst // (N, 3, 32, 32)
	ChannelsLast  Layout = format.ChannelsLast  // (N, 32, 32, 3)
)

// ScaleMode selects how pixel values are rescaled after the float32 cast.
type ScaleMode = stats.Mode

// Supported scale modes.
const (
	ScaleNone        ScaleMode = stats.None
	ScaleUnit        ScaleMode = stats.Unit
	ScaleStandardize ScaleMode = stats.Standardize
)

// Stats holds per-channel mean and standard deviation.
type Stats = stats.Stats

// Prepared is one split: float32 images and int32 labels.
type Prepared = format.Prepared

// Tensor is the dense tensor type held by Prepared.
type Tensor = tensor.RawTensor

// Dataset is the decoded archive before adaptation.
type Dataset = cifar.Dataset

// Provider downloads an archive for one URI scheme.
type Provider = fetch.Provider

// Protocol is a URI scheme prefix such as "s3://".
type Protocol = fetch.Protocol

// ProviderOptions configures the built-in S3 and GCS providers.
type ProviderOptions = fetch.ProviderOptions

// Published archive constants.
const (
	DefaultSourceURI = fetch.DefaultSourceURI
	DefaultChecksum  = fetch.DefaultChecksum
	NumClasses       = cifar.NumClasses
	TrainSamples     = cifar.TrainSamples
	TestSamples      = cifar.TestSamples
)

// Common errors, for use with errors.Is.
var (
	ErrMalformedBatch   = cifar.ErrMalformedBatch
	ErrLabelOutOfRange  = cifar.ErrLabelOutOfRange
	ErrRecordCount      = cifar.ErrRecordCount
	ErrChecksumMismatch = fetch.ErrChecksumMismatch
	ErrShapeMismatch    = format.ErrShapeMismatch
	ErrLayout           = export.ErrLayout

	// ErrValidationRatio reports a ValidationRatio outside [0, 1).
	ErrValidationRatio = errors.New("validation ratio out of range")
)

// Options configures Load.
type Options struct {
	// Dir receives the archive and its extraction.
	Dir string
	// SourceURI locates the archive; empty means DefaultSourceURI.
	SourceURI string
	// Checksum is the expected MD5 of the archive; empty skips the check.
	Checksum string

	Layout Layout
	OneHot bool
	Scale  ScaleMode

	// ValidationRatio holds out the tail of the training split (e.g. 0.1).
	// It must lie in [0, 1).
	ValidationRatio float64

	// RecordsPerFile is the exact record count of every batch file; zero
	// disables the check.
	RecordsPerFile int

	// Workers fans per-sample work out; 0 or 1 runs sequentially.
	Workers int

	ProviderOptions ProviderOptions
	// Providers overrides the built-in provider of a protocol.
	Providers map[Protocol]Provider

	Logger *zap.SugaredLogger
}

// DefaultOptions returns options for the published archive stored in dir.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:            dir,
		SourceURI:      DefaultSourceURI,
		Checksum:       DefaultChecksum,
		Layout:         ChannelsFirst,
		RecordsPerFile: cifar.RecordsPerFile,
		Workers:        1,
	}
}

// Data is the prepared dataset.
type Data struct {
	Train      *Prepared
	Validation *Prepared // nil unless Options.ValidationRatio > 0
	Test       *Prepared
	ClassNames []string
	// Stats are the training statistics used by ScaleStandardize.
	Stats Stats
	// BatchesDir is the directory holding the extracted batch files.
	BatchesDir string
}

// Load fetches the archive if needed, decodes both splits and adapts them.
func Load(ctx context.Context, opts Options) (*Data, error) {
	if err := CheckValidationRatio(opts.ValidationRatio); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	f := &fetch.Fetcher{
		Dir:       opts.Dir,
		SourceURI: opts.SourceURI,
		Checksum:  opts.Checksum,
		Providers: opts.Providers,
		Options:   opts.ProviderOptions,
		Logger:    log,
	}
	dir, err := f.Ensure(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}

	ds, err := cifar.LoadDir(dir, cifar.LoadOptions{RecordsPerFile: opts.RecordsPerFile})
	if err != nil {
		return nil, err
	}
	log.Infow("loaded batches", "train", ds.Train.Len(), "test", ds.Test.Len())

	data, err := Prepare(ds, opts)
	if err != nil {
		return nil, err
	}
	data.BatchesDir = dir
	return data, nil
}

// Prepare adapts an already decoded dataset.
func Prepare(ds *Dataset, opts Options) (*Data, error) {
	if err := CheckValidationRatio(opts.ValidationRatio); err != nil {
		return nil, err
	}
	adapt := format.Options{
		Layout:   opts.Layout,
		OneHot:   opts.OneHot,
		Parallel: workers(opts.Workers),
	}

	trainBatch, valBatch := ds.Train, (*cifar.Batch)(nil)
	if opts.ValidationRatio > 0 {
		trainBatch, valBatch = ds.Train.Split(opts.ValidationRatio)
		if trainBatch.Len() == 0 {
			return nil, fmt.Errorf("%w: %v leaves no training samples out of %d",
				ErrValidationRatio, opts.ValidationRatio, ds.Train.Len())
		}
	}

	train, err := format.Adapt(trainBatch, adapt)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare train split: %w", err)
	}
	test, err := format.Adapt(ds.Test, adapt)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare test split: %w", err)
	}
	var val *Prepared
	if valBatch != nil && valBatch.Len() > 0 {
		if val, err = format.Adapt(valBatch, adapt); err != nil {
			return nil, fmt.Errorf("failed to prepare validation split: %w", err)
		}
	}

	s, err := stats.Scale(opts.Scale, train, test)
	if err != nil {
		return nil, fmt.Errorf("failed to scale pixels: %w", err)
	}
	if val != nil {
		if err := scaleWith(opts.Scale, val, s); err != nil {
			return nil, fmt.Errorf("failed to scale pixels: %w", err)
		}
	}

	return &Data{
		Train:      train,
		Validation: val,
		Test:       test,
		ClassNames: ds.ClassNames,
		Stats:      s,
	}, nil
}

// CheckValidationRatio reports whether r is usable as Options.ValidationRatio.
func CheckValidationRatio(r float64) error {
	// Written to also reject NaN.
	if !(r >= 0 && r < 1) {
		return fmt.Errorf("%w: %v, want [0, 1)", ErrValidationRatio, r)
	}
	return nil
}

// Splits returns the non-nil splits keyed by name.
func (d *Data) Splits() map[string]*Prepared {
	out := map[string]*Prepared{"train": d.Train, "test": d.Test}
	if d.Validation != nil {
		out["validation"] = d.Validation
	}
	return out
}

// Export writes every split to a safetensors file at path.
func (d *Data) Export(path string, metadata map[string]string) error {
	return export.WriteFile(path, d.Splits(), metadata)
}

// ReadExport loads splits previously written by Data.Export.
func ReadExport(path string) (map[string]*Prepared, map[string]string, error) {
	f, err := export.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return f.Splits, f.Metadata, nil
}

// BatchOptions controls mini-batch iteration.
type BatchOptions = minibatch.Options

// Batches walks a split in mini-batches.
type Batches = minibatch.Loader

// NewBatches returns a mini-batch iterator over p.
func NewBatches(p *Prepared, opts BatchOptions) (*Batches, error) {
	return minibatch.New(p, opts)
}

// ArgMax decodes one-hot label rows back to class ids.
func ArgMax(oneHot *Tensor) ([]int32, error) {
	return format.ArgMax(oneHot)
}

// ClassIDs returns the class id of every label, whether labels are
// one-hot rows or plain ids.
func ClassIDs(labels *Tensor) ([]int32, error) {
	return format.ClassIDs(labels)
}

// ConvertLayout returns a copy of images permuted from one layout to another.
func ConvertLayout(images *Tensor, from, to Layout) (*Tensor, error) {
	return format.ConvertLayout(images, from, to, parallel.Sequential())
}

// Flatten returns images as (N, 3072) values in the publisher's plane order.
func Flatten(images *Tensor, l Layout) ([]float32, error) {
	return format.Flatten(images, l, parallel.Sequential())
}

func scaleWith(mode ScaleMode, p *Prepared, s Stats) error {
	switch mode {
	case ScaleUnit:
		return stats.ApplyUnit(p.Images)
	case ScaleStandardize:
		return stats.ApplyStandardize(p.Images, p.Layout, s)
	default:
		return nil
	}
}

func workers(n int) parallel.Config {
	if n <= 1 {
		return parallel.Sequential()
	}
	return parallel.WithWorkers(n)
}
