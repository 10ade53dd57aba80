package format

import (
	"fmt"

	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/parallel"
	"github.com/born-ml/cifar/internal/tensor"
)

// Options selects the output encoding.
type Options struct {
	Layout   Layout
	OneHot   bool
	Parallel parallel.Config
}

// Prepared holds one split ready for a training driver.
type Prepared struct {
	Images *tensor.RawTensor // float32, (N, 3, 32, 32) or (N, 32, 32, 3)
	Labels *tensor.RawTensor // int32, (N,) or (N, 10)
	Layout Layout
}

// Len returns the number of samples.
func (p *Prepared) Len() int {
	return p.Images.Shape()[0]
}

// Adapt converts a decoded batch into a Prepared split.
func Adapt(b *cifar.Batch, opts Options) (*Prepared, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	images, err := Images(b.Pixels, b.Len(), opts.Layout, opts.Parallel)
	if err != nil {
		return nil, fmt.Errorf("failed to adapt images: %w", err)
	}
	labels, err := Labels(b.Labels, opts.OneHot)
	if err != nil {
		return nil, fmt.Errorf("failed to adapt labels: %w", err)
	}

	return &Prepared{
		Images: images,
		Labels: labels,
		Layout: opts.Layout,
	}, nil
}

// Slice returns samples [lo, hi) as views over p.
func (p *Prepared) Slice(lo, hi int) (*Prepared, error) {
	images, err := p.Images.Slice(lo, hi)
	if err != nil {
		return nil, err
	}
	labels, err := p.Labels.Slice(lo, hi)
	if err != nil {
		return nil, err
	}
	return &Prepared{Images: images, Labels: labels, Layout: p.Layout}, nil
}

// Gather copies the samples at indices into a new Prepared split.
func (p *Prepared) Gather(indices []int) (*Prepared, error) {
	images, err := p.Images.Gather(indices)
	if err != nil {
		return nil, err
	}
	labels, err := p.Labels.Gather(indices)
	if err != nil {
		return nil, err
	}
	return &Prepared{Images: images, Labels: labels, Layout: p.Layout}, nil
}
