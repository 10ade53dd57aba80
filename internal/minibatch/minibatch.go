// Package minibatch yields fixed-size mini-batches of a prepared split.
package minibatch

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/born-ml/cifar/internal/format"
)

// ErrBatchSize is returned for a non-positive batch size.
var ErrBatchSize = errors.New("batch size must be > 0")

// Options controls batching.
type Options struct {
	Size     int    // Samples per batch
	Shuffle  bool   // Permute samples at the start of every epoch
	Seed     uint64 // Base seed; epoch e shuffles with (Seed, e)
	DropLast bool   // Skip the trailing short batch
}

// Loader walks a Prepared split in mini-batches.
type Loader struct {
	data  *format.Prepared
	opts  Options
	order []int
}

// New creates a Loader over data, positioned at epoch 0.
func New(data *format.Prepared, opts Options) (*Loader, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrBatchSize, opts.Size)
	}
	l := &Loader{data: data, opts: opts}
	l.Reset(0)
	return l, nil
}

// NumBatches returns the number of batches per epoch.
func (l *Loader) NumBatches() int {
	n := l.data.Len()
	if l.opts.DropLast {
		return n / l.opts.Size
	}
	return (n + l.opts.Size - 1) / l.opts.Size
}

// Reset prepares the sample order for the given epoch.
// Without shuffling every epoch visits samples in storage order.
func (l *Loader) Reset(epoch uint64) {
	if !l.opts.Shuffle {
		l.order = nil
		return
	}
	n := l.data.Len()
	if len(l.order) != n {
		l.order = make([]int, n)
	}
	for i := range l.order {
		l.order[i] = i
	}
	rng := rand.New(rand.NewPCG(l.opts.Seed, epoch))
	rng.Shuffle(n, func(i, j int) {
		l.order[i], l.order[j] = l.order[j], l.order[i]
	})
}

// Batch returns batch i of the current epoch.
// Unshuffled batches are views over the split; shuffled batches are copies.
func (l *Loader) Batch(i int) (*format.Prepared, error) {
	if i < 0 || i >= l.NumBatches() {
		return nil, fmt.Errorf("batch %d out of range [0, %d)", i, l.NumBatches())
	}
	lo := i * l.opts.Size
	hi := min(lo+l.opts.Size, l.data.Len())
	if l.order == nil {
		return l.data.Slice(lo, hi)
	}
	return l.data.Gather(l.order[lo:hi])
}

// Epoch resets the loader for epoch and yields its batches in order.
// Iteration stops after the first error.
func (l *Loader) Epoch(epoch uint64) iter.Seq2[*format.Prepared, error] {
	return func(yield func(*format.Prepared, error) bool) {
		l.Reset(epoch)
		for i := 0; i < l.NumBatches(); i++ {
			b, err := l.Batch(i)
			if !yield(b, err) || err != nil {
				return
			}
		}
	}
}
