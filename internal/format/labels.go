package format

import (
	"fmt"

	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/tensor"
)

// Labels encodes class ids as int32, either as an (N,) vector or as an
// (N, 10) one-hot matrix with a single 1 at column label.
func Labels(labels []uint8, oneHot bool) (*tensor.RawTensor, error) {
	n := len(labels)
	if n == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrShapeMismatch)
	}

	shape := tensor.Shape{n}
	if oneHot {
		shape = tensor.Shape{n, cifar.NumClasses}
	}
	out, err := tensor.NewRaw(shape, tensor.Int32)
	if err != nil {
		return nil, err
	}
	dst := out.AsInt32()

	for i, l := range labels {
		if int(l) >= cifar.NumClasses {
			return nil, fmt.Errorf("sample %d: %w: %d", i, cifar.ErrLabelOutOfRange, l)
		}
		if oneHot {
			dst[i*cifar.NumClasses+int(l)] = 1
		} else {
			dst[i] = int32(l)
		}
	}
	return out, nil
}

// ArgMax decodes an (N, K) int32 matrix into the column index of each row's
// maximum. Ties resolve to the lowest column.
func ArgMax(t *tensor.RawTensor) ([]int32, error) {
	if t.DType() != tensor.Int32 {
		return nil, fmt.Errorf("%w: %s", ErrDType, t.DType())
	}
	s := t.Shape()
	if len(s) != 2 {
		return nil, fmt.Errorf("%w: want rank 2, got shape %v", ErrShapeMismatch, s)
	}

	rows, cols := s[0], s[1]
	data := t.AsInt32()
	out := make([]int32, rows)
	for r := 0; r < rows; r++ {
		row := data[r*cols : (r+1)*cols]
		best := 0
		for c := 1; c < cols; c++ {
			if row[c] > row[best] {
				best = c
			}
		}
		out[r] = int32(best)
	}
	return out, nil
}

// ClassIDs returns the class ids held by an encoded label tensor, decoding
// one-hot matrices when needed.
func ClassIDs(t *tensor.RawTensor) ([]int32, error) {
	if len(t.Shape()) == 1 && t.DType() == tensor.Int32 {
		return append([]int32(nil), t.AsInt32()...), nil
	}
	return ArgMax(t)
}
