// Package format adapts decoded CIFAR-10 batches into the tensor layouts and
// label encodings a training driver consumes.
package format

import (
	"fmt"
	"strings"

	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/parallel"
	"github.com/born-ml/cifar/internal/tensor"
)

// Layout is the axis order of an image tensor.
type Layout int

// Supported layouts.
const (
	ChannelsFirst Layout = iota // (N, C, H, W)
	ChannelsLast                // (N, H, W, C)
)

// String returns the flag spelling of the layout.
func (l Layout) String() string {
	switch l {
	case ChannelsFirst:
		return "first"
	case ChannelsLast:
		return "last"
	default:
		return "unknown"
	}
}

// ParseLayout accepts "first"/"last" and the NCHW/NHWC aliases.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "channels_first", "nchw", "":
		return ChannelsFirst, nil
	case "last", "channels_last", "nhwc":
		return ChannelsLast, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
	}
}

// ImageShape returns the tensor shape of n CIFAR images in layout l.
func ImageShape(n int, l Layout) tensor.Shape {
	if l == ChannelsLast {
		return tensor.Shape{n, cifar.Height, cifar.Width, cifar.Channels}
	}
	return tensor.Shape{n, cifar.Channels, cifar.Height, cifar.Width}
}

// CheckImageShape reports ErrShapeMismatch unless s is a CIFAR image batch
// stored in layout l.
func CheckImageShape(s tensor.Shape, l Layout) error {
	if len(s) != 4 {
		return fmt.Errorf("%w: want rank 4, got shape %v", ErrShapeMismatch, s)
	}
	if want := ImageShape(s[0], l); !s.Equal(want) {
		return fmt.Errorf("%w: shape %v is not %s layout %v", ErrShapeMismatch, s, l, want)
	}
	return nil
}

// Dims reads (N, C, H, W) out of a rank-4 shape stored in layout l.
func Dims(s tensor.Shape, l Layout) (n, c, h, w int, err error) {
	if len(s) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("%w: want rank 4, got shape %v", ErrShapeMismatch, s)
	}
	switch l {
	case ChannelsFirst:
		return s[0], s[1], s[2], s[3], nil
	case ChannelsLast:
		return s[0], s[3], s[1], s[2], nil
	default:
		return 0, 0, 0, 0, fmt.Errorf("%w: %d", ErrUnknownLayout, int(l))
	}
}

// ConvertLayout returns a copy of t permuted from one layout to the other.
// Converting to the same layout returns a plain copy.
func ConvertLayout(t *tensor.RawTensor, from, to Layout, cfg parallel.Config) (*tensor.RawTensor, error) {
	if t.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%w: %s", ErrDType, t.DType())
	}
	n, c, h, w, err := Dims(t.Shape(), from)
	if err != nil {
		return nil, err
	}
	if _, _, _, _, err := Dims(t.Shape(), to); err != nil {
		return nil, err
	}
	if from == to {
		return t.Clone(), nil
	}

	axes := []int{0, 2, 3, 1}
	if to == ChannelsFirst {
		axes = []int{0, 3, 1, 2}
	}
	outShape, err := t.Shape().Permute(axes...)
	if err != nil {
		return nil, err
	}
	out, err := tensor.NewRaw(outShape, tensor.Float32)
	if err != nil {
		return nil, err
	}

	src, dst := t.AsFloat32(), out.AsFloat32()
	per := c * h * w
	parallel.ForRange(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			s, d := src[i*per:(i+1)*per], dst[i*per:(i+1)*per]
			if to == ChannelsLast {
				planarToInterleaved(d, s, c, h*w)
			} else {
				interleavedToPlanar(d, s, c, h*w)
			}
		}
	}, cfg)
	return out, nil
}

// planarToInterleaved writes CHW src into HWC dst.
func planarToInterleaved[T uint8 | float32](dst []float32, src []T, c, hw int) {
	for ch := 0; ch < c; ch++ {
		plane := src[ch*hw : (ch+1)*hw]
		for p, v := range plane {
			dst[p*c+ch] = float32(v)
		}
	}
}

// interleavedToPlanar writes HWC src into CHW dst.
func interleavedToPlanar(dst, src []float32, c, hw int) {
	for p := 0; p < hw; p++ {
		for ch := 0; ch < c; ch++ {
			dst[ch*hw+p] = src[p*c+ch]
		}
	}
}
