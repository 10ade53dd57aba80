// Package stats computes per-channel pixel statistics and applies optional
// pixel scaling to prepared image tensors.
package stats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/cifar/internal/format"
	"github.com/born-ml/cifar/internal/tensor"
)

// Mode selects how pixel values are scaled after the float32 cast.
type Mode int

// Supported modes.
const (
	None        Mode = iota // keep 0-255
	Unit                    // divide by 255
	Standardize             // per-channel (x - mean) / std
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown scale mode")

// String returns the flag spelling of the mode.
func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Unit:
		return "unit"
	case Standardize:
		return "standardize"
	default:
		return "unknown"
	}
}

// ParseMode parses "none", "unit" or "standardize".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return None, nil
	case "unit", "255":
		return Unit, nil
	case "standardize", "std", "zscore":
		return Standardize, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Stats holds per-channel mean and standard deviation.
type Stats struct {
	Mean []float32
	Std  []float32
}

// planes visits every (image, channel) plane of t as a strided blas32 vector.
func planes(t *tensor.RawTensor, l format.Layout, visit func(c int, v blas32.Vector)) (channels, hw int, err error) {
	if t.DType() != tensor.Float32 {
		return 0, 0, fmt.Errorf("%w: %s", format.ErrDType, t.DType())
	}
	n, c, h, w, err := format.Dims(t.Shape(), l)
	if err != nil {
		return 0, 0, err
	}
	hw = h * w
	data := t.AsFloat32()
	per := c * hw
	for i := 0; i < n; i++ {
		img := data[i*per : (i+1)*per]
		for ch := 0; ch < c; ch++ {
			if l == format.ChannelsLast {
				visit(ch, blas32.Vector{N: hw, Inc: c, Data: img[ch:]})
			} else {
				visit(ch, blas32.Vector{N: hw, Inc: 1, Data: img[ch*hw : (ch+1)*hw]})
			}
		}
	}
	return c, hw, nil
}

func ones(n int) blas32.Vector {
	data := make([]float32, n)
	for i := range data {
		data[i] = 1
	}
	return blas32.Vector{N: n, Inc: 1, Data: data}
}

// ChannelStats computes the mean and population standard deviation of each
// channel over every pixel of every image in t.
func ChannelStats(t *tensor.RawTensor, l format.Layout) (Stats, error) {
	_, c, h, w, err := format.Dims(t.Shape(), l)
	if err != nil {
		return Stats{}, err
	}
	one := ones(h * w)
	sum := make([]float64, c)
	sumSq := make([]float64, c)

	_, hw, err := planes(t, l, func(ch int, v blas32.Vector) {
		sum[ch] += float64(blas32.Dot(v, one))
		sumSq[ch] += float64(blas32.Dot(v, v))
	})
	if err != nil {
		return Stats{}, err
	}

	count := float64(t.Shape()[0] * hw)
	s := Stats{Mean: make([]float32, c), Std: make([]float32, c)}
	for ch := 0; ch < c; ch++ {
		mean := sum[ch] / count
		variance := float32(sumSq[ch]/count - mean*mean)
		s.Mean[ch] = float32(mean)
		s.Std[ch] = math32.Sqrt(math32.Max(variance, 0))
	}
	return s, nil
}

// ApplyStandardize rewrites t in place as (x - mean) / std per channel.
// A zero std leaves the channel centered but unscaled.
func ApplyStandardize(t *tensor.RawTensor, l format.Layout, s Stats) error {
	_, c, h, w, err := format.Dims(t.Shape(), l)
	if err != nil {
		return err
	}
	if len(s.Mean) != c || len(s.Std) != c {
		return fmt.Errorf("%w: stats for %d channels, tensor has %d", format.ErrShapeMismatch, len(s.Mean), c)
	}
	one := ones(h * w)
	_, _, err = planes(t, l, func(ch int, v blas32.Vector) {
		blas32.Axpy(-s.Mean[ch], one, v)
		if s.Std[ch] > 0 {
			blas32.Scal(1/s.Std[ch], v)
		}
	})
	return err
}

// ApplyUnit rewrites t in place as x / 255.
func ApplyUnit(t *tensor.RawTensor) error {
	if t.DType() != tensor.Float32 {
		return fmt.Errorf("%w: %s", format.ErrDType, t.DType())
	}
	blas32.Scal(1.0/255, blas32.Vector{N: t.NumElements(), Inc: 1, Data: t.AsFloat32()})
	return nil
}

// Scale applies mode to the train and test splits in place.
//
// Standardize uses statistics of the train split for both splits; the returned
// Stats are those statistics (zero value for the other modes). test may be nil.
func Scale(mode Mode, train, test *format.Prepared) (Stats, error) {
	splits := []*format.Prepared{train}
	if test != nil {
		splits = append(splits, test)
	}

	switch mode {
	case None:
		return Stats{}, nil
	case Unit:
		for _, p := range splits {
			if err := ApplyUnit(p.Images); err != nil {
				return Stats{}, err
			}
		}
		return Stats{}, nil
	case Standardize:
		s, err := ChannelStats(train.Images, train.Layout)
		if err != nil {
			return Stats{}, err
		}
		for _, p := range splits {
			if err := ApplyStandardize(p.Images, p.Layout, s); err != nil {
				return Stats{}, err
			}
		}
		return s, nil
	default:
		return Stats{}, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
}
