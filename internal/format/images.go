package format

import (
	"fmt"

	"github.com/born-ml/cifar/internal/cifar"
	"github.com/born-ml/cifar/internal/parallel"
	"github.com/born-ml/cifar/internal/tensor"
)

// Images casts n flat (3072-byte) images to float32 and lays them out as
// (N, 3, 32, 32) or, for ChannelsLast, (N, 32, 32, 3).
//
// Pixel values keep their 0-255 range; scaling is a separate step.
func Images(pixels []uint8, n int, l Layout, cfg parallel.Config) (*tensor.RawTensor, error) {
	if n <= 0 || len(pixels) != n*cifar.PixelsPerImage {
		return nil, fmt.Errorf("%w: %d pixel bytes for %d images of %d",
			ErrShapeMismatch, len(pixels), n, cifar.PixelsPerImage)
	}
	if l != ChannelsFirst && l != ChannelsLast {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayout, int(l))
	}

	out, err := tensor.NewRaw(ImageShape(n, l), tensor.Float32)
	if err != nil {
		return nil, err
	}
	dst := out.AsFloat32()

	parallel.ForRange(n, func(lo, hi int) {
		if l == ChannelsFirst {
			// (N, 3072) and (N, 3, 32, 32) share the same row-major order.
			for i, v := range pixels[lo*cifar.PixelsPerImage : hi*cifar.PixelsPerImage] {
				dst[lo*cifar.PixelsPerImage+i] = float32(v)
			}
			return
		}
		for i := lo; i < hi; i++ {
			off := i * cifar.PixelsPerImage
			planarToInterleaved(dst[off:off+cifar.PixelsPerImage], pixels[off:off+cifar.PixelsPerImage],
				cifar.Channels, cifar.PlaneSize)
		}
	}, cfg)
	return out, nil
}

// Flatten returns the (N, C*H*W) values of t in channel-first order, the
// inverse of Images.
func Flatten(t *tensor.RawTensor, l Layout, cfg parallel.Config) ([]float32, error) {
	first, err := ConvertLayout(t, l, ChannelsFirst, cfg)
	if err != nil {
		return nil, err
	}
	return first.AsFloat32(), nil
}
