// Package export stores prepared splits in the safetensors format so a
// training driver in any language can load them without this module.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/born-ml/cifar/internal/format"
	"github.com/born-ml/cifar/internal/tensor"
	"github.com/nlpodyssey/safetensors"
)

// Tensor name suffixes; a split named "train" is stored as
// "train.images" and "train.labels".
const (
	ImagesSuffix = ".images"
	LabelsSuffix = ".labels"
)

// MetaLayout is the metadata key recording the image layout.
const MetaLayout = "layout"

// Common errors.
var (
	ErrMissingTensor = errors.New("missing tensor")
	ErrDType         = errors.New("unsupported tensor dtype")
	ErrLayout        = errors.New("inconsistent image layout")
)

// File is the decoded content of an export.
type File struct {
	Splits   map[string]*format.Prepared
	Metadata map[string]string
}

// WriteSafetensors encodes splits into w. Every split must share one image
// layout, which is recorded under MetaLayout; a MetaLayout entry in metadata
// must name the same layout.
func WriteSafetensors(w io.Writer, splits map[string]*format.Prepared, metadata map[string]string) error {
	layout, err := splitsLayout(splits, metadata)
	if err != nil {
		return err
	}

	views := make(map[string]safetensors.TensorView, 2*len(splits))
	for name, p := range splits {
		images, err := view(p.Images)
		if err != nil {
			return fmt.Errorf("failed to export %s images: %w", name, err)
		}
		labels, err := view(p.Labels)
		if err != nil {
			return fmt.Errorf("failed to export %s labels: %w", name, err)
		}
		views[name+ImagesSuffix] = images
		views[name+LabelsSuffix] = labels
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	if len(splits) > 0 {
		meta[MetaLayout] = layout.String()
	}

	if err := safetensors.SerializeToWriter(views, meta, w); err != nil {
		return fmt.Errorf("failed to serialize: %w", err)
	}
	return nil
}

// WriteFile writes splits to path, creating or truncating it.
func WriteFile(path string, splits map[string]*format.Prepared, metadata map[string]string) error {
	//nolint:gosec // G304: caller chooses the output path
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteSafetensors(f, splits, metadata); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads every split stored in a safetensors file.
func ReadFile(path string) (*File, error) {
	//nolint:gosec // G304: caller chooses the input path
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Decode(buf)
}

// Decode parses an in-memory safetensors buffer.
func Decode(buf []byte) (*File, error) {
	_, header, err := safetensors.ReadMetadata(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	st, err := safetensors.Deserialize(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize: %w", err)
	}

	meta := header.Metadata()
	value, ok := meta[MetaLayout]
	if !ok || strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("%w: metadata has no %q entry", ErrLayout, MetaLayout)
	}
	layout, err := format.ParseLayout(value)
	if err != nil {
		return nil, err
	}

	out := &File{Splits: make(map[string]*format.Prepared), Metadata: meta}
	for _, name := range st.Names() {
		split, ok := strings.CutSuffix(name, ImagesSuffix)
		if !ok {
			continue
		}
		images, err := load(st, name)
		if err != nil {
			return nil, err
		}
		if err := format.CheckImageShape(images.Shape(), layout); err != nil {
			return nil, fmt.Errorf("split %s: %w", split, err)
		}
		labels, err := load(st, split+LabelsSuffix)
		if err != nil {
			return nil, err
		}
		out.Splits[split] = &format.Prepared{Images: images, Labels: labels, Layout: layout}
	}
	return out, nil
}

func view(t *tensor.RawTensor) (safetensors.TensorView, error) {
	var dt safetensors.DType
	switch t.DType() {
	case tensor.Float32:
		dt = safetensors.F32
	case tensor.Int32:
		dt = safetensors.I32
	case tensor.Uint8:
		dt = safetensors.U8
	default:
		return safetensors.TensorView{}, fmt.Errorf("%w: %s", ErrDType, t.DType())
	}
	shape := make([]uint64, len(t.Shape()))
	for i, d := range t.Shape() {
		shape[i] = uint64(d)
	}
	return safetensors.NewTensorView(dt, shape, t.Data())
}

func load(st safetensors.SafeTensors, name string) (*tensor.RawTensor, error) {
	tv, ok := st.Tensor(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTensor, name)
	}
	var dt tensor.DataType
	switch tv.DType() {
	case safetensors.F32:
		dt = tensor.Float32
	case safetensors.I32:
		dt = tensor.Int32
	case safetensors.U8:
		dt = tensor.Uint8
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrDType, name, tv.DType())
	}
	shape := make(tensor.Shape, len(tv.Shape()))
	for i, d := range tv.Shape() {
		shape[i] = int(d)
	}
	// The view aliases buf; copy so the tensor owns aligned memory.
	return tensor.FromBytes(shape, dt, append([]byte(nil), tv.Data()...))
}

// splitsLayout returns the layout shared by every split, checking it against
// the image shapes and any layout named in metadata.
func splitsLayout(splits map[string]*format.Prepared, metadata map[string]string) (format.Layout, error) {
	names := make([]string, 0, len(splits))
	for name := range splits {
		names = append(names, name)
	}
	sort.Strings(names)

	var layout format.Layout
	for i, name := range names {
		p := splits[name]
		if i == 0 {
			layout = p.Layout
		} else if p.Layout != layout {
			return 0, fmt.Errorf("%w: split %s is %s, split %s is %s", ErrLayout, names[0], layout, name, p.Layout)
		}
		if err := format.CheckImageShape(p.Images.Shape(), p.Layout); err != nil {
			return 0, fmt.Errorf("split %s: %w", name, err)
		}
	}

	value, ok := metadata[MetaLayout]
	if !ok || strings.TrimSpace(value) == "" || len(names) == 0 {
		return layout, nil
	}
	named, err := format.ParseLayout(value)
	if err != nil {
		return 0, err
	}
	if named != layout {
		return 0, fmt.Errorf("%w: metadata names %s, splits are %s", ErrLayout, named, layout)
	}
	return layout, nil
}
