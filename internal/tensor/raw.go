package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is a dense row-major tensor backed by a byte buffer.
// Typed views (AsFloat32, AsInt32) alias the buffer without copying.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int
	dtype  DataType
}

// NewRaw creates a zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// FromBytes wraps data as a tensor of the given shape and type.
// The buffer is adopted, not copied; its length must match the shape exactly.
func FromBytes(shape Shape, dtype DataType, data []byte) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if want := shape.NumElements() * dtype.Size(); len(data) != want {
		return nil, fmt.Errorf("buffer holds %d bytes, shape %v of %s needs %d", len(data), shape, dtype, want)
	}
	return &RawTensor{
		data:   data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
	}, nil
}

// FromFloat32 copies values into a new float32 tensor.
func FromFloat32(shape Shape, values []float32) (*RawTensor, error) {
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("got %d values for shape %v", len(values), shape)
	}
	raw, err := NewRaw(shape, Float32)
	if err != nil {
		return nil, err
	}
	copy(raw.AsFloat32(), values)
	return raw, nil
}

// FromInt32 copies values into a new int32 tensor.
func FromInt32(shape Shape, values []int32) (*RawTensor, error) {
	if len(values) != shape.NumElements() {
		return nil, fmt.Errorf("got %d values for shape %v", len(values), shape)
	}
	raw, err := NewRaw(shape, Int32)
	if err != nil {
		return nil, err
	}
	copy(raw.AsInt32(), values)
	return raw, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice in native byte order.
// WARNING: Direct access to underlying memory.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// Clone returns a deep copy that shares nothing with r.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
	}
}

// Slice returns a view of rows [lo, hi) along the first axis.
func (r *RawTensor) Slice(lo, hi int) (*RawTensor, error) {
	if len(r.shape) == 0 {
		return nil, fmt.Errorf("cannot slice a scalar")
	}
	if lo < 0 || hi > r.shape[0] || lo >= hi {
		return nil, fmt.Errorf("slice [%d:%d] out of range for leading dimension %d", lo, hi, r.shape[0])
	}
	rowBytes := r.stride[0] * r.dtype.Size()
	shape := r.shape.Clone()
	shape[0] = hi - lo
	return &RawTensor{
		data:   r.data[lo*rowBytes : hi*rowBytes],
		shape:  shape,
		stride: shape.ComputeStrides(),
		dtype:  r.dtype,
	}, nil
}

// Gather copies the rows at the given indices along the first axis into a new tensor.
func (r *RawTensor) Gather(indices []int) (*RawTensor, error) {
	if len(r.shape) == 0 {
		return nil, fmt.Errorf("cannot gather from a scalar")
	}
	shape := r.shape.Clone()
	shape[0] = len(indices)
	out, err := NewRaw(shape, r.dtype)
	if err != nil {
		return nil, err
	}
	rowBytes := r.stride[0] * r.dtype.Size()
	for i, idx := range indices {
		if idx < 0 || idx >= r.shape[0] {
			return nil, fmt.Errorf("gather index %d out of range [0, %d)", idx, r.shape[0])
		}
		copy(out.data[i*rowBytes:(i+1)*rowBytes], r.data[idx*rowBytes:(idx+1)*rowBytes])
	}
	return out, nil
}
