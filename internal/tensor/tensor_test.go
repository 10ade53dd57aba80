package tensor

import (
	"testing"
)

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Int32, 4},
		{Uint8, 1},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dtype DataType
		str   string
	}{
		{Float32, "float32"},
		{Int32, "int32"},
		{Uint8, "uint8"},
		{DataType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.dtype.String(); got != tt.str {
			t.Errorf("DataType(%d).String() = %q, want %q", tt.dtype, got, tt.str)
		}
	}
}

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{10}, 10},
		{Shape{2, 3072}, 6144},
		{Shape{2, 3, 32, 32}, 6144},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{4, 3, 32, 32}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{4, 0, 32}).Validate(); err == nil {
		t.Error("zero dimension should be rejected")
	}
	if err := (Shape{-1}).Validate(); err == nil {
		t.Error("negative dimension should be rejected")
	}
}

func TestShapeComputeStrides(t *testing.T) {
	got := Shape{2, 3, 32, 32}.ComputeStrides()
	want := []int{3072, 1024, 32, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("strides = %v, want %v", got, want)
		}
	}
}

func TestShapePermute(t *testing.T) {
	got, err := Shape{5, 3, 32, 16}.Permute(0, 2, 3, 1)
	if err != nil {
		t.Fatalf("Permute failed: %v", err)
	}
	assertEqualShape(t, Shape{5, 32, 16, 3}, got, "channels-last permutation")

	if _, err := (Shape{1, 2}).Permute(0); err == nil {
		t.Error("rank mismatch should fail")
	}
	if _, err := (Shape{1, 2}).Permute(1, 1); err == nil {
		t.Error("repeated axis should fail")
	}
}

func TestShapeClone(t *testing.T) {
	s := Shape{1, 2, 3}
	c := s.Clone()
	c[0] = 9
	if s[0] != 1 {
		t.Error("Clone should not share memory")
	}
}
