package tensor_test

import (
	"testing"

	"github.com/anchor-ml/anchor/internal/tensor"
)

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		shape tensor.Shape
		want  int
	}{
		{tensor.Shape{2, 3}, 6},
		{tensor.Shape{4}, 4},
		{tensor.Shape{2, 3, 4}, 24},
		{tensor.Shape{1}, 1},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShape_ComputeStrides(t *testing.T) {
	strides := tensor.Shape{2, 3, 4}.ComputeStrides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Fatalf("strides = %v, want %v", strides, want)
		}
	}
}

func TestShape_Validate(t *testing.T) {
	if err := (tensor.Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (tensor.Shape{2, -1}).Validate(); err == nil {
		t.Error("negative dimension accepted")
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      tensor.Shape
		want      tensor.Shape
		needs     bool
		expectErr bool
	}{
		{tensor.Shape{2, 3}, tensor.Shape{2, 3}, tensor.Shape{2, 3}, false, false},
		{tensor.Shape{2, 1}, tensor.Shape{2, 3}, tensor.Shape{2, 3}, true, false},
		{tensor.Shape{4, 3}, tensor.Shape{3}, tensor.Shape{4, 3}, true, false},
		{tensor.Shape{1}, tensor.Shape{5, 2}, tensor.Shape{5, 2}, true, false},
		{tensor.Shape{2, 3}, tensor.Shape{2, 4}, nil, false, true},
	}
	for _, tt := range tests {
		got, needs, err := tensor.BroadcastShapes(tt.a, tt.b)
		if tt.expectErr {
			if err == nil {
				t.Errorf("BroadcastShapes(%v, %v): expected error", tt.a, tt.b)
			}
			continue
		}
		if err != nil {
			t.Errorf("BroadcastShapes(%v, %v): %v", tt.a, tt.b, err)
			continue
		}
		if !got.Equal(tt.want) || needs != tt.needs {
			t.Errorf("BroadcastShapes(%v, %v) = %v (needs=%v), want %v (needs=%v)",
				tt.a, tt.b, got, needs, tt.want, tt.needs)
		}
	}
}
