package cpu_test

import (
	"testing"

	"github.com/anchor-ml/anchor/internal/backend/cpu"
	"github.com/anchor-ml/anchor/internal/tensor"
)

func TestMatMul(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := fromSlice(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	got := backend.MatMul(a, b)
	if !got.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("shape = %v, want [2 2]", got.Shape())
	}

	// [1 2 3] @ [[7 8] [9 10] [11 12]] = [58 64], [139 154]
	want := []float32{58, 64, 139, 154}
	data := got.AsFloat32()
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("MatMul[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestMatMul_Identity(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	eye := fromSlice(t, []float32{1, 0, 0, 1}, tensor.Shape{2, 2})

	got := backend.MatMul(a, eye).AsFloat32()
	for i, v := range []float32{1, 2, 3, 4} {
		if got[i] != v {
			t.Errorf("A@I [%d] = %v, want %v", i, got[i], v)
		}
	}
}

func TestMatMul_DimensionMismatchPanics(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3, 1})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for inner dimension mismatch")
		}
	}()
	backend.MatMul(a, b)
}

func TestTranspose(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	got := backend.Transpose(a, 1, 0)
	if !got.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", got.Shape())
	}
	want := []float32{1, 4, 2, 5, 3, 6}
	data := got.AsFloat32()
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("Transpose[%d] = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestReshape(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	got := backend.Reshape(a, tensor.Shape{3, 2})
	if !got.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v, want [3 2]", got.Shape())
	}
	// Row-major data order is preserved.
	data := got.AsFloat32()
	for i, v := range []float32{1, 2, 3, 4, 5, 6} {
		if data[i] != v {
			t.Errorf("Reshape[%d] = %v, want %v", i, data[i], v)
		}
	}
}

func TestReshape_WrongSizePanics(t *testing.T) {
	backend := cpu.New()
	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for element count mismatch")
		}
	}()
	backend.Reshape(a, tensor.Shape{3, 2})
}
