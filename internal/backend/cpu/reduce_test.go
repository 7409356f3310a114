package cpu_test

import (
	"testing"

	"github.com/anchor-ml/anchor/internal/backend/cpu"
	"github.com/anchor-ml/anchor/internal/tensor"
)

func TestSumMean(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	sum := backend.Sum(x)
	if !sum.Shape().Equal(tensor.Shape{1}) {
		t.Fatalf("Sum shape = %v, want [1]", sum.Shape())
	}
	if got := sum.AsFloat32()[0]; got != 10 {
		t.Errorf("Sum = %v, want 10", got)
	}

	if got := backend.Mean(x).AsFloat32()[0]; got != 2.5 {
		t.Errorf("Mean = %v, want 2.5", got)
	}
}

func TestSumDim(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	rows := backend.SumDim(x, 1, false)
	if !rows.Shape().Equal(tensor.Shape{2}) {
		t.Fatalf("SumDim(1) shape = %v, want [2]", rows.Shape())
	}
	for i, want := range []float32{6, 15} {
		if got := rows.AsFloat32()[i]; got != want {
			t.Errorf("SumDim(1)[%d] = %v, want %v", i, got, want)
		}
	}

	cols := backend.SumDim(x, 0, true)
	if !cols.Shape().Equal(tensor.Shape{1, 3}) {
		t.Fatalf("SumDim(0, keep) shape = %v, want [1 3]", cols.Shape())
	}
	for i, want := range []float32{5, 7, 9} {
		if got := cols.AsFloat32()[i]; got != want {
			t.Errorf("SumDim(0)[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestSumDim_NegativeDim(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	got := backend.SumDim(x, -1, false).AsFloat32()
	for i, want := range []float32{3, 7} {
		if got[i] != want {
			t.Errorf("SumDim(-1)[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestMeanDim(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{2, 4, 6, 8}, tensor.Shape{2, 2})

	got := backend.MeanDim(x, 1, false).AsFloat32()
	for i, want := range []float32{3, 7} {
		if got[i] != want {
			t.Errorf("MeanDim(1)[%d] = %v, want %v", i, got[i], want)
		}
	}
}

func TestArgmax(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{1, 5, 3, 9, 2, 4}, tensor.Shape{2, 3})

	got := backend.Argmax(x, 1)
	if got.DType() != tensor.Int32 {
		t.Fatalf("Argmax dtype = %s, want int32", got.DType())
	}
	for i, want := range []int32{1, 0} {
		if v := got.AsInt32()[i]; v != want {
			t.Errorf("Argmax[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestSum_Int(t *testing.T) {
	backend := cpu.New()
	x, err := tensor.FromSlice([]int64{1, 2, 3}, tensor.Shape{3}, backend)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if got := backend.Sum(x.Raw()).AsInt64()[0]; got != 6 {
		t.Errorf("Sum int64 = %v, want 6", got)
	}
}
