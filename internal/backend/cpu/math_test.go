package cpu_test

import (
	"math"
	"testing"

	"github.com/anchor-ml/anchor/internal/backend/cpu"
	"github.com/anchor-ml/anchor/internal/tensor"
)

func TestExpLogSqrtAbs(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{1, 4, 9}, tensor.Shape{3})

	exp := backend.Exp(x).AsFloat32()
	logv := backend.Log(x).AsFloat32()
	sqrt := backend.Sqrt(x).AsFloat32()

	for i, v := range []float64{1, 4, 9} {
		if !almostEqualRel(float64(exp[i]), math.Exp(v)) {
			t.Errorf("Exp[%d] = %v, want %v", i, exp[i], math.Exp(v))
		}
		if !almostEqual(float64(logv[i]), math.Log(v)) {
			t.Errorf("Log[%d] = %v, want %v", i, logv[i], math.Log(v))
		}
		if !almostEqual(float64(sqrt[i]), math.Sqrt(v)) {
			t.Errorf("Sqrt[%d] = %v, want %v", i, sqrt[i], math.Sqrt(v))
		}
	}

	neg := fromSlice(t, []float32{-2, 0, 3}, tensor.Shape{3})
	abs := backend.Abs(neg).AsFloat32()
	for i, want := range []float32{2, 0, 3} {
		if abs[i] != want {
			t.Errorf("Abs[%d] = %v, want %v", i, abs[i], want)
		}
	}
}

func TestLog_NonPositivePanics(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{-1}, tensor.Shape{1})

	defer func() {
		if recover() == nil {
			t.Error("expected panic for log of negative value")
		}
	}()
	backend.Log(x)
}

func TestSoftmax_Rows(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{1, 2, 3, 1, 1, 1}, tensor.Shape{2, 3})

	got := backend.Softmax(x, 1).AsFloat32()

	// Row 0: exp(1),exp(2),exp(3) normalized.
	e1, e2, e3 := math.Exp(1), math.Exp(2), math.Exp(3)
	sum := e1 + e2 + e3
	want0 := []float64{e1 / sum, e2 / sum, e3 / sum}
	for i := range want0 {
		if !almostEqual(float64(got[i]), want0[i]) {
			t.Errorf("Softmax row0[%d] = %v, want %v", i, got[i], want0[i])
		}
	}

	// Row 1: uniform.
	for i := 3; i < 6; i++ {
		if !almostEqual(float64(got[i]), 1.0/3) {
			t.Errorf("Softmax row1[%d] = %v, want 1/3", i-3, got[i])
		}
	}
}

func TestSoftmax_RowsSumToOne(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{100, 101, 102, -50, 0, 50}, tensor.Shape{2, 3})

	// Large logits exercise the max-shift stability path.
	got := backend.Softmax(x, 1).AsFloat32()
	for r := 0; r < 2; r++ {
		var sum float64
		for c := 0; c < 3; c++ {
			v := float64(got[r*3+c])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("Softmax produced %v at [%d %d]", v, r, c)
			}
			sum += v
		}
		if !almostEqual(sum, 1) {
			t.Errorf("row %d sums to %v, want 1", r, sum)
		}
	}
}

func TestSoftmax_Columns(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{0, 0, 0, 0}, tensor.Shape{2, 2})

	got := backend.Softmax(x, 0).AsFloat32()
	for i := range got {
		if !almostEqual(float64(got[i]), 0.5) {
			t.Errorf("Softmax dim0[%d] = %v, want 0.5", i, got[i])
		}
	}
}

func TestNormalizeDim_Columns(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{3, 0, 4, 2}, tensor.Shape{2, 2})

	got := backend.NormalizeDim(x, 0).AsFloat32()

	// Column 0 is (3,4) with norm 5; column 1 is (0,2) with norm 2.
	want := []float64{0.6, 0, 0.8, 1}
	for i := range want {
		if !almostEqual(float64(got[i]), want[i]) {
			t.Errorf("NormalizeDim[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizeDim_ColumnsUnitNorm(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{1, -2, 3, 4, -5, 6}, tensor.Shape{2, 3})

	got := backend.NormalizeDim(x, 0).AsFloat32()
	for c := 0; c < 3; c++ {
		var norm float64
		for r := 0; r < 2; r++ {
			v := float64(got[r*3+c])
			norm += v * v
		}
		if !almostEqual(norm, 1) {
			t.Errorf("column %d squared norm = %v, want 1", c, norm)
		}
	}
}

func TestNormalizeDim_Rows(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{3, 4, 0, 5}, tensor.Shape{2, 2})

	got := backend.NormalizeDim(x, 1).AsFloat32()
	want := []float64{0.6, 0.8, 0, 1}
	for i := range want {
		if !almostEqual(float64(got[i]), want[i]) {
			t.Errorf("NormalizeDim rows[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizeDim_ZeroVector(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float32{0, 0}, tensor.Shape{2, 1})

	// The epsilon clamp must keep a zero column finite.
	got := backend.NormalizeDim(x, 0).AsFloat32()
	for i, v := range got {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Errorf("zero column produced %v at %d", v, i)
		}
	}
}
