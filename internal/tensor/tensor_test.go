package tensor_test

import (
	"math"
	"testing"

	"github.com/anchor-ml/anchor/internal/backend/cpu"
	"github.com/anchor-ml/anchor/internal/tensor"
)

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if !x.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("shape = %v, want [2 3]", x.Shape())
	}
	if x.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %v, want 6", x.At(1, 2))
	}
}

func TestFromSlice_LengthMismatch(t *testing.T) {
	backend := cpu.New()
	if _, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend); err == nil {
		t.Error("expected error for 3 elements in a [2 2] shape")
	}
}

func TestZerosOnesFull(t *testing.T) {
	backend := cpu.New()

	z := tensor.Zeros[float32](tensor.Shape{3}, backend)
	for i, v := range z.Data() {
		if v != 0 {
			t.Errorf("Zeros[%d] = %v", i, v)
		}
	}

	o := tensor.Ones[float64](tensor.Shape{3}, backend)
	for i, v := range o.Data() {
		if v != 1 {
			t.Errorf("Ones[%d] = %v", i, v)
		}
	}

	f := tensor.Full[int32](tensor.Shape{2, 2}, 7, backend)
	for i, v := range f.Data() {
		if v != 7 {
			t.Errorf("Full[%d] = %v", i, v)
		}
	}
}

func TestItem(t *testing.T) {
	backend := cpu.New()
	x, _ := tensor.FromSlice([]float32{42}, tensor.Shape{1}, backend)
	if x.Item() != 42 {
		t.Errorf("Item() = %v, want 42", x.Item())
	}
}

func TestRandn_Distribution(t *testing.T) {
	backend := cpu.New()
	x := tensor.Randn[float64](tensor.Shape{10000}, backend)

	var sum, sumSq float64
	for _, v := range x.Data() {
		sum += v
		sumSq += v * v
	}
	n := float64(x.NumElements())
	mean := sum / n
	variance := sumSq/n - mean*mean

	if math.Abs(mean) > 0.1 {
		t.Errorf("sample mean = %v, want ~0", mean)
	}
	if math.Abs(variance-1) > 0.1 {
		t.Errorf("sample variance = %v, want ~1", variance)
	}
}

func TestDetach_SharesData(t *testing.T) {
	backend := cpu.New()
	x, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	d := x.Detach()

	d.Data()[0] = 9
	if x.At(0) != 9 {
		t.Error("Detach should share underlying data")
	}
	if d.Grad() != nil {
		t.Error("Detach should drop the gradient")
	}
}

func TestRawTensor_RefCounting(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	if !raw.IsUnique() {
		t.Error("fresh tensor should be unique")
	}

	clone := raw.Clone()
	if raw.IsUnique() {
		t.Error("tensor with a live clone should not be unique")
	}

	clone.Release()
	if !raw.IsUnique() {
		t.Error("tensor should be unique again after clone release")
	}

	restore := raw.ForceNonUnique()
	if raw.IsUnique() {
		t.Error("ForceNonUnique should make IsUnique report false")
	}
	restore()
	if !raw.IsUnique() {
		t.Error("restore func should undo ForceNonUnique")
	}
}
