// Package cpu implements the CPU backend. Matrix multiplication is
// delegated to gonum's BLAS reference implementation; elementwise kernels
// are chunked across goroutines.
package cpu

import (
	"fmt"

	"github.com/fusion-ml/qlknn/internal/parallel"
	"github.com/fusion-ml/qlknn/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// binaryOp dispatches an element-wise binary operation by dtype, with a
// fast path for identical shapes and a stride-mapped broadcast path.
func (cpu *CPUBackend) binaryOp(name string, a, b *tensor.RawTensor,
	f32 func(x, y float32) float32, f64 func(x, y float64) float64) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	if !needsBroadcast {
		switch a.DType() {
		case tensor.Float32:
			dst, x, y := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
			parallel.For(len(dst), func(i int) { dst[i] = f32(x[i], y[i]) }, cpu.par)
		case tensor.Float64:
			dst, x, y := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
			parallel.For(len(dst), func(i int) { dst[i] = f64(x[i], y[i]) }, cpu.par)
		}
		return result
	}

	aIdx := broadcastIndexer(outShape, a.Shape())
	bIdx := broadcastIndexer(outShape, b.Shape())
	switch a.DType() {
	case tensor.Float32:
		dst, x, y := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()
		parallel.For(len(dst), func(i int) { dst[i] = f32(x[aIdx(i)], y[bIdx(i)]) }, cpu.par)
	case tensor.Float64:
		dst, x, y := result.AsFloat64(), a.AsFloat64(), b.AsFloat64()
		parallel.For(len(dst), func(i int) { dst[i] = f64(x[aIdx(i)], y[bIdx(i)]) }, cpu.par)
	}
	return result
}

// broadcastIndexer returns a function mapping a flat index in the output
// shape to the corresponding flat index in a source tensor whose shape
// broadcasts to it (size-1 dimensions repeat).
func broadcastIndexer(outShape, srcShape tensor.Shape) func(int) int {
	outStrides := outShape.ComputeStrides()
	srcStrides := srcShape.ComputeStrides()
	offset := len(outShape) - len(srcShape)

	return func(flat int) int {
		src := 0
		for dim := 0; dim < len(outShape); dim++ {
			coord := flat / outStrides[dim] % outShape[dim]
			srcDim := dim - offset
			if srcDim < 0 || srcShape[srcDim] == 1 {
				continue
			}
			src += coord * srcStrides[srcDim]
		}
		return src
	}
}
