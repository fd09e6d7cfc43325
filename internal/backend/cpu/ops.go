package cpu

import (
	"fmt"

	"github.com/fusion-ml/qlknn/internal/parallel"
	"github.com/fusion-ml/qlknn/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("relu: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		parallel.For(len(src), func(i int) {
			if v := src[i]; v > 0 {
				dst[i] = v
			}
		}, cpu.par)
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		parallel.For(len(src), func(i int) {
			if v := src[i]; v > 0 {
				dst[i] = v
			}
		}, cpu.par)
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", x.DType()))
	}

	return result
}

// Reshape returns a view of the tensor under a new shape.
// The number of elements must not change.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose performs a materialized 2D transpose: (M, N) -> (N, M).
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: only 2D tensors supported, got %dD", len(shape)))
	}
	m, n := shape[0], shape[1]

	result, err := tensor.NewRaw(tensor.Shape{n, m}, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				dst[j*m+i] = src[i*n+j]
			}
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				dst[j*m+i] = src[i*n+j]
			}
		}
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}
