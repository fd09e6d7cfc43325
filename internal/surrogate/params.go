package surrogate

import (
	"fmt"

	"github.com/fusion-ml/qlknn/internal/tensor"
)

// InputNames are the 10 input parameters in the network's feature order:
// normalized logarithmic gradients of Ti, Te, ne, ni; safety factor;
// magnetic shear; normalized radius; temperature ratio; log collisionality;
// ion density fraction.
var InputNames = []string{
	"Ati", "Ate", "Ane", "Ani", "q", "smag", "x", "Ti_Te", "LogNuStar", "normni",
}

// OutputNames are the 8 per-mode flux outputs in the network's column order.
//
// The order is a load-bearing contract baked into the weight file. It was
// verified against the ONNX export's graph outputs (the converter's metadata
// JSON carries a stale pre-correction list with efiITG first); if the weights
// are ever re-derived from a different source model, re-verify this list
// against that model's true output order.
var OutputNames = []string{
	"efeITG", "efiITG", "pfeITG", "efeTEM", "efiTEM", "pfeTEM", "efeETG", "gamma_max",
}

// InputVector maps each of the 10 input names to a length-B array, one value
// per radial grid cell.
type InputVector map[string][]float32

// OutputVector maps each of the 8 output names to a length-B array.
type OutputVector map[string][]float32

// Pack converts named input arrays into the dense [B, 10] tensor the network
// consumes, columns in InputNames order.
//
// Inputs are expected to have passed Validate; missing names are still
// rejected here with MissingParameterError as defense in depth.
func Pack[B tensor.Backend](inputs InputVector, backend B) (*tensor.Tensor[float32, B], error) {
	first, ok := inputs[InputNames[0]]
	if !ok {
		return nil, &MissingParameterError{Name: InputNames[0]}
	}
	batch := len(first)

	x := tensor.Zeros[float32](tensor.Shape{batch, NumInputs}, backend)
	data := x.Data()

	for col, name := range InputNames {
		values, ok := inputs[name]
		if !ok {
			return nil, &MissingParameterError{Name: name}
		}
		if len(values) != batch {
			return nil, &ShapeError{Name: name, Details: fmt.Sprintf("length %d, want %d", len(values), batch)}
		}
		for row, v := range values {
			data[row*NumInputs+col] = v
		}
	}

	return x, nil
}

// Unpack splits the network's dense [B, 8] output tensor into named arrays,
// columns in OutputNames order.
func Unpack[B tensor.Backend](output *tensor.Tensor[float32, B]) (OutputVector, error) {
	shape := output.Shape()
	if len(shape) != 2 || shape[1] != NumOutputs {
		return nil, &ShapeError{Details: fmt.Sprintf("output shape %v, want [B, %d]", shape, NumOutputs)}
	}
	batch := shape[0]
	data := output.Data()

	outputs := make(OutputVector, NumOutputs)
	for col, name := range OutputNames {
		values := make([]float32, batch)
		for row := range values {
			values[row] = data[row*NumOutputs+col]
		}
		outputs[name] = values
	}

	return outputs, nil
}
