package surrogate

import (
	"github.com/fusion-ml/qlknn/internal/tensor"
)

// Predict runs one batched evaluation: validate the named inputs, pack them
// into the dense input tensor, run the forward pass, and unpack the output
// columns into named arrays.
//
// Predict is a pure function of the model and inputs; identical inputs give
// bitwise-identical outputs. A validation failure is terminal for the call
// and surfaced to the caller, never retried.
func Predict[B tensor.Backend](model *Model[B], inputs InputVector) (OutputVector, error) {
	if err := Validate(inputs); err != nil {
		return nil, err
	}

	x, err := Pack(inputs, model.backend)
	if err != nil {
		return nil, err
	}

	return Unpack(model.Forward(x))
}
