// Package nn provides the inference-only neural network layers used by the
// surrogate model.
package nn

import (
	"fmt"

	"github.com/fusion-ml/qlknn/internal/tensor"
)

// Linear is a fully connected (dense) layer computing y = x @ W.T + b.
//
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights come from a loaded weight store and are never mutated, so a
// Linear is safe for concurrent Forward calls.
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *tensor.Tensor[float32, B] // [out_features, in_features]
	bias        *tensor.Tensor[float32, B] // [out_features]
}

// NewLinear creates a Linear layer from pre-loaded weight and bias tensors.
// Returns an error if the shapes are inconsistent with each other.
func NewLinear[B tensor.Backend](weight, bias *tensor.Tensor[float32, B]) (*Linear[B], error) {
	wShape := weight.Shape()
	if len(wShape) != 2 {
		return nil, fmt.Errorf("linear: weight must be 2D [out, in], got shape %v", wShape)
	}
	outFeatures, inFeatures := wShape[0], wShape[1]

	bShape := bias.Shape()
	if len(bShape) != 1 || bShape[0] != outFeatures {
		return nil, fmt.Errorf("linear: bias shape %v does not match weight shape %v", bShape, wShape)
	}

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}, nil
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	// [batch, in] @ [in, out] = [batch, out]
	output := input.MatMul(l.weight.T())

	// Broadcast bias [out] as [1, out] across the batch.
	return output.Add(l.bias.Reshape(1, l.outFeatures))
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}

// NumParameters returns the number of scalar parameters in the layer.
func (l *Linear[B]) NumParameters() int {
	return l.weight.NumElements() + l.bias.NumElements()
}
