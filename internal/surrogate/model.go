// Package surrogate implements the QLKNN_7_11 turbulent-transport surrogate:
// weight loading and validation, the batched forward pass, the named
// parameter mapping on both sides of the network, and the combination of
// per-mode fluxes into aggregate transport coefficients.
package surrogate

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/fusion-ml/qlknn/internal/nn"
	"github.com/fusion-ml/qlknn/internal/safetensors"
	"github.com/fusion-ml/qlknn/internal/tensor"
)

// Model is the fixed six-layer surrogate network: five hidden layers of 133
// units with ReLU activations and a linear 8-unit output layer.
//
// A Model is immutable after construction and safe for concurrent Forward
// calls.
type Model[B tensor.Backend] struct {
	layers    [NumLayers]*nn.Linear[B]
	backend   B
	numParams int
}

// NewModel builds a Model from validated weights.
func NewModel[B tensor.Backend](weights *Weights[B], backend B) (*Model[B], error) {
	m := &Model[B]{backend: backend}

	for i := 0; i < NumLayers; i++ {
		layer, err := nn.NewLinear(weights.layer(i))
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		m.layers[i] = layer
		m.numParams += layer.NumParameters()
	}

	if m.numParams != TotalParameters {
		return nil, fmt.Errorf("parameter count %d, want %d", m.numParams, TotalParameters)
	}

	return m, nil
}

// LoadModel loads the surrogate's weights from a SafeTensors file and builds
// the network.
//
// Fails with safetensors.ErrNotFound or safetensors.ErrInvalidFormat on file
// problems, MissingParameterError if any of the 12 required tensor keys is
// absent, and ShapeMismatchError if a tensor disagrees with the fixed
// architecture.
func LoadModel[B tensor.Backend](path string, backend B) (*Model[B], error) {
	reader, err := safetensors.Open(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	tensors, err := reader.LoadAll(backend)
	if err != nil {
		return nil, err
	}

	weights, err := NewWeights(tensors, backend)
	if err != nil {
		return nil, err
	}

	model, err := NewModel(weights, backend)
	if err != nil {
		return nil, err
	}

	klog.V(1).Infof("qlknn: loaded %d parameters from %q (metadata: %v)",
		model.numParams, path, reader.Metadata())
	return model, nil
}

// Forward runs the batched forward pass.
//
// Input shape: [B, 10]; output shape: [B, 8]. ReLU is applied after each
// hidden layer; the output layer is linear. The pass is a pure function of
// the input: no hidden state, safe to call repeatedly and concurrently.
func (m *Model[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	y := x
	for i, layer := range m.layers {
		y = layer.Forward(y)
		if i < NumLayers-1 {
			y = y.ReLU()
		}
	}
	return y
}

// NumParameters returns the total scalar parameter count.
func (m *Model[B]) NumParameters() int {
	return m.numParams
}

// Backend returns the model's computation backend.
func (m *Model[B]) Backend() B {
	return m.backend
}
