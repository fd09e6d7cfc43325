// Package surrogate is the public API of the QLKNN transport surrogate.
//
// It wraps the internal engine with a CPU-backed model type and exports the
// contract the host transport solver consumes: load a model once, pass it
// explicitly to every Predict call, and combine the per-mode outputs.
//
// Example:
//
//	model, err := surrogate.LoadModel("qlknn_7_11_weights.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	outputs, err := surrogate.Predict(model, inputs)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	coeffs := surrogate.CombineFluxes(outputs)
package surrogate

import (
	"github.com/fusion-ml/qlknn/internal/backend/cpu"
	"github.com/fusion-ml/qlknn/internal/safetensors"
	internal "github.com/fusion-ml/qlknn/internal/surrogate"
)

// Model is the CPU-backed surrogate network. Immutable after LoadModel and
// safe to share across concurrent Predict calls.
type Model = internal.Model[*cpu.CPUBackend]

// InputVector maps each of the 10 input names to a length-B array.
type InputVector = internal.InputVector

// OutputVector maps each of the 8 output names to a length-B array.
type OutputVector = internal.OutputVector

// TransportCoefficients are the aggregate transport quantities.
type TransportCoefficients = internal.TransportCoefficients

// Typed errors surfaced by LoadModel and Predict.
type (
	MissingParameterError = internal.MissingParameterError
	ShapeMismatchError    = internal.ShapeMismatchError
	ShapeError            = internal.ShapeError
	NumericError          = internal.NumericError
)

// Sentinel errors surfaced by LoadModel and Predict.
var (
	ErrNotFound      = safetensors.ErrNotFound
	ErrInvalidFormat = safetensors.ErrInvalidFormat
	ErrGridTooSmall  = internal.ErrGridTooSmall
	ErrGridTooLarge  = internal.ErrGridTooLarge
)

// Architecture constants.
const (
	NumInputs       = internal.NumInputs
	NumOutputs      = internal.NumOutputs
	MinGridSize     = internal.MinGridSize
	MaxGridSize     = internal.MaxGridSize
	TotalParameters = internal.TotalParameters
)

// InputNames are the 10 input parameters in the network's feature order.
var InputNames = internal.InputNames

// OutputNames are the 8 flux outputs in the network's column order.
var OutputNames = internal.OutputNames

// LoadModel loads and validates the surrogate's weights from a SafeTensors
// file and builds the network on the CPU backend.
func LoadModel(path string) (*Model, error) {
	return internal.LoadModel(path, cpu.New())
}

// Predict validates the named inputs and runs one batched evaluation.
func Predict(model *Model, inputs InputVector) (OutputVector, error) {
	return internal.Predict(model, inputs)
}

// Validate checks an InputVector without evaluating it.
func Validate(inputs InputVector) error {
	return internal.Validate(inputs)
}

// CombineFluxes sums per-mode flux predictions into aggregate transport
// coefficients. Missing modes count as zero.
func CombineFluxes(outputs OutputVector) TransportCoefficients {
	return internal.Combine(outputs)
}
