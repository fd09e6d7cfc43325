package surrogate

import (
	"errors"
	"fmt"

	"github.com/fusion-ml/qlknn/internal/tensor"
)

// Sentinel errors for batch size bounds.
var (
	// ErrGridTooSmall reports a batch below the minimum grid size.
	ErrGridTooSmall = errors.New("grid too small: batch size below minimum")
	// ErrGridTooLarge reports a batch above the maximum grid size.
	ErrGridTooLarge = errors.New("grid too large: batch size above maximum")
)

// MissingParameterError reports an absent weight tensor key or named input.
type MissingParameterError struct {
	Name string
}

// Error implements the error interface.
func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter %q", e.Name)
}

// ShapeMismatchError reports a weight tensor whose shape disagrees with the
// fixed architecture.
type ShapeMismatchError struct {
	Key  string
	Want tensor.Shape
	Got  tensor.Shape
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch for %q: want %v, got %v", e.Key, e.Want, e.Got)
}

// ShapeError reports named input arrays that disagree with each other.
type ShapeError struct {
	Name    string
	Details string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("shape error for %q: %s", e.Name, e.Details)
	}
	return fmt.Sprintf("shape error: %s", e.Details)
}

// NumericError reports a NaN or infinite value in a named input array.
type NumericError struct {
	Name  string
	Index int
	Value float32
}

// Error implements the error interface.
func (e *NumericError) Error() string {
	return fmt.Sprintf("non-finite value %v in %q at index %d", e.Value, e.Name, e.Index)
}
