package surrogate

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Batch size bounds for one evaluation.
const (
	// MinGridSize is the smallest accepted batch (finite differences need
	// at least two cells).
	MinGridSize = 2
	// MaxGridSize is the largest accepted batch.
	MaxGridSize = 10000
)

// Validate checks an InputVector before evaluation: all 10 names present,
// all arrays of equal length, no NaN or infinity anywhere, and batch size
// within [MinGridSize, MaxGridSize].
//
// Checks run eagerly over the full arrays in fixed order (missing parameter,
// then shape, then numeric scan, then size bounds) before any tensor is
// constructed. Validation is read-only.
func Validate(inputs InputVector) error {
	for _, name := range InputNames {
		if _, ok := inputs[name]; !ok {
			return &MissingParameterError{Name: name}
		}
	}

	batch := len(inputs[InputNames[0]])
	for _, name := range InputNames {
		if n := len(inputs[name]); n != batch {
			return &ShapeError{
				Name:    name,
				Details: fmt.Sprintf("length %d disagrees with %q (length %d)", n, InputNames[0], batch),
			}
		}
	}

	for _, name := range InputNames {
		for i, v := range inputs[name] {
			if math32.IsNaN(v) || math32.IsInf(v, 0) {
				return &NumericError{Name: name, Index: i, Value: v}
			}
		}
	}

	if batch < MinGridSize {
		return fmt.Errorf("%w: got %d, need at least %d", ErrGridTooSmall, batch, MinGridSize)
	}
	if batch > MaxGridSize {
		return fmt.Errorf("%w: got %d, maximum is %d", ErrGridTooLarge, batch, MaxGridSize)
	}

	return nil
}
