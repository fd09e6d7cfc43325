package surrogate

import (
	"fmt"

	"github.com/fusion-ml/qlknn/internal/tensor"
)

// Fixed QLKNN_7_11 architecture constants.
const (
	// NumInputs is the number of normalized physical input parameters.
	NumInputs = 10
	// HiddenSize is the width of each of the five hidden layers.
	HiddenSize = 133
	// NumOutputs is the number of per-mode flux outputs.
	NumOutputs = 8
	// NumLayers is the number of affine layers (five hidden, one output).
	NumLayers = 6
	// TotalParameters is the exact scalar parameter count:
	// 10*133+133 + 4*(133*133+133) + 133*8+8.
	TotalParameters = 73823
)

// layerIndices are the fused-module indices used in the weight file's key
// naming, inherited from the original network export (activations occupy
// the odd slots).
var layerIndices = [NumLayers]int{0, 2, 4, 6, 8, 10}

// layerDims returns the (in, out) feature counts of affine layer i.
func layerDims(i int) (in, out int) {
	in, out = HiddenSize, HiddenSize
	if i == 0 {
		in = NumInputs
	}
	if i == NumLayers-1 {
		out = NumOutputs
	}
	return in, out
}

// WeightKey returns the weight tensor key of affine layer i in the store.
func WeightKey(i int) string {
	return fmt.Sprintf("_network.model.%d.weight", layerIndices[i])
}

// BiasKey returns the bias tensor key of affine layer i in the store.
func BiasKey(i int) string {
	return fmt.Sprintf("_network.model.%d.bias", layerIndices[i])
}

// WeightKeys returns all 12 required tensor keys in layer order.
func WeightKeys() []string {
	keys := make([]string, 0, 2*NumLayers)
	for i := 0; i < NumLayers; i++ {
		keys = append(keys, WeightKey(i), BiasKey(i))
	}
	return keys
}

// Weights holds the 12 validated tensors of the fixed six-layer topology.
// Populating this struct once at load time replaces string-keyed lookups at
// call time; after NewWeights succeeds every field is non-nil, float32, and
// exactly the architecture's shape. Fields must not be mutated afterwards.
type Weights[B tensor.Backend] struct {
	Layer0Weight  *tensor.Tensor[float32, B] // [133, 10]
	Layer0Bias    *tensor.Tensor[float32, B] // [133]
	Layer2Weight  *tensor.Tensor[float32, B] // [133, 133]
	Layer2Bias    *tensor.Tensor[float32, B] // [133]
	Layer4Weight  *tensor.Tensor[float32, B] // [133, 133]
	Layer4Bias    *tensor.Tensor[float32, B] // [133]
	Layer6Weight  *tensor.Tensor[float32, B] // [133, 133]
	Layer6Bias    *tensor.Tensor[float32, B] // [133]
	Layer8Weight  *tensor.Tensor[float32, B] // [133, 133]
	Layer8Bias    *tensor.Tensor[float32, B] // [133]
	Layer10Weight *tensor.Tensor[float32, B] // [8, 133]
	Layer10Bias   *tensor.Tensor[float32, B] // [8]
}

// NewWeights validates a loaded tensor map against the fixed architecture
// and populates the typed weight struct.
//
// Fails with MissingParameterError if any of the 12 required keys is absent
// and ShapeMismatchError if any tensor's shape disagrees with the
// architecture (layer i weight must be [out_i, in_i], bias [out_i]).
func NewWeights[B tensor.Backend](tensors map[string]*tensor.RawTensor, backend B) (*Weights[B], error) {
	w := &Weights[B]{}

	for i := 0; i < NumLayers; i++ {
		in, out := layerDims(i)

		weight, err := requireTensor(tensors, WeightKey(i), tensor.Shape{out, in}, backend)
		if err != nil {
			return nil, err
		}
		bias, err := requireTensor(tensors, BiasKey(i), tensor.Shape{out}, backend)
		if err != nil {
			return nil, err
		}

		switch layerIndices[i] {
		case 0:
			w.Layer0Weight, w.Layer0Bias = weight, bias
		case 2:
			w.Layer2Weight, w.Layer2Bias = weight, bias
		case 4:
			w.Layer4Weight, w.Layer4Bias = weight, bias
		case 6:
			w.Layer6Weight, w.Layer6Bias = weight, bias
		case 8:
			w.Layer8Weight, w.Layer8Bias = weight, bias
		case 10:
			w.Layer10Weight, w.Layer10Bias = weight, bias
		}
	}

	return w, nil
}

// requireTensor fetches one named tensor and checks dtype and shape.
func requireTensor[B tensor.Backend](tensors map[string]*tensor.RawTensor, key string, want tensor.Shape, backend B) (*tensor.Tensor[float32, B], error) {
	raw, ok := tensors[key]
	if !ok {
		return nil, &MissingParameterError{Name: key}
	}
	if raw.DType() != tensor.Float32 {
		return nil, fmt.Errorf("tensor %q: dtype %s, want float32", key, raw.DType())
	}
	if !raw.Shape().Equal(want) {
		return nil, &ShapeMismatchError{Key: key, Want: want, Got: raw.Shape()}
	}
	return tensor.New[float32, B](raw, backend), nil
}

// layer returns the (weight, bias) pair of affine layer i.
func (w *Weights[B]) layer(i int) (weight, bias *tensor.Tensor[float32, B]) {
	switch layerIndices[i] {
	case 0:
		return w.Layer0Weight, w.Layer0Bias
	case 2:
		return w.Layer2Weight, w.Layer2Bias
	case 4:
		return w.Layer4Weight, w.Layer4Bias
	case 6:
		return w.Layer6Weight, w.Layer6Bias
	case 8:
		return w.Layer8Weight, w.Layer8Bias
	case 10:
		return w.Layer10Weight, w.Layer10Bias
	default:
		panic(fmt.Sprintf("no affine layer %d", i))
	}
}
