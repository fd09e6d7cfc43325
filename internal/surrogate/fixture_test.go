package surrogate_test

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fusion-ml/qlknn/internal/backend/cpu"
	"github.com/fusion-ml/qlknn/internal/safetensors"
	"github.com/fusion-ml/qlknn/internal/surrogate"
	"github.com/fusion-ml/qlknn/internal/tensor"
)

// fixtureDims returns the (in, out) feature counts of affine layer i.
func fixtureDims(i int) (in, out int) {
	in, out = surrogate.HiddenSize, surrogate.HiddenSize
	if i == 0 {
		in = surrogate.NumInputs
	}
	if i == surrogate.NumLayers-1 {
		out = surrogate.NumOutputs
	}
	return in, out
}

// fixtureTensors builds a full architecture-shaped weight map with small
// deterministic pseudo-random values.
func fixtureTensors(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()
	rng := rand.New(rand.NewSource(7))

	newRaw := func(shape tensor.Shape) *tensor.RawTensor {
		raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
		require.NoError(t, err)
		data := raw.AsFloat32()
		for i := range data {
			data[i] = (rng.Float32() - 0.5) * 0.1
		}
		return raw
	}

	tensors := make(map[string]*tensor.RawTensor)
	for i := 0; i < surrogate.NumLayers; i++ {
		in, out := fixtureDims(i)
		tensors[surrogate.WeightKey(i)] = newRaw(tensor.Shape{out, in})
		tensors[surrogate.BiasKey(i)] = newRaw(tensor.Shape{out})
	}
	return tensors
}

// fixtureModel builds a model from fixtureTensors.
func fixtureModel(t *testing.T) (*surrogate.Model[*cpu.CPUBackend], *cpu.CPUBackend) {
	t.Helper()
	backend := cpu.New()

	weights, err := surrogate.NewWeights(fixtureTensors(t), backend)
	require.NoError(t, err)
	model, err := surrogate.NewModel(weights, backend)
	require.NoError(t, err)
	return model, backend
}

// fixtureInputs builds a plausible InputVector with batch rows modeled on
// the reference sample [Ati, Ate, Ane, Ani, q, smag, x, Ti_Te, LogNuStar,
// normni] = [5, 5, 1, 1, 2, 1, 0.3, 1, -3, 1].
func fixtureInputs(batch int) surrogate.InputVector {
	base := map[string]float32{
		"Ati": 5, "Ate": 5, "Ane": 1, "Ani": 1, "q": 2,
		"smag": 1, "x": 0.3, "Ti_Te": 1, "LogNuStar": -3, "normni": 1,
	}

	inputs := make(surrogate.InputVector, len(base))
	for name, v := range base {
		values := make([]float32, batch)
		for i := range values {
			values[i] = v + float32(i)*0.01
		}
		inputs[name] = values
	}
	return inputs
}

// writeWeightFile writes a full architecture-shaped SafeTensors weight file.
// Tensors in skip are omitted; reshape overrides a tensor's header shape.
func writeWeightFile(t *testing.T, path string, skip map[string]bool, reshape map[string][]int) {
	t.Helper()
	rng := rand.New(rand.NewSource(11))

	type entry struct {
		name string
		info safetensors.TensorInfo
		data []float32
	}

	var entries []entry
	var offset int64
	addTensor := func(name string, shape []int) {
		if skip[name] {
			return
		}
		if override, ok := reshape[name]; ok {
			shape = override
		}
		n := 1
		for _, dim := range shape {
			n *= dim
		}
		data := make([]float32, n)
		for i := range data {
			data[i] = (rng.Float32() - 0.5) * 0.1
		}
		size := int64(n * 4)
		entries = append(entries, entry{
			name: name,
			info: safetensors.TensorInfo{
				DType:       safetensors.F32,
				Shape:       shape,
				DataOffsets: [2]int64{offset, offset + size},
			},
			data: data,
		})
		offset += size
	}

	for i := 0; i < surrogate.NumLayers; i++ {
		in, out := fixtureDims(i)
		addTensor(surrogate.WeightKey(i), []int{out, in})
		addTensor(surrogate.BiasKey(i), []int{out})
	}

	headerMap := map[string]any{
		"__metadata__": map[string]string{"model_name": "qlknn_7_11", "precision": "float32"},
	}
	for _, e := range entries {
		headerMap[e.name] = e.info
	}
	headerJSON, err := json.Marshal(headerMap)
	require.NoError(t, err)

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))))
	_, err = file.Write(headerJSON)
	require.NoError(t, err)
	for _, e := range entries {
		for _, v := range e.data {
			require.NoError(t, binary.Write(file, binary.LittleEndian, math.Float32bits(v)))
		}
	}
}
