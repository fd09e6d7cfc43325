package safetensors_test

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion-ml/qlknn/internal/backend/cpu"
	"github.com/fusion-ml/qlknn/internal/safetensors"
	"github.com/fusion-ml/qlknn/internal/tensor"
)

// writeTestFile creates a minimal SafeTensors file with two F32 tensors.
func writeTestFile(t *testing.T, path string) {
	t.Helper()

	headerMap := map[string]any{
		"__metadata__": map[string]string{"model_name": "test", "precision": "float32"},
		"weight": safetensors.TensorInfo{
			DType:       safetensors.F32,
			Shape:       []int{2, 3},
			DataOffsets: [2]int64{0, 24},
		},
		"bias": safetensors.TensorInfo{
			DType:       safetensors.F32,
			Shape:       []int{3},
			DataOffsets: [2]int64{24, 36},
		},
	}
	headerJSON, err := json.Marshal(headerMap)
	require.NoError(t, err)

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	require.NoError(t, binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))))
	_, err = file.Write(headerJSON)
	require.NoError(t, err)

	for _, v := range []float32{1, 2, 3, 4, 5, 6, 0.1, 0.2, 0.3} {
		require.NoError(t, binary.Write(file, binary.LittleEndian, math.Float32bits(v)))
	}
}

func TestOpenAndReadTensors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	writeTestFile(t, path)

	reader, err := safetensors.Open(path)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "test", reader.Metadata()["model_name"])
	assert.ElementsMatch(t, []string{"weight", "bias"}, reader.TensorNames())

	info, ok := reader.Info("weight")
	require.True(t, ok)
	assert.Equal(t, safetensors.F32, info.DType)
	assert.Equal(t, []int{2, 3}, info.Shape)

	_, ok = reader.Info("missing")
	assert.False(t, ok)
}

func TestLoadTensor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	writeTestFile(t, path)

	reader, err := safetensors.Open(path)
	require.NoError(t, err)
	defer reader.Close()

	backend := cpu.New()
	weight, err := reader.LoadTensor("weight", backend)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, weight.Shape())
	assert.Equal(t, tensor.Float32, weight.DType())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, weight.AsFloat32())

	bias, err := reader.LoadTensor("bias", backend)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.1, 0.2, 0.3}, bias.AsFloat32(), 1e-7)

	_, err = reader.LoadTensor("missing", backend)
	assert.Error(t, err)
}

func TestLoadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	writeTestFile(t, path)

	reader, err := safetensors.Open(path)
	require.NoError(t, err)
	defer reader.Close()

	tensors, err := reader.LoadAll(cpu.New())
	require.NoError(t, err)
	assert.Len(t, tensors, 2)
	assert.Contains(t, tensors, "weight")
	assert.Contains(t, tensors, "bias")
}

func TestOpenNotFound(t *testing.T) {
	_, err := safetensors.Open(filepath.Join(t.TempDir(), "nope.safetensors"))
	assert.ErrorIs(t, err, safetensors.ErrNotFound)
}

func TestOpenGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.safetensors")
	require.NoError(t, os.WriteFile(path, []byte("this is not a tensor container"), 0o600))

	_, err := safetensors.Open(path)
	assert.ErrorIs(t, err, safetensors.ErrInvalidFormat)
}

func TestOpenTruncatedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated.safetensors")

	file, err := os.Create(path)
	require.NoError(t, err)
	// Claims a 1KB header but provides no bytes after the size field.
	require.NoError(t, binary.Write(file, binary.LittleEndian, uint64(1024)))
	require.NoError(t, file.Close())

	_, err = safetensors.Open(path)
	assert.ErrorIs(t, err, safetensors.ErrInvalidFormat)
}

func TestLoadTensorTruncatedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.safetensors")

	headerMap := map[string]any{
		"weight": safetensors.TensorInfo{
			DType:       safetensors.F32,
			Shape:       []int{4},
			DataOffsets: [2]int64{0, 16},
		},
	}
	headerJSON, err := json.Marshal(headerMap)
	require.NoError(t, err)

	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))))
	_, err = file.Write(headerJSON)
	require.NoError(t, err)
	// Only 2 of the promised 4 floats.
	for _, v := range []float32{1, 2} {
		require.NoError(t, binary.Write(file, binary.LittleEndian, math.Float32bits(v)))
	}
	require.NoError(t, file.Close())

	reader, err := safetensors.Open(path)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.LoadTensor("weight", cpu.New())
	assert.ErrorIs(t, err, safetensors.ErrInvalidFormat)
}
