// Package safetensors reads the SafeTensors named-tensor container used to
// ship the surrogate's weights.
//
// File layout:
//
//	[8 bytes: header_size (uint64 LE)]
//	[header_size bytes: JSON header]
//	[tensor data: raw bytes]
package safetensors

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/fusion-ml/qlknn/internal/tensor"
)

// Sentinel errors for weight store loading.
var (
	// ErrNotFound reports a missing weight file.
	ErrNotFound = errors.New("weight file not found")
	// ErrInvalidFormat reports a file that cannot be parsed as a
	// SafeTensors container.
	ErrInvalidFormat = errors.New("invalid safetensors format")
)

// maxHeaderSize bounds the JSON header; anything larger is corrupt.
const maxHeaderSize = 100 * 1024 * 1024

// DType represents SafeTensors data types supported by this engine.
type DType string

// Supported SafeTensors dtypes. The weight contract is F32-only; F64 is
// accepted by the reader so tests and tooling can round-trip it.
const (
	F32 DType = "F32"
	F64 DType = "F64"
)

// TensorInfo describes a tensor in the SafeTensors header.
type TensorInfo struct {
	DType       DType    `json:"dtype"`
	Shape       []int    `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"` // [start, end], relative to the data section
}

// header is the parsed JSON header.
type header struct {
	Metadata map[string]string
	Tensors  map[string]TensorInfo
}

// UnmarshalJSON splits the __metadata__ block from tensor entries.
func (h *header) UnmarshalJSON(data []byte) error {
	var rawMap map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawMap); err != nil {
		return err
	}

	if metadataRaw, ok := rawMap["__metadata__"]; ok {
		if err := json.Unmarshal(metadataRaw, &h.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	h.Tensors = make(map[string]TensorInfo)
	for key, value := range rawMap {
		if key == "__metadata__" {
			continue
		}
		var info TensorInfo
		if err := json.Unmarshal(value, &info); err != nil {
			return fmt.Errorf("failed to unmarshal tensor %s: %w", key, err)
		}
		h.Tensors[key] = info
	}

	return nil
}

// Reader reads SafeTensors files.
type Reader struct {
	file       *os.File
	header     header
	dataOffset int64 // offset where tensor data starts
}

// Open opens a SafeTensors file and parses its header.
// Returns ErrNotFound if the path does not exist and ErrInvalidFormat if
// the file cannot be parsed as a SafeTensors container.
func Open(path string) (*Reader, error) {
	//nolint:gosec // G304: the weight file path is caller-provided by design
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open weight file: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: failed to read header size: %v", ErrInvalidFormat, err)
	}

	if headerSize == 0 || headerSize > maxHeaderSize {
		_ = file.Close()
		return nil, fmt.Errorf("%w: implausible header size %d", ErrInvalidFormat, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBytes); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrInvalidFormat, err)
	}

	var h header
	if err := json.Unmarshal(headerBytes, &h); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: failed to parse header JSON: %v", ErrInvalidFormat, err)
	}

	return &Reader{
		file:       file,
		header:     h,
		dataOffset: int64(8 + headerSize), //nolint:gosec // bounded by maxHeaderSize
	}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns a list of all tensor names in the file.
func (r *Reader) TensorNames() []string {
	names := make([]string, 0, len(r.header.Tensors))
	for name := range r.header.Tensors {
		names = append(names, name)
	}
	return names
}

// Info returns header information about a specific tensor.
func (r *Reader) Info(name string) (*TensorInfo, bool) {
	info, ok := r.header.Tensors[name]
	if !ok {
		return nil, false
	}
	return &info, true
}

// ReadTensorData reads the raw bytes of a named tensor.
func (r *Reader) ReadTensorData(name string) ([]byte, error) {
	info, ok := r.Info(name)
	if !ok {
		return nil, fmt.Errorf("tensor %s not found", name)
	}

	start := r.dataOffset + info.DataOffsets[0]
	end := r.dataOffset + info.DataOffsets[1]
	size := end - start

	if info.DataOffsets[0] < 0 || size < 0 {
		return nil, fmt.Errorf("%w: invalid data offsets for tensor %s: [%d, %d]",
			ErrInvalidFormat, name, info.DataOffsets[0], info.DataOffsets[1])
	}

	if _, err := r.file.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to tensor data: %w", err)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r.file, data); err != nil {
		return nil, fmt.Errorf("%w: failed to read tensor %s data: %v", ErrInvalidFormat, name, err)
	}

	return data, nil
}

// dtypeToDataType converts a SafeTensors dtype to an engine DataType.
func dtypeToDataType(dtype DType) (tensor.DataType, error) {
	switch dtype {
	case F32:
		return tensor.Float32, nil
	case F64:
		return tensor.Float64, nil
	default:
		return 0, fmt.Errorf("unsupported dtype: %s", dtype)
	}
}

// LoadTensor loads a named tensor into a RawTensor.
func (r *Reader) LoadTensor(name string, backend tensor.Backend) (*tensor.RawTensor, error) {
	info, ok := r.Info(name)
	if !ok {
		return nil, fmt.Errorf("tensor %s not found", name)
	}

	dtype, err := dtypeToDataType(info.DType)
	if err != nil {
		return nil, fmt.Errorf("%w: tensor %s: %v", ErrInvalidFormat, name, err)
	}

	shape := tensor.Shape(info.Shape)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid shape for tensor %s: %v", ErrInvalidFormat, name, err)
	}

	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements()*dtype.Size() {
		return nil, fmt.Errorf("%w: tensor %s: %d data bytes for shape %v (%s)",
			ErrInvalidFormat, name, len(data), shape, dtype)
	}

	raw, err := tensor.NewRaw(shape, dtype, backend.Device())
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor: %w", err)
	}
	copy(raw.Data(), data)

	return raw, nil
}

// LoadAll loads every tensor in the file into a name-keyed map.
func (r *Reader) LoadAll(backend tensor.Backend) (map[string]*tensor.RawTensor, error) {
	tensors := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for name := range r.header.Tensors {
		raw, err := r.LoadTensor(name, backend)
		if err != nil {
			return nil, err
		}
		tensors[name] = raw
	}
	return tensors, nil
}
