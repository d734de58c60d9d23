package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
)

// ErrCorrupt is returned when a compressed frame cannot be decoded.
var ErrCorrupt = errors.New("corrupt compressed frame")

// maxFrameSize bounds the decoded size announced by a frame header.
const maxFrameSize = 1 << 30

// Frame flags
const (
	frameRaw byte = 0
	frameLZ4 byte = 1
)

// NoCompressor implements a pass-through compressor that doesn't compress data.
type NoCompressor struct{}

// Name returns the name of the compressor.
func (c *NoCompressor) Name() string {
	return "none"
}

// Compress returns a copy of the data.
func (c *NoCompressor) Compress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// Decompress returns a copy of the data.
func (c *NoCompressor) Decompress(data []byte) ([]byte, error) {
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

// LZ4Compressor implements LZ4 block compression. Every frame starts with
// a flag byte and the uvarint decoded length; blocks lz4 cannot shrink are
// stored raw.
type LZ4Compressor struct{}

// Name returns the name of the compressor.
func (c *LZ4Compressor) Name() string {
	return "lz4"
}

// Compress compresses data using LZ4.
func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	header := make([]byte, 1+binary.MaxVarintLen64)
	n := binary.PutUvarint(header[1:], uint64(len(data)))
	header = header[:1+n]

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	size, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	// Incompressible input
	if size == 0 || size >= len(data) {
		header[0] = frameRaw
		return append(header, data...), nil
	}

	header[0] = frameLZ4
	return append(header, compressed[:size]...), nil
}

// Decompress decompresses a frame written by Compress.
func (c *LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	length, n := binary.Uvarint(data[1:])
	if n <= 0 || length > maxFrameSize {
		return nil, fmt.Errorf("%w: bad length header", ErrCorrupt)
	}
	payload := data[1+n:]

	switch data[0] {
	case frameRaw:
		if uint64(len(payload)) != length {
			return nil, fmt.Errorf("%w: raw frame holds %d of %d bytes", ErrCorrupt, len(payload), length)
		}
		result := make([]byte, len(payload))
		copy(result, payload)
		return result, nil
	case frameLZ4:
		decompressed := make([]byte, length)
		size, err := lz4.UncompressBlock(payload, decompressed)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(size) != length {
			return nil, fmt.Errorf("%w: decoded %d of %d bytes", ErrCorrupt, size, length)
		}
		return decompressed, nil
	default:
		return nil, fmt.Errorf("%w: unknown flag %d", ErrCorrupt, data[0])
	}
}
