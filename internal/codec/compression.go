package codec

import "fmt"

// Compression selects the byte-array-to-byte-array transform applied after
// encryption on the outbound path.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionBrotli
	CompressionGZip
	CompressionDeflate
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionBrotli:
		return "Brotli"
	case CompressionGZip:
		return "GZip"
	case CompressionDeflate:
		return "Deflate"
	case CompressionLZ4:
		return "LZ4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// Compress dispatches to the concrete implementation for kind. Compressing
// an empty input always returns a valid blob that Decompress reduces back
// to empty.
func Compress(kind Compression, plaintext []byte) ([]byte, error) {
	switch kind {
	case CompressionNone:
		out := make([]byte, len(plaintext))
		copy(out, plaintext)
		return out, nil
	case CompressionBrotli:
		return brotliCompress(plaintext)
	case CompressionGZip:
		return gzipCompress(plaintext)
	case CompressionDeflate:
		return deflateCompress(plaintext)
	case CompressionLZ4:
		return lz4Compress(plaintext)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(kind))
	}
}

// Decompress is the inverse of Compress for the same kind.
func Decompress(kind Compression, data []byte) ([]byte, error) {
	switch kind {
	case CompressionNone:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	case CompressionBrotli:
		return brotliDecompress(data)
	case CompressionGZip:
		return gzipDecompress(data)
	case CompressionDeflate:
		return deflateDecompress(data)
	case CompressionLZ4:
		return lz4Decompress(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, uint8(kind))
	}
}
