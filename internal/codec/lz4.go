package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// lz4Compress produces a self-delimited LZ4 frame: the frame's own header
// carries everything Decompress needs, so no external sidecar length is
// required across the round-trip.
func lz4Compress(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("codec: lz4 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("codec: lz4 close: %w", err)
	}
	return buf.Bytes(), nil
}

func lz4Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("codec: lz4 read: %w", err)
	}
	return out, nil
}
