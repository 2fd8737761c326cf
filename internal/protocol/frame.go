package protocol

import (
	"encoding/binary"
	"fmt"
)

// Flag bits recorded on a Frame, declaring which codec transforms were
// applied to its payload so Decode can reverse exactly those, in order.
const (
	FlagCompressed uint8 = 1 << 0
	FlagEncrypted  uint8 = 1 << 1
)

// frameHeaderSize is the fixed prefix before a frame's payload:
// messageType(1) + flags(1) + payloadLen(4).
const frameHeaderSize = 1 + 1 + 4

// lengthPrefixSize is the little-endian length prefix preceding every frame
// on the reliable-ordered transport stream.
const lengthPrefixSize = 4

// Frame is the self-describing on-wire unit: {messageType, flags, payload}.
// payload is the body bytes after optional encryption then optional
// compression, per the flags.
type Frame struct {
	Type    MessageKind
	Flags   uint8
	Payload []byte
}

// Marshal encodes the frame header and payload, without the stream-level
// length prefix.
func (f Frame) Marshal() []byte {
	out := make([]byte, frameHeaderSize+len(f.Payload))
	out[0] = byte(f.Type)
	out[1] = f.Flags
	binary.LittleEndian.PutUint32(out[2:6], uint32(len(f.Payload)))
	copy(out[frameHeaderSize:], f.Payload)
	return out
}

// UnmarshalFrame decodes a frame header and payload from data, which must
// contain at least one complete frame (no stream-level length prefix).
func UnmarshalFrame(data []byte) (Frame, error) {
	if len(data) < frameHeaderSize {
		return Frame{}, fmt.Errorf("%w: frame header truncated (%d bytes)", ErrMalformed, len(data))
	}
	payloadLen := binary.LittleEndian.Uint32(data[2:6])
	if uint64(len(data)-frameHeaderSize) < uint64(payloadLen) {
		return Frame{}, fmt.Errorf("%w: frame payload truncated: declared %d, have %d",
			ErrMalformed, payloadLen, len(data)-frameHeaderSize)
	}
	payload := make([]byte, payloadLen)
	copy(payload, data[frameHeaderSize:frameHeaderSize+int(payloadLen)])

	return Frame{
		Type:    MessageKind(data[0]),
		Flags:   data[1],
		Payload: payload,
	}, nil
}

// WithLengthPrefix prepends the 4-byte little-endian length required on
// top of the reliable-ordered datagram channel.
func WithLengthPrefix(frameBytes []byte) []byte {
	out := make([]byte, lengthPrefixSize+len(frameBytes))
	binary.LittleEndian.PutUint32(out[:lengthPrefixSize], uint32(len(frameBytes)))
	copy(out[lengthPrefixSize:], frameBytes)
	return out
}

// SplitLengthPrefixed extracts the next length-prefixed frame from a byte
// stream buffer, returning the frame bytes, the number of bytes consumed,
// and ok=false if buf does not yet contain a complete frame.
func SplitLengthPrefixed(buf []byte) (frameBytes []byte, consumed int, ok bool) {
	if len(buf) < lengthPrefixSize {
		return nil, 0, false
	}
	n := binary.LittleEndian.Uint32(buf[:lengthPrefixSize])
	total := lengthPrefixSize + int(n)
	if len(buf) < total {
		return nil, 0, false
	}
	return buf[lengthPrefixSize:total], total, true
}
