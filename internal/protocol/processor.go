package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/voxelcore/voxelserver/internal/codec"
)

// Processor serializes Messages to Frames and back, dispatching to a
// per-MessageKind Factory registry. It holds no mutable session state and
// is safe to call concurrently, provided the codec primitives underneath
// are — both AES-256-CBC and ChaCha20-Poly1305 here are per-call-scoped.
type Processor struct {
	transform codec.Transform
	key       []byte

	mu        sync.RWMutex
	factories map[MessageKind]Factory
	warn      func(kind MessageKind)
}

// NewProcessor builds a Processor that applies transform/key to every
// frame it serializes or deserializes. warn, if non-nil, is invoked when a
// kind already has a registered factory and Register is called again.
func NewProcessor(transform codec.Transform, key []byte, warn func(kind MessageKind)) *Processor {
	return &Processor{
		transform: transform,
		key:       key,
		factories: make(map[MessageKind]Factory),
		warn:      warn,
	}
}

// Register associates kind with factory. Re-registering an existing kind
// is idempotent: the new factory replaces the old one and warn (if set) is
// invoked, but no error is returned.
func (p *Processor) Register(kind MessageKind, factory Factory) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.factories[kind]; exists && p.warn != nil {
		p.warn(kind)
	}
	p.factories[kind] = factory
}

// Serialize encodes msg into wire bytes: body -> encrypt -> compress.
func (p *Processor) Serialize(msg Message) ([]byte, error) {
	bodyBytes, err := msg.Body.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%w: body marshal: %v", ErrMalformed, err)
	}

	plaintext := encodeEnvelope(msg.RequestID, bodyBytes)

	payload, err := codec.Encode(p.transform, p.key, plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	flags := uint8(0)
	if p.transform.Encryption != codec.EncryptionNone {
		flags |= FlagEncrypted
	}
	if p.transform.Compression != codec.CompressionNone {
		flags |= FlagCompressed
	}

	frame := Frame{Type: msg.Type, Flags: flags, Payload: payload}
	return frame.Marshal(), nil
}

// SerializeInto writes msg's wire bytes into buf, which is reset first.
// Callers that send frequently (the session manager's per-send path) can
// reuse a pooled buffer across calls instead of letting Serialize's return
// value escape to a fresh allocation every time.
func (p *Processor) SerializeInto(buf *bytes.Buffer, msg Message) error {
	frameBytes, err := p.Serialize(msg)
	if err != nil {
		return err
	}
	buf.Reset()
	buf.Write(frameBytes)
	return nil
}

// Deserialize decodes frameBytes: decompress -> decrypt -> deserialize,
// then invokes the registered factory for the frame's declared kind.
func (p *Processor) Deserialize(frameBytes []byte) (Message, error) {
	frame, err := UnmarshalFrame(frameBytes)
	if err != nil {
		return Message{}, err
	}

	plaintext, err := codec.Decode(p.transform, p.key, frame.Payload)
	if err != nil {
		if errors.Is(err, codec.ErrAuthenticationFailed) {
			return Message{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	requestID, bodyBytes, err := decodeEnvelope(plaintext)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	p.mu.RLock()
	factory, ok := p.factories[frame.Type]
	p.mu.RUnlock()
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownMessageKind, frame.Type)
	}

	body := factory()
	if err := body.UnmarshalBinary(bodyBytes); err != nil {
		return Message{}, fmt.Errorf("%w: body unmarshal: %v", ErrMalformed, err)
	}

	return Message{Type: frame.Type, RequestID: requestID, Body: body}, nil
}

// encodeEnvelope prepends a presence byte and, if present, the 16-byte
// requestId ahead of the serialized body, so Message-level correlation
// metadata survives inside the codec-transformed payload.
func encodeEnvelope(requestID uuid.UUID, body []byte) []byte {
	if requestID == uuid.Nil {
		out := make([]byte, 1+len(body))
		out[0] = 0
		copy(out[1:], body)
		return out
	}
	out := make([]byte, 1+16+len(body))
	out[0] = 1
	copy(out[1:17], requestID[:])
	copy(out[17:], body)
	return out
}

func decodeEnvelope(plaintext []byte) (uuid.UUID, []byte, error) {
	if len(plaintext) < 1 {
		return uuid.Nil, nil, fmt.Errorf("envelope truncated")
	}
	if plaintext[0] == 0 {
		return uuid.Nil, plaintext[1:], nil
	}
	if len(plaintext) < 17 {
		return uuid.Nil, nil, fmt.Errorf("envelope truncated: missing requestId")
	}
	var id uuid.UUID
	copy(id[:], plaintext[1:17])
	return id, plaintext[17:], nil
}
