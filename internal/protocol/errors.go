package protocol

import "errors"

var (
	// ErrMalformed means a frame could not be decoded or decompressed.
	ErrMalformed = errors.New("protocol: malformed frame")

	// ErrUnauthenticated means an AEAD tag mismatch or AES padding failure
	// occurred while decoding a frame's payload.
	ErrUnauthenticated = errors.New("protocol: unauthenticated payload")

	// ErrUnknownMessageKind means no deserializer is registered for a
	// frame's declared MessageKind.
	ErrUnknownMessageKind = errors.New("protocol: unknown message kind")

	// ErrNotConnected means a client-side request was attempted while
	// disconnected.
	ErrNotConnected = errors.New("protocol: not connected")

	// ErrTimeout means a request/response correlator entry expired before
	// a matching response arrived.
	ErrTimeout = errors.New("protocol: request timed out")
)
