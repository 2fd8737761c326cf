// Package codec implements the two orthogonal wire transforms —
// compression and encryption — that compose over every message body:
// body -> encrypt -> compress outbound, decompress -> decrypt ->
// deserialize inbound.
package codec

import "errors"

var (
	// ErrInvalidKeySize is returned when a key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.New("codec: key must be exactly 32 bytes")

	// ErrAuthenticationFailed is returned when AEAD tag verification or
	// PKCS7 unpadding fails. Never accompanied by partial plaintext.
	ErrAuthenticationFailed = errors.New("codec: authentication failed: ciphertext has been tampered with")

	// ErrCiphertextTooShort is returned when a ciphertext is too small to
	// contain its mandatory IV/nonce/tag prefix.
	ErrCiphertextTooShort = errors.New("codec: ciphertext too short")

	// ErrUnknownCompression is returned for an unrecognized Compression value.
	ErrUnknownCompression = errors.New("codec: unknown compression kind")

	// ErrUnknownEncryption is returned for an unrecognized Encryption value.
	ErrUnknownEncryption = errors.New("codec: unknown encryption kind")
)
