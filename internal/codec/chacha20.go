package codec

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const chachaNonceSize = chacha20poly1305.NonceSize // 12

// chachaEncrypt seals plaintext with ChaCha20-Poly1305.
//
// Output layout: nonce(12) || tag(16) || ciphertext. The nonce is freshly
// generated per call.
func chachaEncrypt(key, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("codec: chacha20poly1305: %w", err)
	}

	nonce, err := randomBytes(chachaNonceSize)
	if err != nil {
		return nil, err
	}

	// Seal appends ciphertext||tag to dst; reorder into the documented
	// nonce(12) || tag(16) || ciphertext wire layout.
	sealed := aead.Seal(nil, nonce, plaintext, nil)
	tagStart := len(sealed) - chacha20poly1305.Overhead
	tag := sealed[tagStart:]
	cipherBody := sealed[:tagStart]

	out := make([]byte, 0, len(nonce)+len(tag)+len(cipherBody))
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, cipherBody...)
	return out, nil
}

// chachaDecrypt is the inverse of chachaEncrypt.
func chachaDecrypt(key, ciphertext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKeySize, len(key))
	}
	if len(ciphertext) < chachaNonceSize+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("%w: got %d bytes", ErrCiphertextTooShort, len(ciphertext))
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("codec: chacha20poly1305: %w", err)
	}

	nonce := ciphertext[:chachaNonceSize]
	tag := ciphertext[chachaNonceSize : chachaNonceSize+chacha20poly1305.Overhead]
	cipherBody := ciphertext[chachaNonceSize+chacha20poly1305.Overhead:]

	sealed := make([]byte, 0, len(cipherBody)+len(tag))
	sealed = append(sealed, cipherBody...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	return plaintext, nil
}
