package codec

import "fmt"

// Encryption selects the AEAD/symmetric transform applied to the body
// before compression on the outbound path.
type Encryption uint8

const (
	EncryptionNone Encryption = iota
	EncryptionAES256CBC
	EncryptionChaCha20Poly1305
)

func (e Encryption) String() string {
	switch e {
	case EncryptionNone:
		return "None"
	case EncryptionAES256CBC:
		return "AES256"
	case EncryptionChaCha20Poly1305:
		return "ChaCha20Poly1305"
	default:
		return fmt.Sprintf("Encryption(%d)", uint8(e))
	}
}

// KeySize is the required length, in bytes, of every non-None encryption key.
const KeySize = 32

// GenerateKey returns a key of the given kind. EncryptionNone always
// returns an empty byte sequence, matching the spec's treatment of "no
// encryption" as having no key material at all.
func GenerateKey(kind Encryption) ([]byte, error) {
	if kind == EncryptionNone {
		return []byte{}, nil
	}
	return randomBytes(KeySize)
}

// Encrypt dispatches to the concrete implementation for kind. The key is
// ignored for EncryptionNone.
func Encrypt(kind Encryption, key, plaintext []byte) ([]byte, error) {
	switch kind {
	case EncryptionNone:
		out := make([]byte, len(plaintext))
		copy(out, plaintext)
		return out, nil
	case EncryptionAES256CBC:
		return aesCBCEncrypt(key, plaintext)
	case EncryptionChaCha20Poly1305:
		return chachaEncrypt(key, plaintext)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEncryption, uint8(kind))
	}
}

// Decrypt is the inverse of Encrypt for the same kind.
func Decrypt(kind Encryption, key, ciphertext []byte) ([]byte, error) {
	switch kind {
	case EncryptionNone:
		out := make([]byte, len(ciphertext))
		copy(out, ciphertext)
		return out, nil
	case EncryptionAES256CBC:
		return aesCBCDecrypt(key, ciphertext)
	case EncryptionChaCha20Poly1305:
		return chachaDecrypt(key, ciphertext)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEncryption, uint8(kind))
	}
}
