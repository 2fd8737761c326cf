package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for passphrase-protecting a network.encryptionKeyBase64
// key at rest.
const (
	keyArgon2Time    = 3
	keyArgon2Memory  = 65536
	keyArgon2Threads = 4
	keyArgon2KeyLen  = 32
	keySaltSize      = 32
	keystoreVersion  = 1
)

// ErrInvalidPassphrase is returned when a passphrase fails to decrypt a
// keystore entry, whether because it's wrong or the file is corrupted.
var ErrInvalidPassphrase = errors.New("config: invalid passphrase or corrupted keystore")

// KeystoreEntry is the on-disk JSON shape of a passphrase-protected key.
type KeystoreEntry struct {
	Version       int    `json:"version"`
	KDF           string `json:"kdf"`
	Argon2Time    int    `json:"argon2_time"`
	Argon2Memory  int    `json:"argon2_memory"`
	Argon2Threads int    `json:"argon2_threads"`
	Salt          []byte `json:"salt"`
	Nonce         []byte `json:"nonce"`
	Ciphertext    []byte `json:"ciphertext"`
}

// SaveEncryptionKey writes key to keystorePath, the same place a voxelkeygen
// run would look for it. If passphrase is empty the key is stored as bare
// base64 (insecure, local/dev use only); otherwise it's Argon2id+AES-256-GCM
// encrypted.
func SaveEncryptionKey(key []byte, keystorePath, passphrase string) error {
	if err := os.MkdirAll(filepath.Dir(keystorePath), 0o700); err != nil {
		return fmt.Errorf("config: create keystore directory: %w", err)
	}

	var data []byte
	if passphrase == "" {
		data = []byte(base64.StdEncoding.EncodeToString(key))
	} else {
		entry, err := encryptKey(key, passphrase)
		if err != nil {
			return fmt.Errorf("config: encrypt key: %w", err)
		}
		data, err = json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("config: marshal keystore entry: %w", err)
		}
	}

	return os.WriteFile(keystorePath, data, 0o600)
}

// LoadEncryptionKey loads the key at keystorePath, decrypting it first if
// it's a passphrase-protected KeystoreEntry. A file whose first byte is '{'
// is treated as an encrypted entry; anything else is read as bare base64.
func LoadEncryptionKey(keystorePath, passphrase string) ([]byte, error) {
	data, err := os.ReadFile(keystorePath)
	if err != nil {
		return nil, fmt.Errorf("config: read keystore file: %w", err)
	}

	if len(data) == 0 || data[0] != '{' {
		key, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("config: decode unencrypted keystore: %w", err)
		}
		return key, nil
	}

	var entry KeystoreEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("config: unmarshal keystore entry: %w", err)
	}
	return decryptKey(&entry, passphrase)
}

func encryptKey(key []byte, passphrase string) (*KeystoreEntry, error) {
	salt := make([]byte, keySaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	derivedKey := argon2.IDKey([]byte(passphrase), salt, keyArgon2Time, keyArgon2Memory, keyArgon2Threads, keyArgon2KeyLen)

	nonce := make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext, err := seal(derivedKey, nonce, key)
	if err != nil {
		return nil, err
	}

	return &KeystoreEntry{
		Version:       keystoreVersion,
		KDF:           "argon2id",
		Argon2Time:    keyArgon2Time,
		Argon2Memory:  keyArgon2Memory,
		Argon2Threads: keyArgon2Threads,
		Salt:          salt,
		Nonce:         nonce,
		Ciphertext:    ciphertext,
	}, nil
}

func decryptKey(entry *KeystoreEntry, passphrase string) ([]byte, error) {
	if entry.Version != keystoreVersion {
		return nil, fmt.Errorf("config: unsupported keystore version %d", entry.Version)
	}
	if entry.KDF != "argon2id" {
		return nil, fmt.Errorf("config: unsupported KDF %q", entry.KDF)
	}

	derivedKey := argon2.IDKey([]byte(passphrase), entry.Salt, uint32(entry.Argon2Time), uint32(entry.Argon2Memory), uint8(entry.Argon2Threads), keyArgon2KeyLen)

	plaintext, err := open(derivedKey, entry.Nonce, entry.Ciphertext)
	if err != nil {
		return nil, ErrInvalidPassphrase
	}
	return plaintext, nil
}

// seal/open are a local AES-256-GCM pair scoped to this package: the key
// material here is always the Argon2id output above (32 bytes), so there's
// no reason to share a wire-protocol AEAD helper across packages for it.
func seal(key, nonce, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

func open(key, nonce, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return gcm.Open(nil, nonce, ciphertext, nil)
}
