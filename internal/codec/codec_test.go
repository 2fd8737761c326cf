package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var allCompressions = []Compression{
	CompressionNone, CompressionBrotli, CompressionGZip, CompressionDeflate, CompressionLZ4,
}

var allEncryptions = []Encryption{
	EncryptionNone, EncryptionAES256CBC, EncryptionChaCha20Poly1305,
}

func TestCodecRoundTrip(t *testing.T) {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}

	payloads := [][]byte{
		{},
		[]byte("hello"),
		bytes.Repeat([]byte{0xAB}, 4096),
		bytes.Repeat([]byte("voxel"), 1000),
	}

	for _, comp := range allCompressions {
		for _, enc := range allEncryptions {
			t.Run(comp.String()+"/"+enc.String(), func(t *testing.T) {
				for _, body := range payloads {
					transform := Transform{Compression: comp, Encryption: enc}
					encoded, err := Encode(transform, key, body)
					require.NoError(t, err)

					decoded, err := Decode(transform, key, encoded)
					require.NoError(t, err)
					require.Equal(t, body, decoded)
				}
			})
		}
	}
}

func TestCodecCiphertextFreshness(t *testing.T) {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i * 7)
	}
	plaintext := []byte("identical plaintext, same key")

	for _, enc := range []Encryption{EncryptionAES256CBC, EncryptionChaCha20Poly1305} {
		a, err := Encrypt(enc, key, plaintext)
		require.NoError(t, err)
		b, err := Encrypt(enc, key, plaintext)
		require.NoError(t, err)
		require.NotEqual(t, a, b, "%s: two encryptions of identical plaintext must differ", enc)
	}
}

func TestCodecAuthenticationFailsOnWrongKey(t *testing.T) {
	keyA := bytes.Repeat([]byte{0x01}, KeySize)
	keyB := bytes.Repeat([]byte{0x02}, KeySize)

	for _, enc := range []Encryption{EncryptionAES256CBC, EncryptionChaCha20Poly1305} {
		ciphertext, err := Encrypt(enc, keyA, []byte("hello"))
		require.NoError(t, err)

		_, err = Decrypt(enc, keyB, ciphertext)
		require.ErrorIs(t, err, ErrAuthenticationFailed, "%s: decrypting under the wrong key must fail", enc)
	}
}

func TestGenerateKeyNoneIsEmpty(t *testing.T) {
	key, err := GenerateKey(EncryptionNone)
	require.NoError(t, err)
	require.Empty(t, key)
}

func TestGenerateKeyProducesCorrectSize(t *testing.T) {
	for _, enc := range []Encryption{EncryptionAES256CBC, EncryptionChaCha20Poly1305} {
		key, err := GenerateKey(enc)
		require.NoError(t, err)
		require.Len(t, key, KeySize)
	}
}

func TestEmptyInputCompressesAndDecompressesToEmpty(t *testing.T) {
	for _, comp := range allCompressions {
		blob, err := Compress(comp, []byte{})
		require.NoError(t, err)

		out, err := Decompress(comp, blob)
		require.NoError(t, err)
		require.Empty(t, out)
	}
}
