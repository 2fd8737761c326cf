package codec

// Transform bundles the (compression, encryption) pair a frame's flags
// declare, so encoding and decoding always apply the two transforms in the
// required opposite orders: body -> encrypt -> compress outbound,
// decompress -> decrypt -> deserialize inbound.
type Transform struct {
	Compression Compression
	Encryption  Encryption
}

// Encode applies encryption then compression to body, per Transform.
func Encode(t Transform, key, body []byte) ([]byte, error) {
	encrypted, err := Encrypt(t.Encryption, key, body)
	if err != nil {
		return nil, err
	}
	return Compress(t.Compression, encrypted)
}

// Decode applies decompression then decryption, the exact reverse of Encode.
func Decode(t Transform, key, data []byte) ([]byte, error) {
	decompressed, err := Decompress(t.Compression, data)
	if err != nil {
		return nil, err
	}
	return Decrypt(t.Encryption, key, decompressed)
}
