package codec

import (
	"crypto/rand"
	"fmt"
)

// randomBytes reads n bytes from the OS CSPRNG. Used for key generation and
// every per-call IV/nonce, so two encryptions of identical plaintext under
// the same key never collide on their prefix.
func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("codec: random bytes: %w", err)
	}
	return b, nil
}
