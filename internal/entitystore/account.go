package entitystore

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"time"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for password hashing, matching the KDF cost already
// used elsewhere in this server for passphrase-protected key material.
const (
	passwordArgon2Time    = 3
	passwordArgon2Memory  = 65536
	passwordArgon2Threads = 4
	passwordKeyLen        = 32
	passwordSaltLen       = 16
)

// UserAccount is the "users etc." domain entity the persisted-state surface
// names: an Email/password-hash pair keyed by an entitystore-assigned id.
type UserAccount struct {
	ID           uint64
	Email        string
	PasswordSalt []byte
	PasswordHash []byte
	CreatedAt    time.Time
}

func (a *UserAccount) RecordID() uint64      { return a.ID }
func (a *UserAccount) SetRecordID(id uint64) { a.ID = id }

func (a *UserAccount) MarshalBinary() ([]byte, error) {
	w := &recordWriter{}
	w.WriteUint64(a.ID)
	w.WriteString(a.Email)
	w.WriteBytes(a.PasswordSalt)
	w.WriteBytes(a.PasswordHash)
	w.WriteInt64(a.CreatedAt.UnixNano())
	return w.Bytes(), nil
}

func (a *UserAccount) UnmarshalBinary(data []byte) error {
	r := newRecordReader(data)
	var err error
	if a.ID, err = r.ReadUint64(); err != nil {
		return err
	}
	if a.Email, err = r.ReadString(); err != nil {
		return err
	}
	if a.PasswordSalt, err = r.ReadBytes(); err != nil {
		return err
	}
	if a.PasswordHash, err = r.ReadBytes(); err != nil {
		return err
	}
	nanos, err := r.ReadInt64()
	if err != nil {
		return err
	}
	a.CreatedAt = time.Unix(0, nanos).UTC()
	return nil
}

// NewUserAccount hashes password with a fresh random salt and returns an
// unpersisted account ready for Store[*UserAccount].Insert.
func NewUserAccount(email, password string) (*UserAccount, error) {
	salt := make([]byte, passwordSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("entitystore: generate salt: %w", err)
	}
	return &UserAccount{
		Email:        email,
		PasswordSalt: salt,
		PasswordHash: hashPassword(password, salt),
		CreatedAt:    time.Now(),
	}, nil
}

// VerifyPassword reports whether password matches the account's stored
// hash, comparing in constant time.
func (a *UserAccount) VerifyPassword(password string) bool {
	candidate := hashPassword(password, a.PasswordSalt)
	return subtle.ConstantTimeCompare(candidate, a.PasswordHash) == 1
}

func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, passwordArgon2Time, passwordArgon2Memory, passwordArgon2Threads, passwordKeyLen)
}
