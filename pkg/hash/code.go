package hash

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
)

// CodeHasher provides hashing logic so verification codes are never stored
// in plaintext.
type CodeHasher interface {
	Hash(code string) string
	Equal(hashed string, code string) bool
}

// SHA256Hasher uses SHA256 to hash codes with the provided salt.
type SHA256Hasher struct {
	salt string
}

func NewSHA256Hasher(salt string) *SHA256Hasher {
	return &SHA256Hasher{salt: salt}
}

func (h *SHA256Hasher) Hash(code string) string {
	sum := sha256.New()
	sum.Write([]byte(h.salt))
	sum.Write([]byte(code))

	//nolint:perfsprint
	return fmt.Sprintf("%x", sum.Sum(nil))
}

// Equal reports whether code hashes to hashed, in constant time.
func (h *SHA256Hasher) Equal(hashed string, code string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(code)), []byte(hashed)) == 1
}
