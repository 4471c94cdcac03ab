package hash

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSHA256Hasher_Equal(t *testing.T) {
	h := NewSHA256Hasher("pepper")

	hashed := h.Hash("123456")

	assert.NotEqual(t, "123456", hashed)
	assert.True(t, h.Equal(hashed, "123456"))
	assert.False(t, h.Equal(hashed, "123457"))
	assert.False(t, h.Equal(hashed, ""))
}

func TestSHA256Hasher_Deterministic(t *testing.T) {
	h := NewSHA256Hasher("pepper")

	assert.Equal(t, h.Hash("654321"), h.Hash("654321"))
}

func TestSHA256Hasher_SaltEntersDigest(t *testing.T) {
	h := NewSHA256Hasher("pepper")

	// The unsalted digest of the code must not be recoverable from the
	// stored value; otherwise the salt is a strippable prefix.
	plain := sha256.Sum256([]byte("123456"))
	assert.NotContains(t, h.Hash("123456"), fmt.Sprintf("%x", plain))
}

func TestSHA256Hasher_SaltChangesDigest(t *testing.T) {
	a := NewSHA256Hasher("salt-a")
	b := NewSHA256Hasher("salt-b")

	assert.NotEqual(t, a.Hash("123456"), b.Hash("123456"))
	assert.False(t, b.Equal(a.Hash("123456"), "123456"))
}
