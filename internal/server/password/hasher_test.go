package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher()

	digest, err := h.Hash("pw123")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotEqual(t, "pw123", digest)

	assert.True(t, h.Verify("pw123", digest))
	assert.False(t, h.Verify("pw124", digest))
}

func TestHasher_SaltPerCall(t *testing.T) {
	h := NewHasher()

	a, err := h.Hash("pw123")
	require.NoError(t, err)
	b, err := h.Hash("pw123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "each digest embeds a fresh salt")
	assert.True(t, h.Verify("pw123", a))
	assert.True(t, h.Verify("pw123", b))
}

func TestHasher_MalformedDigest(t *testing.T) {
	h := NewHasher()

	assert.False(t, h.Verify("pw123", ""))
	assert.False(t, h.Verify("pw123", "not-a-bcrypt-digest"))
}
