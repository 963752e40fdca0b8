package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	priv := GenPrivKeyEd25519()
	pub := priv.PublicKey()

	msg := []byte("transfer 10 USD")
	sig, err := priv.Sign(msg)
	require.NoError(t, err)
	assert.True(t, pub.Verify(msg, sig))
	assert.False(t, pub.Verify([]byte("transfer 11 USD"), sig))
	assert.False(t, pub.Verify(msg, sig[1:]))

	other := GenPrivKeyEd25519().PublicKey()
	assert.False(t, other.Verify(msg, sig))
	assert.False(t, pub.Equals(other))
}

func TestConditionAndAddress(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivKeyEd25519FromSeed(seed).PublicKey()
	b := PrivKeyEd25519FromSeed(seed).PublicKey()
	require.True(t, a.Equals(b))

	ext, typ, data, err := a.Condition().Parse()
	require.NoError(t, err)
	assert.Equal(t, "sigs", ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, []byte(a), data)
	assert.True(t, a.Address().Equals(b.Condition().Address()))
	require.NoError(t, a.Address().Validate())

	_, err = ParsePublicKey([]byte{1, 2, 3})
	assert.Error(t, err)
	_, err = ParsePublicKey(a)
	assert.NoError(t, err)
}
