package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test keypair generation.
func TestKeypair(t *testing.T) {
	accountID, seed, err := GetAccountKeypair()
	assert.Equal(t, nil, err)
	assert.NotEqual(t, accountID, seed)

	k, err := DecodeKey(accountID)
	assert.Nil(t, err)
	assert.Equal(t, KeyTypeAccountID, k.Code)
}

// Test deterministic keypair generation from seed.
func TestKeypairFromSeed(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i)
	}

	pub1, priv1, err := GetAccountKeypairFromSeed(seed)
	assert.Nil(t, err)
	pub2, priv2, err := GetAccountKeypairFromSeed(seed)
	assert.Nil(t, err)
	assert.Equal(t, pub1, pub2)
	assert.Equal(t, priv1, priv2)

	_, _, err = GetAccountKeypairFromSeed(seed[:16])
	assert.NotNil(t, err)
}
