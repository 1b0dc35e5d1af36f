package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}
	hashed, err := h.Hash("pa55word")
	require.NoError(t, err)

	assert.True(t, h.Check(hashed, "pa55word"))
	assert.False(t, h.Check(hashed, "wrong"))

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, DefaultCost, Hasher{}.cost())
}
