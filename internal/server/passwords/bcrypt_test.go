package passwords

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/usuarios/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	require.NoError(t, h.Compare("pw1", hash))
	require.ErrorIs(t, h.Compare("pw2", hash), ErrMismatch)
}

func TestHash_IsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHash_Validation(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash("")
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = h.Hash(strings.Repeat("x", 73))
	require.ErrorIs(t, err, common.ErrorValidation)
	require.ErrorIs(t, err, ErrTooLong)
}

func TestCompare_CorruptHash(t *testing.T) {
	err := NewHasher(bcrypt.MinCost).Compare("pw", "not-a-hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}

func TestNewHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.MaxCost, NewHasher(99).cost)
	assert.Equal(t, 12, NewHasher(12).cost)
}
