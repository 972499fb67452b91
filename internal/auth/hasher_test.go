package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"itemhub/internal/errors"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 2)
	ctx := context.Background()

	first, err := h.Hash(ctx, "correct-horse")
	require.NoError(t, err)
	second, err := h.Hash(ctx, "correct-horse")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "salt must differ per call")
	assert.True(t, h.Verify(ctx, "correct-horse", first))
	assert.True(t, h.Verify(ctx, "correct-horse", second))
	assert.False(t, h.Verify(ctx, "wrong-horse", first))
}

func TestHasher_MalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)
	assert.False(t, h.Verify(context.Background(), "anything", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify(context.Background(), "anything", ""))
}

func TestHasher_LengthPolicy(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)
	ctx := context.Background()

	_, err := h.Hash(ctx, strings.Repeat("a", MaxPasswordBytes))
	assert.NoError(t, err)

	_, err = h.Hash(ctx, strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestHasher_CancelledContext(t *testing.T) {
	h := NewHasher(bcrypt.MinCost, 1)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	cancel()

	_, err := h.Hash(ctx, "password1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, h.Verify(ctx, "password1", "$2a$04$xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx"))
	h.sem.Release(1)
}
