package auth_test

import (
	"testing"

	"github.com/mealforge/recipe-service/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, auth.CheckPassword(hash, "s3cret-pass"))
	assert.False(t, auth.CheckPassword(hash, "wrong-pass"))
}

func TestNewTokenIsOpaqueAndUnique(t *testing.T) {
	first := auth.NewToken()
	second := auth.NewToken()

	assert.NotEqual(t, first, second)
	assert.Len(t, first, 32)
	assert.NotContains(t, first, "-")
}

func TestDigestTokenIsStable(t *testing.T) {
	token := auth.NewToken()

	assert.Equal(t, auth.DigestToken(token), auth.DigestToken(token))
	assert.Len(t, auth.DigestToken(token), 64)
	assert.NotEqual(t, token, auth.DigestToken(token))
}
