package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("s3cret")
	require.NoError(t, err)
	second, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword("s3cret", first))
	assert.True(t, CheckPassword("s3cret", second))
}

func TestCheckPasswordMismatch(t *testing.T) {
	digest, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.False(t, CheckPassword("wrong", digest))
	assert.False(t, CheckPassword("", digest))
	assert.False(t, CheckPassword("s3cret", "not-a-bcrypt-digest"))
}
