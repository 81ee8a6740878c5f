package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Low iteration count keeps the tests fast; correctness is independent of it.
const testIterations = 1000

func TestHashAndVerifyPassword(t *testing.T) {
	p := New(testIterations)

	hashed, err := p.HashPassword("Secret1")
	require.NoError(t, err)

	assert.True(t, p.VerifyPassword(hashed, "Secret1"))
	assert.False(t, p.VerifyPassword(hashed, "secret1"))
	assert.False(t, p.VerifyPassword(hashed, ""))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	p := New(testIterations)

	first, err := p.HashPassword("Secret1")
	require.NoError(t, err)
	second, err := p.HashPassword("Secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, p.VerifyPassword(first, "Secret1"))
	assert.True(t, p.VerifyPassword(second, "Secret1"))
}

func TestHashPassword_EmbedsIterations(t *testing.T) {
	p := New(testIterations)

	hashed, err := p.HashPassword("Secret1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hashed, "1000$"))

	// A provider configured differently still verifies old hashes because
	// the iteration count travels with the hash.
	assert.True(t, New(2000).VerifyPassword(hashed, "Secret1"))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	p := New(testIterations)

	assert.False(t, p.VerifyPassword("", "Secret1"))
	assert.False(t, p.VerifyPassword("not-a-hash", "Secret1"))
	assert.False(t, p.VerifyPassword("abc$def$ghi", "Secret1"))
	assert.False(t, p.VerifyPassword("0$00$00", "Secret1"))
}

func TestNew_DefaultIterations(t *testing.T) {
	assert.Equal(t, DefaultIterations, New(0).iterations)
	assert.Equal(t, DefaultIterations, New(-5).iterations)
	assert.Equal(t, 500, New(500).iterations)
}

func TestHash_Deterministic(t *testing.T) {
	p := New(testIterations)

	assert.Equal(t, p.Hash("abc"), p.Hash("abc"))
	assert.NotEqual(t, p.Hash("abc"), p.Hash("abd"))
	assert.Len(t, p.Hash("abc"), 64)
}
