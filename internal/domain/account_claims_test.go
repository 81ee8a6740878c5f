package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- claims ---

func TestAddClaim_DuplicateIsNoOp(t *testing.T) {
	a := verifiedAccount(t, newTestClock())

	require.NoError(t, a.AddClaim("role", "admin"))
	require.Len(t, a.TakeEvents(), 1)

	require.NoError(t, a.AddClaim("role", "admin"))
	assert.Len(t, a.Claims, 1)
	assert.Empty(t, a.TakeEvents())
}

func TestClaimAccessors(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	require.NoError(t, a.AddClaim("role", "admin"))
	require.NoError(t, a.AddClaim("scope", "read"))
	require.NoError(t, a.AddClaim("scope", "write"))

	has, err := a.HasClaimType("role")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = a.HasClaim("scope", "write")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = a.HasClaim("scope", "delete")
	require.NoError(t, err)
	assert.False(t, has)

	value, err := a.GetClaimValue("role")
	require.NoError(t, err)
	assert.Equal(t, "admin", value)

	// Multiple values through the single-value accessor is an error.
	_, err = a.GetClaimValue("scope")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMultipleResults)

	values, err := a.GetClaimValues("scope")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"read", "write"}, values)

	// Absent type: empty, no error.
	value, err = a.GetClaimValue("absent")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestClaimAccessors_EmptyType(t *testing.T) {
	a := verifiedAccount(t, newTestClock())

	_, err := a.HasClaimType("")
	assert.ErrorIs(t, err, ErrArgument)
	_, err = a.GetClaimValue("")
	assert.ErrorIs(t, err, ErrArgument)
	assert.ErrorIs(t, a.AddClaim("", "x"), ErrArgument)
	assert.ErrorIs(t, a.AddClaim("x", ""), ErrArgument)
}

func TestRemoveClaimType_RemovesAllValues(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	require.NoError(t, a.AddClaim("scope", "read"))
	require.NoError(t, a.AddClaim("scope", "write"))
	require.NoError(t, a.AddClaim("role", "admin"))
	a.TakeEvents()

	require.NoError(t, a.RemoveClaimType("scope"))
	assert.Len(t, a.Claims, 1)
	assert.Len(t, a.TakeEvents(), 2, "one removal event per claim")
}

func TestRemoveClaim_ExactPairOnly(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	require.NoError(t, a.AddClaim("scope", "read"))
	require.NoError(t, a.AddClaim("scope", "write"))
	a.TakeEvents()

	require.NoError(t, a.RemoveClaim("scope", "read"))
	assert.Len(t, a.Claims, 1)
	assert.Equal(t, "write", a.Claims[0].Value)

	// Unknown pair: no-op, no event.
	require.NoError(t, a.RemoveClaim("scope", "read"))
	assert.Len(t, a.TakeEvents(), 1)
}

// --- linked accounts ---

func TestAddOrUpdateLinkedAccount(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	claims := []UserClaim{{Type: "email", Value: "alice@gmail.example.com"}}
	require.NoError(t, a.AddOrUpdateLinkedAccount("google", "g-123", claims))
	require.Len(t, a.LinkedAccounts, 1)
	require.Len(t, a.TakeEvents(), 1)
	first := *a.LinkedAccounts[0].LastLogin

	// Re-linking refreshes LastLogin and claims without a second event.
	clock.Advance(time.Hour)
	newClaims := []UserClaim{{Type: "email", Value: "renamed@gmail.example.com"}}
	require.NoError(t, a.AddOrUpdateLinkedAccount("google", "g-123", newClaims))
	require.Len(t, a.LinkedAccounts, 1)
	assert.True(t, a.LinkedAccounts[0].LastLogin.After(first))
	assert.Equal(t, newClaims, a.LinkedAccounts[0].Claims)
	assert.Empty(t, a.TakeEvents())
}

func TestRemoveLinkedAccount(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	require.NoError(t, a.AddOrUpdateLinkedAccount("google", "g-123", nil))
	a.TakeEvents()

	require.NoError(t, a.RemoveLinkedAccount("google", "g-123"))
	assert.Empty(t, a.LinkedAccounts)
	assert.Len(t, a.TakeEvents(), 1)

	// Unknown link: no-op.
	require.NoError(t, a.RemoveLinkedAccount("google", "g-123"))
	assert.Empty(t, a.TakeEvents())
}

func TestGetLinkedAccount(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	require.NoError(t, a.AddOrUpdateLinkedAccount("google", "g-123", nil))

	assert.NotNil(t, a.GetLinkedAccount("google", "g-123"))
	assert.Nil(t, a.GetLinkedAccount("google", "g-999"))
	assert.Nil(t, a.GetLinkedAccount("facebook", "g-123"))
}

// --- password reset secrets ---

func TestPasswordResetSecrets(t *testing.T) {
	a := verifiedAccount(t, newTestClock())

	require.NoError(t, a.AddPasswordResetSecret("first pet?", "rex"))
	require.Len(t, a.PasswordResetSecrets, 1)
	secret := a.PasswordResetSecrets[0]
	assert.NotEmpty(t, secret.ID)
	assert.Equal(t, "h:rex", secret.Answer, "answer must be stored hashed")

	// Duplicate question is rejected.
	err := a.AddPasswordResetSecret("first pet?", "fido")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	assert.True(t, a.VerifyPasswordResetSecret(secret.ID, "rex"))
	assert.False(t, a.VerifyPasswordResetSecret(secret.ID, "fido"))
	assert.False(t, a.VerifyPasswordResetSecret("unknown", "rex"))

	require.NoError(t, a.RemovePasswordResetSecret(secret.ID))
	assert.Empty(t, a.PasswordResetSecrets)
}
