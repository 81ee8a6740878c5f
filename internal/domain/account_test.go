package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

// fakeCrypto hashes transparently so tests can assert on the stored values.
type fakeCrypto struct{}

func (fakeCrypto) HashPassword(password string) (string, error) { return "pw:" + password, nil }
func (fakeCrypto) VerifyPassword(hashed, password string) bool  { return hashed == "pw:"+password }
func (fakeCrypto) Hash(value string) string                     { return "h:" + value }

// testClock is settable so staleness and lockout windows are deterministic.
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func newAccount(t *testing.T, clock Clock) *UserAccount {
	t.Helper()
	a := &UserAccount{}
	a.Attach(clock, fakeCrypto{})
	require.NoError(t, a.Init("acme", "alice", "Secret1", "alice@example.com"))
	return a
}

// createdKey digs the clear verification key out of the creation event.
func createdKey(t *testing.T, a *UserAccount) string {
	t.Helper()
	for _, ev := range a.TakeEvents() {
		if created, ok := ev.(AccountCreatedEvent); ok {
			return created.VerificationKey
		}
	}
	t.Fatal("no AccountCreatedEvent recorded")
	return ""
}

// verified shortcuts an account past the sign-up flow.
func verifiedAccount(t *testing.T, clock Clock) *UserAccount {
	t.Helper()
	a := newAccount(t, clock)
	key := createdKey(t, a)
	require.True(t, a.VerifyAccount(key))
	a.IsLoginAllowed = true
	a.TakeEvents()
	return a
}

// --- Init ---

func TestInit_PopulatesAccount(t *testing.T) {
	clock := newTestClock()
	a := newAccount(t, clock)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "acme", a.Tenant)
	assert.Equal(t, "alice", a.Username)
	assert.Equal(t, "alice@example.com", a.Email)
	assert.Equal(t, "pw:Secret1", a.HashedPassword)
	assert.False(t, a.IsAccountVerified)
	assert.False(t, a.IsLoginAllowed)
	assert.Equal(t, PurposeVerifyAccount, a.VerificationPurpose)
	assert.NotEmpty(t, a.VerificationKey)
	assert.Equal(t, clock.now, a.Created)
}

func TestInit_RequiredFields(t *testing.T) {
	clock := newTestClock()
	cases := []struct {
		name                              string
		tenant, username, password, email string
		sentinel                          error
	}{
		{"missing tenant", "", "alice", "pw", "a@example.com", ErrArgument},
		{"missing username", "acme", "", "pw", "a@example.com", ErrValidation},
		{"missing password", "acme", "alice", "", "a@example.com", ErrValidation},
		{"missing email", "acme", "alice", "pw", "", ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &UserAccount{}
			a.Attach(clock, fakeCrypto{})
			err := a.Init(tc.tenant, tc.username, tc.password, tc.email)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestInit_Twice(t *testing.T) {
	a := newAccount(t, newTestClock())
	err := a.Init("acme", "alice", "Secret1", "alice@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArgument)
}

// --- Verification ---

func TestVerifyAccount_ConsumesKey(t *testing.T) {
	a := newAccount(t, newTestClock())
	key := createdKey(t, a)

	require.True(t, a.VerifyAccount(key))
	assert.True(t, a.IsAccountVerified)
	assert.Empty(t, a.VerificationKey)
	assert.Equal(t, PurposeNone, a.VerificationPurpose)

	evs := a.TakeEvents()
	require.Len(t, evs, 1)
	assert.IsType(t, AccountVerifiedEvent{}, evs[0])
}

func TestVerifyAccount_WrongOrEmptyKey(t *testing.T) {
	a := newAccount(t, newTestClock())
	createdKey(t, a)

	assert.False(t, a.VerifyAccount("wrong"))
	assert.False(t, a.VerifyAccount(""))
	assert.False(t, a.IsAccountVerified)
	assert.Empty(t, a.TakeEvents())
}

func TestVerifyAccount_AlreadyVerified(t *testing.T) {
	a := newAccount(t, newTestClock())
	key := createdKey(t, a)
	require.True(t, a.VerifyAccount(key))

	assert.False(t, a.VerifyAccount(key))
}

func TestVerifyAccount_WrongPurpose(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	// Reset key is outstanding; it must not verify the account.
	require.NoError(t, a.ResetPassword(time.Hour))
	var resetKey string
	for _, ev := range a.TakeEvents() {
		if r, ok := ev.(PasswordResetRequestedEvent); ok {
			resetKey = r.VerificationKey
		}
	}
	require.NotEmpty(t, resetKey)

	a.IsAccountVerified = false
	assert.False(t, a.VerifyAccount(resetKey))
}

func TestCancelNewAccount(t *testing.T) {
	a := newAccount(t, newTestClock())
	key := createdKey(t, a)

	assert.False(t, a.CancelNewAccount("wrong"))
	assert.True(t, a.CancelNewAccount(key))
	// Gating only: the account itself is untouched.
	assert.False(t, a.IsAccountClosed)
}

// --- Authentication and lockout ---

func TestAuthenticate_HappyPath(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	ok, err := a.Authenticate("Secret1", 5, 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, a.LastLogin)
	assert.Equal(t, clock.now, *a.LastLogin)
	assert.Zero(t, a.FailedLoginCount)
}

func TestAuthenticate_UnverifiedOrDisabled(t *testing.T) {
	clock := newTestClock()

	a := newAccount(t, clock)
	ok, err := a.Authenticate("Secret1", 5, 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "unverified account must not authenticate")

	b := verifiedAccount(t, clock)
	b.IsLoginAllowed = false
	ok, err = b.Authenticate("Secret1", 5, 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "login-disabled account must not authenticate")
}

func TestAuthenticate_WrongPasswordCountsFailures(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	for i := 1; i <= 3; i++ {
		ok, err := a.Authenticate("nope", 5, 5*time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, i, a.FailedLoginCount)
	}
	require.NotNil(t, a.LastFailedLogin)
}

func TestAuthenticate_LockoutRejectsCorrectPassword(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	for i := 0; i < 5; i++ {
		_, err := a.Authenticate("nope", 5, 5*time.Minute)
		require.NoError(t, err)
	}

	// Locked out now: even the correct password fails, and the counter
	// keeps climbing. LastFailedLogin stays on the last real mismatch.
	require.NotNil(t, a.LastFailedLogin)
	lastMismatch := *a.LastFailedLogin

	clock.Advance(time.Minute)
	ok, err := a.Authenticate("Secret1", 5, 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 6, a.FailedLoginCount)
	assert.Equal(t, lastMismatch, *a.LastFailedLogin)
}

func TestAuthenticate_LockoutWindowBoundary(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	for i := 0; i < 5; i++ {
		_, err := a.Authenticate("nope", 5, 5*time.Minute)
		require.NoError(t, err)
	}

	// Exactly at the boundary the account is still locked (inclusive).
	clock.Advance(5 * time.Minute)
	ok, err := a.Authenticate("Secret1", 5, 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// One tick past the last failure the window has expired.
	clock.Advance(5*time.Minute + time.Second)
	ok, err = a.Authenticate("Secret1", 5, 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, a.FailedLoginCount)
}

func TestAuthenticate_BadMaxAttempts(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	_, err := a.Authenticate("Secret1", 0, 5*time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArgument)
}

// --- Password expiry ---

func TestGetIsPasswordExpired(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	assert.False(t, a.GetIsPasswordExpired(0), "zero frequency disables expiry")
	assert.False(t, a.GetIsPasswordExpired(30))

	// Exactly 30 days old: expired (inclusive boundary).
	clock.Advance(30 * 24 * time.Hour)
	assert.True(t, a.GetIsPasswordExpired(30))
}

// --- Password reset ---

func TestResetPassword_RequiresVerifiedAccount(t *testing.T) {
	a := newAccount(t, newTestClock())
	err := a.ResetPassword(time.Hour)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResetPassword_FreshKeySuppressesReissue(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ResetPassword(time.Hour))
	first := a.VerificationKey
	require.Len(t, a.TakeEvents(), 1)

	// Fresh key outstanding: nothing re-issued, nothing emitted.
	require.NoError(t, a.ResetPassword(time.Hour))
	assert.Equal(t, first, a.VerificationKey)
	assert.Empty(t, a.TakeEvents())

	// Stale key is replaced.
	clock.Advance(2 * time.Hour)
	require.NoError(t, a.ResetPassword(time.Hour))
	assert.NotEqual(t, first, a.VerificationKey)
	assert.Len(t, a.TakeEvents(), 1)
}

func TestChangePasswordFromResetKey(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ResetPassword(time.Hour))
	var key string
	for _, ev := range a.TakeEvents() {
		if r, ok := ev.(PasswordResetRequestedEvent); ok {
			key = r.VerificationKey
		}
	}
	require.NotEmpty(t, key)

	ok, err := a.ChangePasswordFromResetKey("wrong", "NewSecret", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = a.ChangePasswordFromResetKey(key, "NewSecret", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "pw:NewSecret", a.HashedPassword)
	assert.Empty(t, a.VerificationKey)

	// Key is single-use.
	ok, err = a.ChangePasswordFromResetKey(key, "Another", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChangePasswordFromResetKey_StaleKey(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ResetPassword(time.Hour))
	var key string
	for _, ev := range a.TakeEvents() {
		if r, ok := ev.(PasswordResetRequestedEvent); ok {
			key = r.VerificationKey
		}
	}

	clock.Advance(2 * time.Hour)
	ok, err := a.ChangePasswordFromResetKey(key, "NewSecret", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "pw:Secret1", a.HashedPassword)
}

func TestChangePasswordFromResetKey_EmptyNewPassword(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ResetPassword(time.Hour))
	var key string
	for _, ev := range a.TakeEvents() {
		if r, ok := ev.(PasswordResetRequestedEvent); ok {
			key = r.VerificationKey
		}
	}

	_, err := a.ChangePasswordFromResetKey(key, "", time.Hour)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestChangePassword(t *testing.T) {
	a := verifiedAccount(t, newTestClock())

	err := a.ChangePassword("wrong", "NewSecret")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, a.ChangePassword("Secret1", "NewSecret"))
	assert.Equal(t, "pw:NewSecret", a.HashedPassword)
	evs := a.TakeEvents()
	require.Len(t, evs, 1)
	assert.IsType(t, PasswordChangedEvent{}, evs[0])
}

// --- Email change ---

func TestChangeEmailFlow(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ChangeEmailRequest("new@example.com", time.Hour))
	evs := a.TakeEvents()
	require.Len(t, evs, 1)
	reqEv := evs[0].(EmailChangeRequestedEvent)
	assert.Equal(t, "new@example.com", reqEv.NewEmail)

	ok, err := a.ChangeEmailFromKey(reqEv.VerificationKey, "new@example.com", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new@example.com", a.Email)

	evs = a.TakeEvents()
	require.Len(t, evs, 1)
	assert.Equal(t, "alice@example.com", evs[0].(EmailChangedEvent).OldEmail)
}

func TestChangeEmailFromKey_FailureModes(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ChangeEmailRequest("new@example.com", time.Hour))
	reqEv := a.TakeEvents()[0].(EmailChangeRequestedEvent)

	// Malformed input errors; a bad key merely fails.
	_, err := a.ChangeEmailFromKey(reqEv.VerificationKey, "", time.Hour)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	ok, err := a.ChangeEmailFromKey("wrong", "new@example.com", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "alice@example.com", a.Email)
}

func TestChangeEmailFromKey_StaleKeyFailsThenFreshKeyClearsFields(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ChangeEmailRequest("new@example.com", time.Hour))
	reqEv := a.TakeEvents()[0].(EmailChangeRequestedEvent)

	clock.Advance(2 * time.Hour)
	ok, err := a.ChangeEmailFromKey(reqEv.VerificationKey, "new@example.com", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "alice@example.com", a.Email)

	// The stale key is replaced on the next request; redeeming the fresh
	// one clears the whole verification triple.
	require.NoError(t, a.ChangeEmailRequest("new@example.com", time.Hour))
	reqEv = a.TakeEvents()[0].(EmailChangeRequestedEvent)
	ok, err = a.ChangeEmailFromKey(reqEv.VerificationKey, "new@example.com", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new@example.com", a.Email)
	assert.Empty(t, a.VerificationKey)
	assert.Equal(t, PurposeNone, a.VerificationPurpose)
	assert.Nil(t, a.VerificationKeySent)
}

func TestChangeEmailRequest_SameAddressSuppressed(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ChangeEmailRequest("new@example.com", time.Hour))
	require.Len(t, a.TakeEvents(), 1)

	require.NoError(t, a.ChangeEmailRequest("new@example.com", time.Hour))
	assert.Empty(t, a.TakeEvents())

	// A different address always re-issues.
	require.NoError(t, a.ChangeEmailRequest("other@example.com", time.Hour))
	assert.Len(t, a.TakeEvents(), 1)
}

// --- Username ---

func TestChangeUsername(t *testing.T) {
	a := verifiedAccount(t, newTestClock())

	require.Error(t, a.ChangeUsername(""))

	require.NoError(t, a.ChangeUsername("bob"))
	assert.Equal(t, "bob", a.Username)
	evs := a.TakeEvents()
	require.Len(t, evs, 1)
	assert.Equal(t, "alice", evs[0].(UsernameChangedEvent).OldUsername)
}

// --- Close ---

func TestCloseAccount_Idempotent(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	a.CloseAccount()
	assert.True(t, a.IsAccountClosed)
	assert.False(t, a.IsLoginAllowed)
	require.NotNil(t, a.AccountClosed)
	assert.Len(t, a.TakeEvents(), 1)

	// Second close: no second event, timestamp untouched.
	first := *a.AccountClosed
	clock.Advance(time.Hour)
	a.CloseAccount()
	assert.Empty(t, a.TakeEvents())
	assert.Equal(t, first, *a.AccountClosed)
}

func TestCloseAccount_BlocksLogin(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	a.CloseAccount()

	ok, err := a.Authenticate("Secret1", 5, 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

// --- Two-factor ---

func TestConfigureTwoFactorAuthentication_Preconditions(t *testing.T) {
	a := verifiedAccount(t, newTestClock())

	err := a.ConfigureTwoFactorAuthentication(TwoFactorMobile)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	err = a.ConfigureTwoFactorAuthentication(TwoFactorCertificate)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	err = a.ConfigureTwoFactorAuthentication("carrier-pigeon")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrArgument)

	require.NoError(t, a.ConfigureTwoFactorAuthentication(TwoFactorNone))
}

func TestMobileTwoFactorFlow(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)
	a.MobilePhoneNumber = "+15550100"
	require.NoError(t, a.ConfigureTwoFactorAuthentication(TwoFactorMobile))

	require.NoError(t, a.RequestTwoFactorAuthCode())
	evs := a.TakeEvents()
	require.Len(t, evs, 1)
	code := evs[0].(TwoFactorAuthCodeNotificationEvent).Code
	require.Len(t, code, 6)
	assert.Equal(t, TwoFactorMobile, a.CurrentTwoFactorAuthStatus)

	assert.False(t, a.VerifyTwoFactorAuthCode("000000", 10*time.Minute))
	assert.True(t, a.VerifyTwoFactorAuthCode(code, 10*time.Minute))
	assert.Equal(t, TwoFactorNone, a.CurrentTwoFactorAuthStatus)
	assert.Empty(t, a.MobileCode)
	require.NotNil(t, a.LastLogin)

	// Code is single-use.
	assert.False(t, a.VerifyTwoFactorAuthCode(code, 10*time.Minute))
}

func TestVerifyTwoFactorAuthCode_Stale(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)
	a.MobilePhoneNumber = "+15550100"
	require.NoError(t, a.ConfigureTwoFactorAuthentication(TwoFactorMobile))
	require.NoError(t, a.RequestTwoFactorAuthCode())
	code := a.TakeEvents()[0].(TwoFactorAuthCodeNotificationEvent).Code

	clock.Advance(11 * time.Minute)
	assert.False(t, a.VerifyTwoFactorAuthCode(code, 10*time.Minute))
}

func TestCertificateTwoFactorFlow(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	require.NoError(t, a.AddCertificate("thumb-1", "CN=alice"))
	a.TakeEvents()
	require.NoError(t, a.ConfigureTwoFactorAuthentication(TwoFactorCertificate))

	require.NoError(t, a.RequestTwoFactorAuthCertificate())
	assert.False(t, a.VerifyTwoFactorAuthCertificate("thumb-2"))
	assert.True(t, a.VerifyTwoFactorAuthCertificate("thumb-1"))
	assert.Equal(t, TwoFactorNone, a.CurrentTwoFactorAuthStatus)
}

func TestRemoveCertificate_DropsCertificateMode(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	require.NoError(t, a.AddCertificate("thumb-1", "CN=alice"))
	require.NoError(t, a.ConfigureTwoFactorAuthentication(TwoFactorCertificate))

	require.NoError(t, a.RemoveCertificate("thumb-1"))
	assert.Equal(t, TwoFactorNone, a.AccountTwoFactorAuthMode)
}

func TestAddCertificate_ReAddReplacesSubject(t *testing.T) {
	a := verifiedAccount(t, newTestClock())
	require.NoError(t, a.AddCertificate("thumb-1", "CN=alice"))
	a.TakeEvents()

	require.NoError(t, a.AddCertificate("thumb-1", "CN=alice-renewed"))
	require.Len(t, a.Certificates, 1)
	assert.Equal(t, "CN=alice-renewed", a.Certificates[0].Subject)
	assert.Empty(t, a.TakeEvents(), "re-add must not emit a second event")
}

func TestTwoFactorAuthTokens(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	clear, err := a.CreateTwoFactorAuthToken()
	require.NoError(t, err)
	require.NotEmpty(t, clear)

	assert.True(t, a.VerifyTwoFactorAuthToken(clear, 30*24*time.Hour))
	assert.False(t, a.VerifyTwoFactorAuthToken("bogus", 30*24*time.Hour))

	// Expired tokens are pruned on verify.
	clock.Advance(31 * 24 * time.Hour)
	assert.False(t, a.VerifyTwoFactorAuthToken(clear, 30*24*time.Hour))
	assert.Empty(t, a.TwoFactorAuthTokens)
}

// --- Mobile phone change ---

func TestChangeMobilePhoneFlow(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ChangeMobilePhoneRequest("+15550100", 10*time.Minute))
	evs := a.TakeEvents()
	require.Len(t, evs, 1)
	reqEv := evs[0].(MobilePhoneChangeRequestedEvent)
	assert.Equal(t, "+15550100", reqEv.NewMobilePhoneNumber)

	// The pending change rides the mobile-code fields; the email key
	// triple stays untouched.
	require.NotNil(t, a.MobileCodeSent)
	assert.Empty(t, a.VerificationKey)
	assert.Nil(t, a.VerificationKeySent)

	assert.False(t, a.ChangeMobilePhoneFromCode("000000", 10*time.Minute))
	assert.True(t, a.ChangeMobilePhoneFromCode(reqEv.Code, 10*time.Minute))
	assert.Equal(t, "+15550100", a.MobilePhoneNumber)

	// Code is single-use.
	assert.False(t, a.ChangeMobilePhoneFromCode(reqEv.Code, 10*time.Minute))
}

func TestChangeMobilePhoneRequest_SameNumberSuppressed(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)

	require.NoError(t, a.ChangeMobilePhoneRequest("+15550100", 10*time.Minute))
	require.Len(t, a.TakeEvents(), 1)

	require.NoError(t, a.ChangeMobilePhoneRequest("+15550100", 10*time.Minute))
	assert.Empty(t, a.TakeEvents())
}

func TestRemoveMobilePhone(t *testing.T) {
	clock := newTestClock()
	a := verifiedAccount(t, clock)
	a.MobilePhoneNumber = "+15550100"
	require.NoError(t, a.ConfigureTwoFactorAuthentication(TwoFactorMobile))

	a.RemoveMobilePhone()
	assert.Empty(t, a.MobilePhoneNumber)
	assert.Equal(t, TwoFactorNone, a.AccountTwoFactorAuthMode)
	evs := a.TakeEvents()
	require.Len(t, evs, 1)
	assert.IsType(t, MobilePhoneRemovedEvent{}, evs[0])

	// No number, nothing to remove.
	a.RemoveMobilePhone()
	assert.Empty(t, a.TakeEvents())
}
