package domain

import "time"

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Clone returns a detached deep copy with no runtime deps or pending events.
// The in-memory repository stores and returns clones so callers never share
// aggregate state with the store.
func (a *UserAccount) Clone() *UserAccount {
	b := *a
	b.clock = nil
	b.crypto = nil
	b.events = nil

	b.LastFailedLogin = copyTime(a.LastFailedLogin)
	b.LastLogin = copyTime(a.LastLogin)
	b.AccountClosed = copyTime(a.AccountClosed)
	b.VerificationKeySent = copyTime(a.VerificationKeySent)
	b.MobileCodeSent = copyTime(a.MobileCodeSent)

	b.Claims = append([]UserClaim(nil), a.Claims...)
	b.Certificates = append([]UserCertificate(nil), a.Certificates...)
	b.TwoFactorAuthTokens = append([]TwoFactorAuthToken(nil), a.TwoFactorAuthTokens...)
	b.PasswordResetSecrets = append([]PasswordResetSecret(nil), a.PasswordResetSecrets...)

	b.LinkedAccounts = make([]LinkedAccount, len(a.LinkedAccounts))
	for i, la := range a.LinkedAccounts {
		la.LastLogin = copyTime(la.LastLogin)
		la.Claims = append([]UserClaim(nil), la.Claims...)
		b.LinkedAccounts[i] = la
	}
	return &b
}
