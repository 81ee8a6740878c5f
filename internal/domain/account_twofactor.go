package domain

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/go-membership/internal/pkg/token"
)

const mobileCodeLength = 6

// ConfigureTwoFactorAuthentication selects the second factor. Mobile mode
// needs a confirmed phone number on file, certificate mode a registered
// certificate.
func (a *UserAccount) ConfigureTwoFactorAuthentication(mode TwoFactorAuthMode) error {
	switch mode {
	case TwoFactorNone:
	case TwoFactorMobile:
		if a.MobilePhoneNumber == "" {
			return fmt.Errorf("register a mobile phone number first: %w", ErrValidation)
		}
	case TwoFactorCertificate:
		if len(a.Certificates) == 0 {
			return fmt.Errorf("register a certificate first: %w", ErrValidation)
		}
	default:
		return fmt.Errorf("unknown two factor auth mode %q: %w", mode, ErrArgument)
	}

	a.AccountTwoFactorAuthMode = mode
	a.CurrentTwoFactorAuthStatus = TwoFactorNone
	if mode != TwoFactorMobile {
		a.MobileCode = ""
		a.MobileCodeSent = nil
	}
	a.LastUpdated = a.now()
	return nil
}

// RequestTwoFactorAuthCode issues a fresh login code and flags the account
// as awaiting its mobile factor. The clear code travels only in the event.
func (a *UserAccount) RequestTwoFactorAuthCode() error {
	if a.AccountTwoFactorAuthMode != TwoFactorMobile {
		return fmt.Errorf("mobile two factor auth not enabled: %w", ErrValidation)
	}
	if a.MobilePhoneNumber == "" {
		return fmt.Errorf("no mobile phone number on account: %w", ErrValidation)
	}
	code, err := token.NewCode(mobileCodeLength)
	if err != nil {
		return err
	}
	now := a.now()
	a.MobileCode = a.crypto.Hash(code)
	a.MobileCodeSent = &now
	a.CurrentTwoFactorAuthStatus = TwoFactorMobile
	a.LastUpdated = now
	a.addEvent(TwoFactorAuthCodeNotificationEvent{AccountEvent{a}, code})
	return nil
}

// RequestTwoFactorAuthCertificate flags the account as awaiting certificate
// presentation.
func (a *UserAccount) RequestTwoFactorAuthCertificate() error {
	if a.AccountTwoFactorAuthMode != TwoFactorCertificate {
		return fmt.Errorf("certificate two factor auth not enabled: %w", ErrValidation)
	}
	a.CurrentTwoFactorAuthStatus = TwoFactorCertificate
	a.LastUpdated = a.now()
	return nil
}

func (a *UserAccount) mobileCodeMatches(code string) bool {
	if a.MobileCode == "" || code == "" {
		return false
	}
	hashed := a.crypto.Hash(code)
	return subtle.ConstantTimeCompare([]byte(a.MobileCode), []byte(hashed)) == 1
}

func (a *UserAccount) isMobileCodeStale(staleAfter time.Duration) bool {
	if a.MobileCodeSent == nil {
		return true
	}
	return a.now().Sub(*a.MobileCodeSent) > staleAfter
}

// VerifyTwoFactorAuthCode completes a pending mobile login. Fails closed on
// mode/status mismatch, stale code, or wrong code.
func (a *UserAccount) VerifyTwoFactorAuthCode(code string, codeStaleAfter time.Duration) bool {
	if a.AccountTwoFactorAuthMode != TwoFactorMobile {
		return false
	}
	if a.CurrentTwoFactorAuthStatus != TwoFactorMobile {
		return false
	}
	if a.isMobileCodeStale(codeStaleAfter) {
		return false
	}
	if !a.mobileCodeMatches(code) {
		return false
	}
	now := a.now()
	a.MobileCode = ""
	a.MobileCodeSent = nil
	a.CurrentTwoFactorAuthStatus = TwoFactorNone
	a.FailedLoginCount = 0
	a.LastLogin = &now
	a.LastUpdated = now
	return true
}

// VerifyTwoFactorAuthCertificate completes a pending certificate login.
func (a *UserAccount) VerifyTwoFactorAuthCertificate(thumbprint string) bool {
	if a.AccountTwoFactorAuthMode != TwoFactorCertificate {
		return false
	}
	if a.CurrentTwoFactorAuthStatus != TwoFactorCertificate {
		return false
	}
	if !a.HasCertificate(thumbprint) {
		return false
	}
	now := a.now()
	a.CurrentTwoFactorAuthStatus = TwoFactorNone
	a.FailedLoginCount = 0
	a.LastLogin = &now
	a.LastUpdated = now
	return true
}

// ChangeMobilePhoneRequest starts a phone change: a code is texted to the
// candidate number, which is parked in VerificationStorage until confirmed.
// A fresh outstanding request for the same number is not re-issued.
func (a *UserAccount) ChangeMobilePhoneRequest(newPhone string, codeStaleAfter time.Duration) error {
	if newPhone == "" {
		return fmt.Errorf("new mobile phone number is required: %w", ErrValidation)
	}
	if a.VerificationPurpose == PurposeChangeMobile &&
		a.VerificationStorage == newPhone &&
		!a.isMobileCodeStale(codeStaleAfter) {
		return nil
	}
	code, err := token.NewCode(mobileCodeLength)
	if err != nil {
		return err
	}
	now := a.now()
	a.MobileCode = a.crypto.Hash(code)
	a.MobileCodeSent = &now
	a.VerificationPurpose = PurposeChangeMobile
	a.VerificationStorage = newPhone
	a.LastUpdated = now
	a.addEvent(MobilePhoneChangeRequestedEvent{AccountEvent{a}, newPhone, code})
	return nil
}

// ChangeMobilePhoneFromCode redeems a phone-change code.
func (a *UserAccount) ChangeMobilePhoneFromCode(code string, codeStaleAfter time.Duration) bool {
	if code == "" {
		return false
	}
	if a.VerificationPurpose != PurposeChangeMobile || a.VerificationStorage == "" {
		return false
	}
	if a.isMobileCodeStale(codeStaleAfter) {
		return false
	}
	if !a.mobileCodeMatches(code) {
		return false
	}
	now := a.now()
	a.MobilePhoneNumber = a.VerificationStorage
	a.MobileCode = ""
	a.MobileCodeSent = nil
	a.clearVerificationKey()
	a.LastUpdated = now
	a.addEvent(MobilePhoneChangedEvent{AccountEvent{a}})
	return true
}

// RemoveMobilePhone clears the number. Mobile two-factor mode cannot survive
// without a number and is dropped with it.
func (a *UserAccount) RemoveMobilePhone() {
	if a.MobilePhoneNumber == "" {
		return
	}
	a.MobilePhoneNumber = ""
	a.MobileCode = ""
	a.MobileCodeSent = nil
	if a.AccountTwoFactorAuthMode == TwoFactorMobile {
		a.AccountTwoFactorAuthMode = TwoFactorNone
		a.CurrentTwoFactorAuthStatus = TwoFactorNone
	}
	a.LastUpdated = a.now()
	a.addEvent(MobilePhoneRemovedEvent{AccountEvent{a}})
}

// CreateTwoFactorAuthToken mints a "remember this device" token, stores its
// hash on the account, and returns the clear text for the policy to hand to
// the client.
func (a *UserAccount) CreateTwoFactorAuthToken() (string, error) {
	clear, err := token.NewVerificationKey()
	if err != nil {
		return "", err
	}
	a.TwoFactorAuthTokens = append(a.TwoFactorAuthTokens, TwoFactorAuthToken{
		Token:  a.crypto.Hash(clear),
		Issued: a.now(),
	})
	a.LastUpdated = a.now()
	return clear, nil
}

// VerifyTwoFactorAuthToken reports whether the presented token matches a
// stored one no older than lifetime. Expired tokens found along the way are
// pruned.
func (a *UserAccount) VerifyTwoFactorAuthToken(presented string, lifetime time.Duration) bool {
	if presented == "" {
		return false
	}
	hashed := a.crypto.Hash(presented)
	now := a.now()
	matched := false
	kept := a.TwoFactorAuthTokens[:0]
	for _, t := range a.TwoFactorAuthTokens {
		if now.Sub(t.Issued) > lifetime {
			continue
		}
		kept = append(kept, t)
		if subtle.ConstantTimeCompare([]byte(t.Token), []byte(hashed)) == 1 {
			matched = true
		}
	}
	a.TwoFactorAuthTokens = kept
	return matched
}

// RemoveTwoFactorAuthTokens revokes all remembered devices.
func (a *UserAccount) RemoveTwoFactorAuthTokens() {
	a.TwoFactorAuthTokens = nil
	a.LastUpdated = a.now()
}

// HasCertificate reports whether the thumbprint is registered on this
// account.
func (a *UserAccount) HasCertificate(thumbprint string) bool {
	for _, c := range a.Certificates {
		if c.Thumbprint == thumbprint {
			return true
		}
	}
	return false
}

// AddCertificate registers a certificate. Re-adding a thumbprint replaces
// its subject. Cross-account thumbprint uniqueness is checked by a
// pre-commit handler on CertificateAddedEvent.
func (a *UserAccount) AddCertificate(thumbprint, subject string) error {
	if thumbprint == "" {
		return fmt.Errorf("certificate thumbprint is required: %w", ErrArgument)
	}
	if subject == "" {
		return fmt.Errorf("certificate subject is required: %w", ErrArgument)
	}
	cert := UserCertificate{Thumbprint: thumbprint, Subject: subject}
	for i := range a.Certificates {
		if a.Certificates[i].Thumbprint == thumbprint {
			a.Certificates[i] = cert
			a.LastUpdated = a.now()
			return nil
		}
	}
	a.Certificates = append(a.Certificates, cert)
	a.LastUpdated = a.now()
	a.addEvent(CertificateAddedEvent{AccountEvent{a}, cert})
	return nil
}

// RemoveCertificate drops a certificate. Certificate two-factor mode falls
// back to none when the last certificate goes.
func (a *UserAccount) RemoveCertificate(thumbprint string) error {
	if thumbprint == "" {
		return fmt.Errorf("certificate thumbprint is required: %w", ErrArgument)
	}
	kept := a.Certificates[:0]
	var removed *UserCertificate
	for _, c := range a.Certificates {
		if c.Thumbprint == thumbprint {
			rc := c
			removed = &rc
			continue
		}
		kept = append(kept, c)
	}
	a.Certificates = kept
	if removed == nil {
		return nil
	}
	if len(a.Certificates) == 0 && a.AccountTwoFactorAuthMode == TwoFactorCertificate {
		a.AccountTwoFactorAuthMode = TwoFactorNone
		a.CurrentTwoFactorAuthStatus = TwoFactorNone
	}
	a.LastUpdated = a.now()
	a.addEvent(CertificateRemovedEvent{AccountEvent{a}, *removed})
	return nil
}
