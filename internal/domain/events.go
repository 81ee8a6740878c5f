package domain

// Event is a domain event recorded by a UserAccount mutation and drained by
// the service layer. Pre-commit bus handlers may veto the mutation by
// returning an error; post-commit handlers drive notifications.
type Event interface {
	domainEvent()
}

// AccountEvent carries the affected account and is embedded by every event.
type AccountEvent struct {
	Account *UserAccount
}

func (AccountEvent) domainEvent() {}

// AccountCreatedEvent is emitted by Init. VerificationKey is the clear-text
// key the new owner must present to verify the account; it is never stored.
type AccountCreatedEvent struct {
	AccountEvent
	VerificationKey string
}

// AccountVerifiedEvent is emitted when the initial verification key is
// successfully consumed.
type AccountVerifiedEvent struct {
	AccountEvent
}

// AccountClosedEvent is emitted on the open->closed transition only.
type AccountClosedEvent struct {
	AccountEvent
}

// UsernameChangedEvent is emitted by ChangeUsername.
type UsernameChangedEvent struct {
	AccountEvent
	OldUsername string
}

// UsernameReminderRequestedEvent asks notification to mail the account name.
type UsernameReminderRequestedEvent struct {
	AccountEvent
}

// PasswordChangedEvent is emitted whenever a new password is stored through
// a completed flow (change, reset-key redemption, secret-answer reset).
type PasswordChangedEvent struct {
	AccountEvent
}

// PasswordResetRequestedEvent carries the clear-text reset key.
type PasswordResetRequestedEvent struct {
	AccountEvent
	VerificationKey string
}

// EmailChangeRequestedEvent carries the pending address and the clear-text
// key mailed to it.
type EmailChangeRequestedEvent struct {
	AccountEvent
	NewEmail        string
	VerificationKey string
}

// EmailChangedEvent is emitted when a change-email key is redeemed.
type EmailChangedEvent struct {
	AccountEvent
	OldEmail string
}

// MobilePhoneChangeRequestedEvent carries the pending number and the
// clear-text code texted to it.
type MobilePhoneChangeRequestedEvent struct {
	AccountEvent
	NewMobilePhoneNumber string
	Code                 string
}

// MobilePhoneChangedEvent is emitted when a change-mobile code is redeemed.
type MobilePhoneChangedEvent struct {
	AccountEvent
}

// MobilePhoneRemovedEvent is emitted when the number is cleared.
type MobilePhoneRemovedEvent struct {
	AccountEvent
}

// TwoFactorAuthCodeNotificationEvent carries a clear-text login code for
// SMS delivery.
type TwoFactorAuthCodeNotificationEvent struct {
	AccountEvent
	Code string
}

// CertificateAddedEvent is vetoed pre-commit if the thumbprint is already
// registered to another account.
type CertificateAddedEvent struct {
	AccountEvent
	Certificate UserCertificate
}

// CertificateRemovedEvent is emitted by RemoveCertificate.
type CertificateRemovedEvent struct {
	AccountEvent
	Certificate UserCertificate
}

// LinkedAccountAddedEvent is vetoed pre-commit if (provider, id) is already
// linked to another account.
type LinkedAccountAddedEvent struct {
	AccountEvent
	LinkedAccount LinkedAccount
}

// LinkedAccountRemovedEvent is emitted by RemoveLinkedAccount.
type LinkedAccountRemovedEvent struct {
	AccountEvent
	LinkedAccount LinkedAccount
}

// ClaimAddedEvent is emitted by AddClaim for claims not already present.
type ClaimAddedEvent struct {
	AccountEvent
	Claim UserClaim
}

// ClaimRemovedEvent is emitted once per claim actually removed.
type ClaimRemovedEvent struct {
	AccountEvent
	Claim UserClaim
}

// PasswordResetSecretAddedEvent is emitted by AddPasswordResetSecret.
type PasswordResetSecretAddedEvent struct {
	AccountEvent
	Question string
}

// PasswordResetSecretRemovedEvent is emitted by RemovePasswordResetSecret.
type PasswordResetSecretRemovedEvent struct {
	AccountEvent
	Question string
}
