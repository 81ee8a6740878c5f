package domain

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/go-membership/internal/pkg/id"
	"github.com/go-membership/internal/pkg/token"
)

// VerificationPurpose scopes an outstanding verification key to exactly one
// flow. A key issued for one purpose is unusable for any other.
type VerificationPurpose string

const (
	PurposeNone           VerificationPurpose = ""
	PurposeVerifyAccount  VerificationPurpose = "verify_account"
	PurposeChangePassword VerificationPurpose = "change_password"
	PurposeChangeEmail    VerificationPurpose = "change_email"
	PurposeChangeMobile   VerificationPurpose = "change_mobile"
)

// TwoFactorAuthMode is the secondary factor required after password
// authentication.
type TwoFactorAuthMode string

const (
	TwoFactorNone        TwoFactorAuthMode = "none"
	TwoFactorMobile      TwoFactorAuthMode = "mobile"
	TwoFactorCertificate TwoFactorAuthMode = "certificate"
)

// UserAccount is the membership aggregate root. All mutations go through the
// named operations below; the only fields services write directly are
// Username and Email, and only inside sanctioned flows. The entity performs
// no I/O — persistence and uniqueness checks live in the service layer.
//
// Concurrent mutations of the same account are not coordinated here. Two
// racing Authenticate calls can interleave FailedLoginCount updates
// (last-write-wins); serialization, if needed, belongs to the storage layer.
type UserAccount struct {
	ID          string    `json:"id" dynamodbav:"account_id"`
	Tenant      string    `json:"tenant" dynamodbav:"tenant"`
	Username    string    `json:"username" dynamodbav:"username"`
	Email       string    `json:"email" dynamodbav:"email"`
	Created     time.Time `json:"created" dynamodbav:"created"`
	LastUpdated time.Time `json:"last_updated" dynamodbav:"last_updated"`

	HashedPassword   string     `json:"-" dynamodbav:"hashed_password"`
	PasswordChanged  time.Time  `json:"password_changed" dynamodbav:"password_changed"`
	FailedLoginCount int        `json:"-" dynamodbav:"failed_login_count"`
	LastFailedLogin  *time.Time `json:"-" dynamodbav:"last_failed_login"`
	LastLogin        *time.Time `json:"last_login,omitempty" dynamodbav:"last_login"`

	IsAccountVerified bool       `json:"is_account_verified" dynamodbav:"is_account_verified"`
	IsLoginAllowed    bool       `json:"is_login_allowed" dynamodbav:"is_login_allowed"`
	IsAccountClosed   bool       `json:"is_account_closed" dynamodbav:"is_account_closed"`
	AccountClosed     *time.Time `json:"account_closed,omitempty" dynamodbav:"account_closed"`

	// VerificationKey holds the hash of the outstanding key; the clear text
	// leaves the entity only inside the event that requested its delivery.
	// Non-empty VerificationKey implies a non-empty purpose and vice versa.
	VerificationKey     string              `json:"-" dynamodbav:"verification_key"`
	VerificationPurpose VerificationPurpose `json:"-" dynamodbav:"verification_purpose"`
	VerificationKeySent *time.Time          `json:"-" dynamodbav:"verification_key_sent"`
	VerificationStorage string              `json:"-" dynamodbav:"verification_storage"`

	AccountTwoFactorAuthMode   TwoFactorAuthMode `json:"two_factor_auth_mode" dynamodbav:"two_factor_auth_mode"`
	CurrentTwoFactorAuthStatus TwoFactorAuthMode `json:"-" dynamodbav:"current_two_factor_auth_status"`
	MobilePhoneNumber          string            `json:"mobile_phone_number,omitempty" dynamodbav:"mobile_phone_number"`
	MobileCode                 string            `json:"-" dynamodbav:"mobile_code"` // hashed
	MobileCodeSent             *time.Time        `json:"-" dynamodbav:"mobile_code_sent"`

	Claims               []UserClaim           `json:"claims,omitempty" dynamodbav:"claims"`
	LinkedAccounts       []LinkedAccount       `json:"linked_accounts,omitempty" dynamodbav:"linked_accounts"`
	Certificates         []UserCertificate     `json:"certificates,omitempty" dynamodbav:"certificates"`
	TwoFactorAuthTokens  []TwoFactorAuthToken  `json:"-" dynamodbav:"two_factor_auth_tokens"`
	PasswordResetSecrets []PasswordResetSecret `json:"password_reset_secrets,omitempty" dynamodbav:"password_reset_secrets"`

	clock  Clock
	crypto Crypto
	events []Event
}

// Attach wires the runtime dependencies into a loaded or freshly created
// account. The service layer calls this after every repository read.
func (a *UserAccount) Attach(clock Clock, crypto Crypto) {
	a.clock = clock
	a.crypto = crypto
}

func (a *UserAccount) now() time.Time {
	if a.clock == nil {
		return time.Now().UTC()
	}
	return a.clock.Now()
}

func (a *UserAccount) addEvent(ev Event) {
	a.events = append(a.events, ev)
}

// TakeEvents drains and returns the events recorded since the last drain.
func (a *UserAccount) TakeEvents() []Event {
	evs := a.events
	a.events = nil
	return evs
}

// Init brings a blank account to life: assigns an ID, hashes the password,
// and issues the initial account-verification key. Calling it on an account
// that already has an ID is a programming error.
func (a *UserAccount) Init(tenant, username, password, email string) error {
	if tenant == "" {
		return fmt.Errorf("tenant is required: %w", ErrArgument)
	}
	if username == "" {
		return fmt.Errorf("username is required: %w", ErrValidation)
	}
	if password == "" {
		return fmt.Errorf("password is required: %w", ErrValidation)
	}
	if email == "" {
		return fmt.Errorf("email is required: %w", ErrValidation)
	}
	if a.ID != "" {
		return fmt.Errorf("account already initialized: %w", ErrArgument)
	}

	now := a.now()
	a.ID = id.New()
	a.Tenant = tenant
	a.Username = username
	a.Email = email
	a.Created = now
	a.LastUpdated = now
	a.IsAccountVerified = false
	a.IsLoginAllowed = false
	a.AccountTwoFactorAuthMode = TwoFactorNone
	a.CurrentTwoFactorAuthStatus = TwoFactorNone

	if err := a.SetPassword(password); err != nil {
		return err
	}

	key, err := a.issueVerificationKey(PurposeVerifyAccount, "")
	if err != nil {
		return err
	}
	a.addEvent(AccountCreatedEvent{AccountEvent{a}, key})
	return nil
}

// issueVerificationKey replaces any outstanding key. The clear text is
// returned for delivery and only its hash retained.
func (a *UserAccount) issueVerificationKey(purpose VerificationPurpose, storage string) (string, error) {
	key, err := token.NewVerificationKey()
	if err != nil {
		return "", err
	}
	now := a.now()
	a.VerificationKey = a.crypto.Hash(key)
	a.VerificationPurpose = purpose
	a.VerificationKeySent = &now
	a.VerificationStorage = storage
	return key, nil
}

func (a *UserAccount) clearVerificationKey() {
	a.VerificationKey = ""
	a.VerificationPurpose = PurposeNone
	a.VerificationKeySent = nil
	a.VerificationStorage = ""
}

// IsVerificationKeyStale reports whether the outstanding key (if any) is
// older than staleAfter. A missing issuance timestamp counts as stale.
func (a *UserAccount) IsVerificationKeyStale(staleAfter time.Duration) bool {
	if a.VerificationKeySent == nil {
		return true
	}
	return a.now().Sub(*a.VerificationKeySent) > staleAfter
}

func (a *UserAccount) verificationKeyMatches(key string) bool {
	if a.VerificationKey == "" || key == "" {
		return false
	}
	hashed := a.crypto.Hash(key)
	return subtle.ConstantTimeCompare([]byte(a.VerificationKey), []byte(hashed)) == 1
}

// VerifyAccount consumes the initial verification key. Fails closed: an
// empty key, an already-verified account, a purpose mismatch, or a wrong key
// all return false without mutating anything.
func (a *UserAccount) VerifyAccount(key string) bool {
	if key == "" || a.IsAccountVerified {
		return false
	}
	if a.VerificationPurpose != PurposeVerifyAccount {
		return false
	}
	if !a.verificationKeyMatches(key) {
		return false
	}
	a.IsAccountVerified = true
	a.clearVerificationKey()
	a.LastUpdated = a.now()
	a.addEvent(AccountVerifiedEvent{AccountEvent{a}})
	return true
}

// CancelNewAccount validates the same key as VerifyAccount but is used to
// abort an unverified signup. The entity only gates; deleting the record is
// the service's job.
func (a *UserAccount) CancelNewAccount(key string) bool {
	if key == "" || a.IsAccountVerified {
		return false
	}
	if a.VerificationPurpose != PurposeVerifyAccount {
		return false
	}
	return a.verificationKeyMatches(key)
}

// SetPassword hashes and stores the password. It emits no event; the
// flows that call it decide what to announce.
func (a *UserAccount) SetPassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required: %w", ErrValidation)
	}
	hashed, err := a.crypto.HashPassword(password)
	if err != nil {
		return err
	}
	now := a.now()
	a.HashedPassword = hashed
	a.PasswordChanged = now
	a.LastUpdated = now
	return nil
}

// ChangePassword rotates the password after re-verifying the old one. This
// is the event-emitting flow; SetPassword alone announces nothing.
func (a *UserAccount) ChangePassword(oldPassword, newPassword string) error {
	if oldPassword == "" {
		return fmt.Errorf("old password is required: %w", ErrValidation)
	}
	if !a.VerifyHashedPassword(oldPassword) {
		return fmt.Errorf("old password is incorrect: %w", ErrValidation)
	}
	if err := a.SetPassword(newPassword); err != nil {
		return err
	}
	a.addEvent(PasswordChangedEvent{AccountEvent{a}})
	return nil
}

// RequestUsernameReminder asks notification to mail the account name.
func (a *UserAccount) RequestUsernameReminder() {
	a.addEvent(UsernameReminderRequestedEvent{AccountEvent{a}})
}

// VerifyHashedPassword checks a candidate against the stored hash without
// any lockout bookkeeping.
func (a *UserAccount) VerifyHashedPassword(password string) bool {
	if password == "" || a.HashedPassword == "" {
		return false
	}
	return a.crypto.VerifyPassword(a.HashedPassword, password)
}

// HasTooManyRecentPasswordFailures reports whether the account is inside its
// lockout window: at least count failures, the latest within window
// (inclusive boundary).
func (a *UserAccount) HasTooManyRecentPasswordFailures(count int, window time.Duration) (bool, error) {
	if count <= 0 {
		return false, fmt.Errorf("failure count must be positive: %w", ErrArgument)
	}
	if a.FailedLoginCount < count || a.LastFailedLogin == nil {
		return false, nil
	}
	return a.now().Sub(*a.LastFailedLogin) <= window, nil
}

// Authenticate verifies the password with lockout bookkeeping. A locked-out
// account keeps incrementing its failure counter on every attempt, correct
// password included; the window itself stays anchored to the last real
// password mismatch.
func (a *UserAccount) Authenticate(password string, maxFailedAttempts int, lockoutWindow time.Duration) (bool, error) {
	if maxFailedAttempts <= 0 {
		return false, fmt.Errorf("maxFailedAttempts must be positive: %w", ErrArgument)
	}
	if password == "" {
		return false, nil
	}
	if !a.IsAccountVerified || !a.IsLoginAllowed {
		return false, nil
	}

	lockedOut, err := a.HasTooManyRecentPasswordFailures(maxFailedAttempts, lockoutWindow)
	if err != nil {
		return false, err
	}
	if lockedOut {
		a.FailedLoginCount++
		a.LastUpdated = a.now()
		return false, nil
	}

	if !a.VerifyHashedPassword(password) {
		now := a.now()
		a.LastFailedLogin = &now
		if a.FailedLoginCount <= 0 {
			a.FailedLoginCount = 1
		} else {
			a.FailedLoginCount++
		}
		a.LastUpdated = now
		return false, nil
	}

	now := a.now()
	a.FailedLoginCount = 0
	a.LastLogin = &now
	a.LastUpdated = now
	return true, nil
}

// GetIsPasswordExpired reports whether the password is older than the reset
// frequency, in days. Zero or negative frequency means passwords never
// expire. The boundary is inclusive: a password exactly frequency days old
// is expired.
func (a *UserAccount) GetIsPasswordExpired(resetFrequencyDays int) bool {
	if resetFrequencyDays <= 0 || a.PasswordChanged.IsZero() {
		return false
	}
	age := a.now().Sub(a.PasswordChanged)
	return age >= time.Duration(resetFrequencyDays)*24*time.Hour
}

// ResetPassword issues a change-password key. If a fresh key for the same
// purpose is already outstanding it is left untouched and nothing is
// emitted — only the hash is kept, so the original clear text cannot be
// re-announced.
func (a *UserAccount) ResetPassword(keyStaleAfter time.Duration) error {
	if !a.IsAccountVerified {
		return fmt.Errorf("account not yet verified: %w", ErrValidation)
	}
	if a.VerificationPurpose == PurposeChangePassword && !a.IsVerificationKeyStale(keyStaleAfter) {
		// A usable key is already in flight.
		return nil
	}
	key, err := a.issueVerificationKey(PurposeChangePassword, "")
	if err != nil {
		return err
	}
	a.LastUpdated = a.now()
	a.addEvent(PasswordResetRequestedEvent{AccountEvent{a}, key})
	return nil
}

// ChangePasswordFromResetKey redeems a reset key. Wrong, stale, or
// wrong-purpose keys return false without mutation; an empty new password is
// malformed input and errors instead.
func (a *UserAccount) ChangePasswordFromResetKey(key, newPassword string, keyStaleAfter time.Duration) (bool, error) {
	if key == "" || !a.IsAccountVerified {
		return false, nil
	}
	if a.VerificationPurpose != PurposeChangePassword {
		return false, nil
	}
	if a.IsVerificationKeyStale(keyStaleAfter) {
		return false, nil
	}
	if !a.verificationKeyMatches(key) {
		return false, nil
	}
	if err := a.SetPassword(newPassword); err != nil {
		return false, err
	}
	a.clearVerificationKey()
	a.addEvent(PasswordChangedEvent{AccountEvent{a}})
	return true, nil
}

// ChangeEmailRequest issues a change-email key with the pending address
// parked in VerificationStorage. Duplicate requests while a fresh key is
// outstanding for the same address are suppressed.
func (a *UserAccount) ChangeEmailRequest(newEmail string, keyStaleAfter time.Duration) error {
	if newEmail == "" {
		return fmt.Errorf("new email is required: %w", ErrValidation)
	}
	if !a.IsAccountVerified {
		return fmt.Errorf("account not yet verified: %w", ErrValidation)
	}
	if a.VerificationPurpose == PurposeChangeEmail &&
		a.VerificationStorage == newEmail &&
		!a.IsVerificationKeyStale(keyStaleAfter) {
		return nil
	}
	key, err := a.issueVerificationKey(PurposeChangeEmail, newEmail)
	if err != nil {
		return err
	}
	a.LastUpdated = a.now()
	a.addEvent(EmailChangeRequestedEvent{AccountEvent{a}, newEmail, key})
	return nil
}

// ChangeEmailFromKey redeems a change-email key. The split failure modes are
// deliberate: malformed input (empty newEmail) errors, while a wrong or
// expired key returns false.
func (a *UserAccount) ChangeEmailFromKey(key, newEmail string, keyStaleAfter time.Duration) (bool, error) {
	if newEmail == "" {
		return false, fmt.Errorf("new email is required: %w", ErrValidation)
	}
	if key == "" || !a.IsAccountVerified {
		return false, nil
	}
	if a.VerificationPurpose != PurposeChangeEmail {
		return false, nil
	}
	if a.IsVerificationKeyStale(keyStaleAfter) {
		return false, nil
	}
	if !a.verificationKeyMatches(key) {
		return false, nil
	}
	old := a.Email
	a.Email = newEmail
	a.clearVerificationKey()
	a.LastUpdated = a.now()
	a.addEvent(EmailChangedEvent{AccountEvent{a}, old})
	return true, nil
}

// ChangeUsername assigns the new name directly; uniqueness is the service's
// concern.
func (a *UserAccount) ChangeUsername(newUsername string) error {
	if newUsername == "" {
		return fmt.Errorf("new username is required: %w", ErrArgument)
	}
	old := a.Username
	a.Username = newUsername
	a.LastUpdated = a.now()
	a.addEvent(UsernameChangedEvent{AccountEvent{a}, old})
	return nil
}

// MarkVerified flips the account to verified without a key, used when the
// deployment does not require account verification. No event.
func (a *UserAccount) MarkVerified() {
	a.IsAccountVerified = true
	a.clearVerificationKey()
	a.LastUpdated = a.now()
}

// CloseAccount soft-deletes the account. Idempotent; the closed event fires
// only on the open->closed transition. A closed account can never log in.
func (a *UserAccount) CloseAccount() {
	if a.IsAccountClosed {
		a.IsLoginAllowed = false
		return
	}
	now := a.now()
	a.IsAccountClosed = true
	a.AccountClosed = &now
	a.IsLoginAllowed = false
	a.LastUpdated = now
	a.addEvent(AccountClosedEvent{AccountEvent{a}})
}
