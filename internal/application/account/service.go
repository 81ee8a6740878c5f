// Package account implements the user-account service: the orchestration
// layer tying the UserAccount state machine to a repository, the validator
// chains, and the two-phase event bus.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-membership/internal/config"
	"github.com/go-membership/internal/domain"
	"github.com/go-membership/internal/events"
)

// AccountRepository is the persistence contract. Implementations must make
// the listed lookups efficient; how (indexes, scans, tables) is their
// business. All methods return detached aggregates.
type AccountRepository interface {
	Create() *domain.UserAccount
	GetByID(ctx context.Context, id string) (*domain.UserAccount, error)
	GetByUsername(ctx context.Context, tenant, username string) (*domain.UserAccount, error)
	// GetByUsernameAny ignores tenant boundaries; used when usernames are
	// unique across tenants.
	GetByUsernameAny(ctx context.Context, username string) (*domain.UserAccount, error)
	GetByEmail(ctx context.Context, tenant, email string) (*domain.UserAccount, error)
	GetByVerificationKey(ctx context.Context, hashedKey string) (*domain.UserAccount, error)
	GetByLinkedAccount(ctx context.Context, tenant, provider, providerAccountID string) (*domain.UserAccount, error)
	GetByCertificate(ctx context.Context, tenant, thumbprint string) (*domain.UserAccount, error)
	GetByMobilePhone(ctx context.Context, tenant, phone string) (*domain.UserAccount, error)
	Add(ctx context.Context, a *domain.UserAccount) error
	Update(ctx context.Context, a *domain.UserAccount) error
	Remove(ctx context.Context, a *domain.UserAccount) error
}

// TwoFactorAuthenticationPolicy lets the caller's transport decide whether a
// specific request may skip the second factor (e.g. a trusted-device
// cookie). A nil policy always requires the second factor.
type TwoFactorAuthenticationPolicy interface {
	// TwoFactorAuthToken returns the remembered-device token presented by
	// the current request, or "" when none was presented.
	TwoFactorAuthToken(ctx context.Context, a *domain.UserAccount) string
	// IssueTwoFactorAuthToken hands a freshly minted remembered-device
	// token back to the client.
	IssueTwoFactorAuthToken(ctx context.Context, a *domain.UserAccount, token string)
}

// Service orchestrates account operations. Stateless between calls; safe for
// concurrent use. It deliberately does not coordinate concurrent mutations
// of the same account — see the UserAccount doc.
type Service struct {
	cfg    *config.Config
	repo   AccountRepository
	bus    *events.Bus
	crypto domain.Crypto
	clock  domain.Clock
	policy TwoFactorAuthenticationPolicy

	usernameValidators []Validator
	emailValidators    []Validator
	passwordValidators []Validator
}

// ServiceDeps carries the constructor dependencies. Clock and Policy are
// optional; Clock defaults to the system clock in UTC.
type ServiceDeps struct {
	Cfg    *config.Config
	Repo   AccountRepository
	Bus    *events.Bus
	Crypto domain.Crypto
	Clock  domain.Clock
	Policy TwoFactorAuthenticationPolicy
}

func NewService(deps ServiceDeps) *Service {
	clock := deps.Clock
	if clock == nil {
		clock = domain.SystemClock()
	}
	s := &Service{
		cfg:    deps.Cfg,
		repo:   deps.Repo,
		bus:    deps.Bus,
		crypto: deps.Crypto,
		clock:  clock,
		policy: deps.Policy,
	}
	s.usernameValidators = []Validator{UsernameHasNoAtSign, UsernameNotAlreadyInUse}
	s.emailValidators = []Validator{EmailIsValidFormat, EmailNotAlreadyInUse}
	s.passwordValidators = []Validator{PasswordDiffersFromCurrent}

	// Cross-account uniqueness of certificates and linked accounts is a
	// pre-commit concern: the mutation commits only if no other account
	// holds the same certificate thumbprint or provider identity.
	s.bus.Subscribe(events.On(s.vetoDuplicateCertificate))
	s.bus.Subscribe(events.On(s.vetoDuplicateLinkedAccount))
	return s
}

// RegisterUsernameValidator appends custom username validators to the chain.
func (s *Service) RegisterUsernameValidator(v ...Validator) {
	s.usernameValidators = append(s.usernameValidators, v...)
}

// RegisterEmailValidator appends custom email validators to the chain.
func (s *Service) RegisterEmailValidator(v ...Validator) {
	s.emailValidators = append(s.emailValidators, v...)
}

// RegisterPasswordValidator appends custom password validators to the chain.
func (s *Service) RegisterPasswordValidator(v ...Validator) {
	s.passwordValidators = append(s.passwordValidators, v...)
}

// resolveTenant applies the multi-tenancy policy: in single-tenant mode
// every tenant parameter is silently replaced with the default tenant; in
// multi-tenant mode a missing tenant is an error rather than a guess.
func (s *Service) resolveTenant(tenant string) (string, error) {
	if !s.cfg.MultiTenant {
		return s.cfg.DefaultTenant, nil
	}
	if tenant == "" {
		return "", fmt.Errorf("tenant is required: %w", domain.ErrArgument)
	}
	return tenant, nil
}

func (s *Service) attach(a *domain.UserAccount) *domain.UserAccount {
	if a != nil {
		a.Attach(s.clock, s.crypto)
	}
	return a
}

// saveNew runs the two-phase commit for a freshly created aggregate:
// validate pending events, Add, then publish.
func (s *Service) saveNew(ctx context.Context, a *domain.UserAccount) error {
	evs := a.TakeEvents()
	if err := s.bus.Validate(ctx, evs); err != nil {
		return err
	}
	if err := s.repo.Add(ctx, a); err != nil {
		return err
	}
	s.bus.Publish(ctx, evs)
	return nil
}

// save runs the two-phase commit for a mutated aggregate.
func (s *Service) save(ctx context.Context, a *domain.UserAccount) error {
	evs := a.TakeEvents()
	if err := s.bus.Validate(ctx, evs); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	s.bus.Publish(ctx, evs)
	return nil
}

// CreateAccount provisions a new account in the given tenant. Username,
// email, and password run through their validator chains; whether the
// account starts verified and login-enabled follows configuration.
func (s *Service) CreateAccount(ctx context.Context, tenant, username, password, email string) (*domain.UserAccount, error) {
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return nil, err
	}
	if s.cfg.EmailIsUsername {
		username = email
	}

	a := s.attach(s.repo.Create())
	if err := a.Init(tenant, username, password, email); err != nil {
		return nil, err
	}
	if err := s.runValidators(ctx, s.usernameValidators, a, username); err != nil {
		return nil, err
	}
	if err := s.runValidators(ctx, s.emailValidators, a, email); err != nil {
		return nil, err
	}
	if err := s.runValidators(ctx, s.passwordValidators, a, password); err != nil {
		return nil, err
	}

	if !s.cfg.RequireAccountVerification {
		a.MarkVerified()
	}
	a.IsLoginAllowed = s.cfg.AllowLoginAfterAccountCreation

	if err := s.saveNew(ctx, a); err != nil {
		return nil, err
	}
	slog.Info("account created", "account_id", a.ID, "tenant", a.Tenant, "username", a.Username)
	return a, nil
}

// VerifyAccount consumes an account-verification key found by its hash.
// Unknown, stale-purpose, or mismatched keys report false.
func (s *Service) VerifyAccount(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	a, err := s.getByVerificationKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !a.VerifyAccount(key) {
		return false, nil
	}
	if err := s.save(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// CancelNewAccount aborts an unverified signup: the key is validated by the
// entity and the record is then removed outright.
func (s *Service) CancelNewAccount(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	a, err := s.getByVerificationKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !a.CancelNewAccount(key) {
		return false, nil
	}
	if err := s.repo.Remove(ctx, a); err != nil {
		return false, err
	}
	slog.Info("unverified account cancelled", "account_id", a.ID, "tenant", a.Tenant)
	return true, nil
}

// CloseAccount soft-deletes the account: flags set, record retained.
func (s *Service) CloseAccount(ctx context.Context, accountID string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	a.CloseAccount()
	return s.save(ctx, a)
}

// DeleteAccount closes the account and then physically removes the record,
// but only when deletion is allowed by policy or the account was never
// verified — unverified signups must not linger, while verified accounts
// keep an audit trail under strict policies.
func (s *Service) DeleteAccount(ctx context.Context, accountID string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	a.CloseAccount()
	if err := s.save(ctx, a); err != nil {
		return err
	}
	if s.cfg.AllowAccountDeletion || !a.IsAccountVerified {
		if err := s.repo.Remove(ctx, a); err != nil {
			return err
		}
		slog.Info("account removed", "account_id", a.ID, "tenant", a.Tenant)
	}
	return nil
}

// GetByID loads an account by its opaque id.
func (s *Service) GetByID(ctx context.Context, accountID string) (*domain.UserAccount, error) {
	if accountID == "" {
		return nil, fmt.Errorf("account id is required: %w", domain.ErrArgument)
	}
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.attach(a), nil
}

// GetByUsername loads an account by tenant and username, honouring the
// cross-tenant uniqueness toggle.
func (s *Service) GetByUsername(ctx context.Context, tenant, username string) (*domain.UserAccount, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrArgument)
	}
	if s.cfg.UsernamesUniqueAcrossTenants {
		a, err := s.repo.GetByUsernameAny(ctx, username)
		if err != nil {
			return nil, err
		}
		return s.attach(a), nil
	}
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetByUsername(ctx, tenant, username)
	if err != nil {
		return nil, err
	}
	return s.attach(a), nil
}

// GetByEmail loads an account by tenant and email.
func (s *Service) GetByEmail(ctx context.Context, tenant, email string) (*domain.UserAccount, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrArgument)
	}
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetByEmail(ctx, tenant, email)
	if err != nil {
		return nil, err
	}
	return s.attach(a), nil
}

// GetByLinkedAccount loads the account owning an external-provider identity.
func (s *Service) GetByLinkedAccount(ctx context.Context, tenant, provider, providerAccountID string) (*domain.UserAccount, error) {
	if provider == "" || providerAccountID == "" {
		return nil, fmt.Errorf("provider and provider account id are required: %w", domain.ErrArgument)
	}
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetByLinkedAccount(ctx, tenant, provider, providerAccountID)
	if err != nil {
		return nil, err
	}
	return s.attach(a), nil
}

func (s *Service) getByVerificationKey(ctx context.Context, key string) (*domain.UserAccount, error) {
	a, err := s.repo.GetByVerificationKey(ctx, s.crypto.Hash(key))
	if err != nil {
		return nil, err
	}
	return s.attach(a), nil
}

// UsernameExists reports whether the username is taken, scoped by the
// cross-tenant uniqueness toggle.
func (s *Service) UsernameExists(ctx context.Context, tenant, username string) (bool, error) {
	if username == "" {
		return false, nil
	}
	var err error
	if s.cfg.UsernamesUniqueAcrossTenants {
		_, err = s.repo.GetByUsernameAny(ctx, username)
	} else {
		tenant, err = s.resolveTenant(tenant)
		if err != nil {
			return false, err
		}
		_, err = s.repo.GetByUsername(ctx, tenant, username)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// EmailExists reports whether the email is in use within the tenant.
func (s *Service) EmailExists(ctx context.Context, tenant, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return false, err
	}
	_, err = s.repo.GetByEmail(ctx, tenant, email)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IsPasswordExpired applies the configured reset frequency to the account.
func (s *Service) IsPasswordExpired(a *domain.UserAccount) bool {
	return a.GetIsPasswordExpired(s.cfg.PasswordResetFrequency)
}

func (s *Service) vetoDuplicateCertificate(ctx context.Context, ev domain.CertificateAddedEvent) error {
	owner, err := s.repo.GetByCertificate(ctx, ev.Account.Tenant, ev.Certificate.Thumbprint)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner.ID != ev.Account.ID {
		return fmt.Errorf("certificate already registered to another account: %w", domain.ErrValidation)
	}
	return nil
}

func (s *Service) vetoDuplicateLinkedAccount(ctx context.Context, ev domain.LinkedAccountAddedEvent) error {
	owner, err := s.repo.GetByLinkedAccount(ctx, ev.Account.Tenant, ev.LinkedAccount.ProviderName, ev.LinkedAccount.ProviderAccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner.ID != ev.Account.ID {
		return fmt.Errorf("external identity already linked to another account: %w", domain.ErrValidation)
	}
	return nil
}
