package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-membership/internal/domain"
)

// AuthResult reports the outcome of a primary authentication attempt. When
// a second factor is pending, Success is false and PendingTwoFactorAuth
// names the required mode; the flow completes through AuthenticateWithCode
// or AuthenticateWithCertificate.
type AuthResult struct {
	Account              *domain.UserAccount
	Success              bool
	PendingTwoFactorAuth domain.TwoFactorAuthMode
}

func failedAuth() *AuthResult {
	return &AuthResult{Success: false, PendingTwoFactorAuth: domain.TwoFactorNone}
}

// Authenticate verifies tenant/username/password. Unknown accounts report
// failure rather than erroring, so callers cannot distinguish a missing
// account from a wrong password. Failure bookkeeping (lockout counters) is
// persisted even on unsuccessful attempts.
func (s *Service) Authenticate(ctx context.Context, tenant, username, password string) (*AuthResult, error) {
	if username == "" {
		return failedAuth(), nil
	}
	a, err := s.GetByUsername(ctx, tenant, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return failedAuth(), nil
		}
		return nil, err
	}
	return s.authenticate(ctx, a, password)
}

// AuthenticateWithEmail verifies tenant/email/password.
func (s *Service) AuthenticateWithEmail(ctx context.Context, tenant, email, password string) (*AuthResult, error) {
	if email == "" {
		return failedAuth(), nil
	}
	a, err := s.GetByEmail(ctx, tenant, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return failedAuth(), nil
		}
		return nil, err
	}
	return s.authenticate(ctx, a, password)
}

// AuthenticateWithUsernameOrEmail picks the lookup by the shape of the
// identifier when email-is-username mode is on.
func (s *Service) AuthenticateWithUsernameOrEmail(ctx context.Context, tenant, userNameOrEmail, password string) (*AuthResult, error) {
	if s.cfg.EmailIsUsername || strings.Contains(userNameOrEmail, "@") {
		return s.AuthenticateWithEmail(ctx, tenant, userNameOrEmail, password)
	}
	return s.Authenticate(ctx, tenant, userNameOrEmail, password)
}

func (s *Service) authenticate(ctx context.Context, a *domain.UserAccount, password string) (*AuthResult, error) {
	ok, err := a.Authenticate(password, s.cfg.AccountLockoutFailedLoginAttempts, s.cfg.AccountLockoutDuration)
	if err != nil {
		return nil, err
	}
	// Failure bookkeeping must stick even when the attempt is rejected.
	if saveErr := s.save(ctx, a); saveErr != nil {
		return nil, saveErr
	}
	if !ok {
		slog.Info("authentication failed", "account_id", a.ID, "tenant", a.Tenant)
		return failedAuth(), nil
	}

	if a.AccountTwoFactorAuthMode != domain.TwoFactorNone {
		if s.policy != nil {
			if token := s.policy.TwoFactorAuthToken(ctx, a); token != "" &&
				a.VerifyTwoFactorAuthToken(token, s.cfg.TwoFactorAuthTokenLifetime) {
				if err := s.save(ctx, a); err != nil {
					return nil, err
				}
				return &AuthResult{Account: a, Success: true, PendingTwoFactorAuth: domain.TwoFactorNone}, nil
			}
		}
		switch a.AccountTwoFactorAuthMode {
		case domain.TwoFactorMobile:
			if err := a.RequestTwoFactorAuthCode(); err != nil {
				return nil, err
			}
		case domain.TwoFactorCertificate:
			if err := a.RequestTwoFactorAuthCertificate(); err != nil {
				return nil, err
			}
		}
		if err := s.save(ctx, a); err != nil {
			return nil, err
		}
		return &AuthResult{Account: a, Success: false, PendingTwoFactorAuth: a.AccountTwoFactorAuthMode}, nil
	}

	return &AuthResult{Account: a, Success: true, PendingTwoFactorAuth: domain.TwoFactorNone}, nil
}

// AuthenticateWithCode completes a pending mobile two-factor login. On
// success a remembered-device token is issued through the policy, if one is
// configured.
func (s *Service) AuthenticateWithCode(ctx context.Context, accountID, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	if !a.VerifyTwoFactorAuthCode(code, s.cfg.MobileCodeLifetime) {
		return false, nil
	}
	if s.policy != nil {
		token, err := a.CreateTwoFactorAuthToken()
		if err != nil {
			return false, err
		}
		s.policy.IssueTwoFactorAuthToken(ctx, a, token)
	}
	if err := s.save(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// AuthenticateWithCertificate completes a pending certificate two-factor
// login by thumbprint lookup.
func (s *Service) AuthenticateWithCertificate(ctx context.Context, tenant, thumbprint string) (bool, error) {
	if thumbprint == "" {
		return false, nil
	}
	tenant, err := s.resolveTenant(tenant)
	if err != nil {
		return false, err
	}
	a, err := s.repo.GetByCertificate(ctx, tenant, thumbprint)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	s.attach(a)
	if !a.VerifyTwoFactorAuthCertificate(thumbprint) {
		return false, nil
	}
	if err := s.save(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// AuthenticateWithLinkedAccount signs in through an already-linked external
// identity. The provider is trusted to have authenticated the user; this
// only requires the local account to be verified, open, and login-enabled.
func (s *Service) AuthenticateWithLinkedAccount(ctx context.Context, tenant, provider, providerAccountID string) (*AuthResult, error) {
	a, err := s.GetByLinkedAccount(ctx, tenant, provider, providerAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return failedAuth(), nil
		}
		return nil, err
	}
	if !a.IsAccountVerified || !a.IsLoginAllowed || a.IsAccountClosed {
		return failedAuth(), nil
	}
	if err := a.AddOrUpdateLinkedAccount(provider, providerAccountID, nil); err != nil {
		return nil, err
	}
	if err := s.save(ctx, a); err != nil {
		return nil, err
	}
	return &AuthResult{Account: a, Success: true, PendingTwoFactorAuth: domain.TwoFactorNone}, nil
}

// SendTwoFactorAuthenticationCode re-issues and re-sends the mobile login
// code for an account mid-way through a two-factor login.
func (s *Service) SendTwoFactorAuthenticationCode(ctx context.Context, accountID string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.RequestTwoFactorAuthCode(); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// ConfigureTwoFactorAuthentication switches the account's second factor.
func (s *Service) ConfigureTwoFactorAuthentication(ctx context.Context, accountID string, mode domain.TwoFactorAuthMode) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.ConfigureTwoFactorAuthentication(mode); err != nil {
		return err
	}
	if mode == domain.TwoFactorNone {
		a.RemoveTwoFactorAuthTokens()
	}
	if err := s.save(ctx, a); err != nil {
		return err
	}
	slog.Info("two factor auth configured", "account_id", a.ID, "mode", string(mode))
	return nil
}
