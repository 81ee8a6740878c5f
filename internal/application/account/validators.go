package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-membership/internal/domain"
	"github.com/go-membership/internal/pkg/validate"
)

// Validator checks one candidate value against an account in the context of
// a service. The chains for username, email, and password run every
// registered validator and surface the first failure; custom validators
// registered via the service are appended to the built-ins below.
type Validator func(ctx context.Context, s *Service, a *domain.UserAccount, value string) error

func (s *Service) runValidators(ctx context.Context, chain []Validator, a *domain.UserAccount, value string) error {
	for _, v := range chain {
		if err := v(ctx, s, a, value); err != nil {
			return err
		}
	}
	return nil
}

// UsernameHasNoAtSign rejects usernames that look like email addresses,
// except in email-is-username mode where they are one and the same.
func UsernameHasNoAtSign(_ context.Context, s *Service, _ *domain.UserAccount, username string) error {
	if s.cfg.EmailIsUsername {
		return nil
	}
	if strings.Contains(username, "@") {
		return fmt.Errorf("username cannot contain '@': %w", domain.ErrValidation)
	}
	return nil
}

// UsernameNotAlreadyInUse rejects usernames taken by a different account,
// scoped per tenant or globally per configuration.
func UsernameNotAlreadyInUse(ctx context.Context, s *Service, a *domain.UserAccount, username string) error {
	other, err := s.GetByUsername(ctx, a.Tenant, username)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if other.ID != a.ID {
		return fmt.Errorf("username already in use: %w", domain.ErrValidation)
	}
	return nil
}

// EmailIsValidFormat rejects syntactically invalid addresses.
func EmailIsValidFormat(_ context.Context, _ *Service, _ *domain.UserAccount, email string) error {
	if !validate.Email(email) {
		return fmt.Errorf("email is not a valid address: %w", domain.ErrValidation)
	}
	return nil
}

// EmailNotAlreadyInUse rejects addresses used by a different account in the
// same tenant.
func EmailNotAlreadyInUse(ctx context.Context, s *Service, a *domain.UserAccount, email string) error {
	other, err := s.GetByEmail(ctx, a.Tenant, email)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if other.ID != a.ID {
		return fmt.Errorf("email already in use: %w", domain.ErrValidation)
	}
	return nil
}

// PasswordDiffersFromCurrent rejects reusing the current password. Brand-new
// accounts — detected by the absence of any prior login — are exempt, since
// their freshly set password is the one being validated.
func PasswordDiffersFromCurrent(_ context.Context, _ *Service, a *domain.UserAccount, password string) error {
	if a.LastLogin == nil {
		return nil
	}
	if a.VerifyHashedPassword(password) {
		return fmt.Errorf("new password must differ from the current password: %w", domain.ErrValidation)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
