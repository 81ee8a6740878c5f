package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-membership/internal/domain"
	"github.com/go-membership/internal/pkg/validate"
)

// ResetPassword starts a password reset for the account owning the email.
// An unknown email reports success-shaped silence at the transport layer;
// here it is ErrNotFound so library callers can decide.
func (s *Service) ResetPassword(ctx context.Context, tenant, email string) error {
	a, err := s.GetByEmail(ctx, tenant, email)
	if err != nil {
		return err
	}
	if err := a.ResetPassword(s.cfg.VerificationKeyLifetime); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// ChangePasswordFromResetKey redeems a reset key delivered by email. Wrong
// or expired keys report false; an empty new password errors.
func (s *Service) ChangePasswordFromResetKey(ctx context.Context, key, newPassword string) (bool, error) {
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
	if err := s.runValidators(ctx, s.passwordValidators, a, newPassword); err != nil {
		return false, err
	}
	ok, err := a.ChangePasswordFromResetKey(key, newPassword, s.cfg.VerificationKeyLifetime)
	if err != nil || !ok {
		return false, err
	}
	if err := s.save(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// ChangePassword rotates the password of a logged-in account after
// re-verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.runValidators(ctx, s.passwordValidators, a, newPassword); err != nil {
		return err
	}
	if err := a.ChangePassword(oldPassword, newPassword); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// ResetPasswordFromSecretQuestionAndAnswers is the fallback channel when the
// email is inaccessible: every registered secret must be answered correctly
// before a reset key is issued.
func (s *Service) ResetPasswordFromSecretQuestionAndAnswers(ctx context.Context, accountID string, answers map[string]string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if len(a.PasswordResetSecrets) == 0 {
		return fmt.Errorf("no password reset secrets registered: %w", domain.ErrValidation)
	}
	for _, secret := range a.PasswordResetSecrets {
		answer, ok := answers[secret.ID]
		if !ok || !a.VerifyPasswordResetSecret(secret.ID, answer) {
			return fmt.Errorf("incorrect secret answer: %w", domain.ErrValidation)
		}
	}
	if err := a.ResetPassword(s.cfg.VerificationKeyLifetime); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// AddPasswordResetSecret registers a question/answer pair on the account.
func (s *Service) AddPasswordResetSecret(ctx context.Context, accountID, question, answer string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.AddPasswordResetSecret(question, answer); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// RemovePasswordResetSecret drops a registered secret.
func (s *Service) RemovePasswordResetSecret(ctx context.Context, accountID, secretID string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.RemovePasswordResetSecret(secretID); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// SendUsernameReminder mails the account name to its verified address.
func (s *Service) SendUsernameReminder(ctx context.Context, tenant, email string) error {
	a, err := s.GetByEmail(ctx, tenant, email)
	if err != nil {
		return err
	}
	a.RequestUsernameReminder()
	return s.save(ctx, a)
}

// ChangeUsername renames the account after running the username chain.
func (s *Service) ChangeUsername(ctx context.Context, accountID, newUsername string) error {
	if s.cfg.EmailIsUsername {
		return fmt.Errorf("username cannot change when email is the username: %w", domain.ErrValidation)
	}
	if newUsername == "" {
		return fmt.Errorf("new username is required: %w", domain.ErrArgument)
	}
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.runValidators(ctx, s.usernameValidators, a, newUsername); err != nil {
		return err
	}
	if err := a.ChangeUsername(newUsername); err != nil {
		return err
	}
	if err := s.save(ctx, a); err != nil {
		return err
	}
	slog.Info("username changed", "account_id", a.ID)
	return nil
}

// ChangeEmailRequest starts an email change: a key goes to the candidate
// address, which stays pending until redeemed.
func (s *Service) ChangeEmailRequest(ctx context.Context, accountID, newEmail string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.runValidators(ctx, s.emailValidators, a, newEmail); err != nil {
		return err
	}
	if err := a.ChangeEmailRequest(newEmail, s.cfg.VerificationKeyLifetime); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// ChangeEmailFromKey redeems a change-email key. In email-is-username mode
// the username follows the email.
func (s *Service) ChangeEmailFromKey(ctx context.Context, key, newEmail string) (bool, error) {
	if newEmail == "" {
		return false, fmt.Errorf("new email is required: %w", domain.ErrValidation)
	}
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
	if err := s.runValidators(ctx, s.emailValidators, a, newEmail); err != nil {
		return false, err
	}
	ok, err := a.ChangeEmailFromKey(key, newEmail, s.cfg.VerificationKeyLifetime)
	if err != nil || !ok {
		return false, err
	}
	if s.cfg.EmailIsUsername {
		a.Username = newEmail
	}
	if err := s.save(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// ChangeMobilePhoneRequest starts a phone change; the code is texted to the
// candidate number.
func (s *Service) ChangeMobilePhoneRequest(ctx context.Context, accountID, newPhone string) error {
	if !validate.Phone(newPhone) {
		return fmt.Errorf("%w: mobile phone must be in international format", domain.ErrValidation)
	}
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.ChangeMobilePhoneRequest(newPhone, s.cfg.MobileCodeLifetime); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// ChangeMobilePhoneFromCode redeems a phone-change code.
func (s *Service) ChangeMobilePhoneFromCode(ctx context.Context, accountID, code string) (bool, error) {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	if !a.ChangeMobilePhoneFromCode(code, s.cfg.MobileCodeLifetime) {
		return false, nil
	}
	if err := s.save(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveMobilePhone clears the number and any mobile second factor with it.
func (s *Service) RemoveMobilePhone(ctx context.Context, accountID string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	a.RemoveMobilePhone()
	return s.save(ctx, a)
}
