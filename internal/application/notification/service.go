// Package notification turns post-commit domain events into emails and
// SMS. It subscribes to the event bus after persistence, so a failed
// delivery never rolls back an account mutation.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-membership/internal/domain"
	"github.com/go-membership/internal/events"
	"github.com/go-membership/internal/infrastructure/smtp"
	"github.com/go-membership/internal/infrastructure/sns"
)

// Service delivers account notifications. Either channel may be nil; events
// needing a missing channel are logged and dropped.
type Service struct {
	mailer smtp.Mailer
	sms    sns.SMSSender
}

func NewService(mailer smtp.Mailer, sms sns.SMSSender) *Service {
	return &Service{mailer: mailer, sms: sms}
}

// Register subscribes every delivery handler post-commit.
func (s *Service) Register(bus *events.Bus) {
	bus.SubscribeAfter(events.On(s.onAccountCreated))
	bus.SubscribeAfter(events.On(s.onAccountVerified))
	bus.SubscribeAfter(events.On(s.onAccountClosed))
	bus.SubscribeAfter(events.On(s.onUsernameChanged))
	bus.SubscribeAfter(events.On(s.onUsernameReminder))
	bus.SubscribeAfter(events.On(s.onPasswordChanged))
	bus.SubscribeAfter(events.On(s.onPasswordResetRequested))
	bus.SubscribeAfter(events.On(s.onEmailChangeRequested))
	bus.SubscribeAfter(events.On(s.onEmailChanged))
	bus.SubscribeAfter(events.On(s.onMobileChangeRequested))
	bus.SubscribeAfter(events.On(s.onTwoFactorCode))
}

func (s *Service) email(to, subject, body string) error {
	if s.mailer == nil {
		slog.Warn("mailer not configured, dropping notification", "subject", subject)
		return nil
	}
	return s.mailer.SendEmail(to, subject, body)
}

func (s *Service) text(ctx context.Context, to, message string) error {
	if s.sms == nil {
		slog.Warn("SMS sender not configured, dropping notification")
		return nil
	}
	return s.sms.SendSMS(ctx, to, message)
}

func (s *Service) onAccountCreated(_ context.Context, ev domain.AccountCreatedEvent) error {
	body := fmt.Sprintf(
		"Welcome, %s.\r\n\r\nConfirm your account with this verification key: %s",
		ev.Account.Username, ev.VerificationKey)
	return s.email(ev.Account.Email, "Confirm your account", body)
}

func (s *Service) onAccountVerified(_ context.Context, ev domain.AccountVerifiedEvent) error {
	return s.email(ev.Account.Email, "Account verified",
		"Your account has been verified. You can now sign in.")
}

func (s *Service) onAccountClosed(_ context.Context, ev domain.AccountClosedEvent) error {
	return s.email(ev.Account.Email, "Account closed",
		"Your account has been closed. If this wasn't you, contact support.")
}

func (s *Service) onUsernameChanged(_ context.Context, ev domain.UsernameChangedEvent) error {
	body := fmt.Sprintf("Your username was changed from %s to %s.", ev.OldUsername, ev.Account.Username)
	return s.email(ev.Account.Email, "Username changed", body)
}

func (s *Service) onUsernameReminder(_ context.Context, ev domain.UsernameReminderRequestedEvent) error {
	body := fmt.Sprintf("Your username is: %s", ev.Account.Username)
	return s.email(ev.Account.Email, "Username reminder", body)
}

func (s *Service) onPasswordChanged(_ context.Context, ev domain.PasswordChangedEvent) error {
	return s.email(ev.Account.Email, "Password changed",
		"Your password was just changed. If this wasn't you, reset it immediately.")
}

func (s *Service) onPasswordResetRequested(_ context.Context, ev domain.PasswordResetRequestedEvent) error {
	body := fmt.Sprintf("Use this key to reset your password: %s", ev.VerificationKey)
	return s.email(ev.Account.Email, "Password reset", body)
}

// onEmailChangeRequested mails the key to the PENDING address — proving
// control of the new mailbox is the whole point.
func (s *Service) onEmailChangeRequested(_ context.Context, ev domain.EmailChangeRequestedEvent) error {
	body := fmt.Sprintf("Confirm your new email address with this key: %s", ev.VerificationKey)
	if err := s.email(ev.NewEmail, "Confirm email change", body); err != nil {
		return err
	}
	notice := fmt.Sprintf("A request was made to change your email to %s.", ev.NewEmail)
	return s.email(ev.Account.Email, "Email change requested", notice)
}

func (s *Service) onEmailChanged(_ context.Context, ev domain.EmailChangedEvent) error {
	if err := s.email(ev.Account.Email, "Email changed",
		"This address is now attached to your account."); err != nil {
		return err
	}
	if ev.OldEmail != "" && ev.OldEmail != ev.Account.Email {
		notice := fmt.Sprintf("Your account email was changed to %s.", ev.Account.Email)
		return s.email(ev.OldEmail, "Email changed", notice)
	}
	return nil
}

func (s *Service) onMobileChangeRequested(ctx context.Context, ev domain.MobilePhoneChangeRequestedEvent) error {
	msg := fmt.Sprintf("Your phone confirmation code: %s", ev.Code)
	return s.text(ctx, ev.NewMobilePhoneNumber, msg)
}

func (s *Service) onTwoFactorCode(ctx context.Context, ev domain.TwoFactorAuthCodeNotificationEvent) error {
	msg := fmt.Sprintf("Your sign-in code: %s", ev.Code)
	return s.text(ctx, ev.Account.MobilePhoneNumber, msg)
}
