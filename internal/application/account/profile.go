package account

import (
	"context"

	"github.com/go-membership/internal/domain"
)

// AddClaim records a claim on the account. Duplicates are a no-op.
func (s *Service) AddClaim(ctx context.Context, accountID, claimType, value string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.AddClaim(claimType, value); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// RemoveClaim removes the exact (type, value) pair.
func (s *Service) RemoveClaim(ctx context.Context, accountID, claimType, value string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.RemoveClaim(claimType, value); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// RemoveClaimType removes every claim of the type regardless of value.
func (s *Service) RemoveClaimType(ctx context.Context, accountID, claimType string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.RemoveClaimType(claimType); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// AddOrUpdateLinkedAccount links an external-provider identity to the
// account. Linking an identity already owned by another account is vetoed
// pre-commit.
func (s *Service) AddOrUpdateLinkedAccount(ctx context.Context, accountID, provider, providerAccountID string, claims []domain.UserClaim) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.AddOrUpdateLinkedAccount(provider, providerAccountID, claims); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// RemoveLinkedAccount unlinks an external identity.
func (s *Service) RemoveLinkedAccount(ctx context.Context, accountID, provider, providerAccountID string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.RemoveLinkedAccount(provider, providerAccountID); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// AddCertificate registers a client certificate. A thumbprint owned by
// another account is vetoed pre-commit.
func (s *Service) AddCertificate(ctx context.Context, accountID, thumbprint, subject string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.AddCertificate(thumbprint, subject); err != nil {
		return err
	}
	return s.save(ctx, a)
}

// RemoveCertificate drops a registered certificate.
func (s *Service) RemoveCertificate(ctx context.Context, accountID, thumbprint string) error {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := a.RemoveCertificate(thumbprint); err != nil {
		return err
	}
	return s.save(ctx, a)
}
