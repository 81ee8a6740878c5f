package domain

import (
	"fmt"

	"github.com/go-membership/internal/pkg/id"
)

// HasClaimType reports whether any claim of the given type exists.
func (a *UserAccount) HasClaimType(claimType string) (bool, error) {
	if claimType == "" {
		return false, fmt.Errorf("claim type is required: %w", ErrArgument)
	}
	for _, c := range a.Claims {
		if c.Type == claimType {
			return true, nil
		}
	}
	return false, nil
}

// HasClaim reports whether the exact (type, value) pair exists.
func (a *UserAccount) HasClaim(claimType, value string) (bool, error) {
	if claimType == "" {
		return false, fmt.Errorf("claim type is required: %w", ErrArgument)
	}
	if value == "" {
		return false, fmt.Errorf("claim value is required: %w", ErrArgument)
	}
	for _, c := range a.Claims {
		if c.Type == claimType && c.Value == value {
			return true, nil
		}
	}
	return false, nil
}

// GetClaimValue returns the single value of a claim type. Claim values are
// expected unique per type through this accessor; more than one match is
// ErrMultipleResults, none is the empty string.
func (a *UserAccount) GetClaimValue(claimType string) (string, error) {
	if claimType == "" {
		return "", fmt.Errorf("claim type is required: %w", ErrArgument)
	}
	var value string
	found := false
	for _, c := range a.Claims {
		if c.Type != claimType {
			continue
		}
		if found {
			return "", fmt.Errorf("claim type %q has multiple values: %w", claimType, ErrMultipleResults)
		}
		value = c.Value
		found = true
	}
	return value, nil
}

// GetClaimValues returns all values of a claim type, possibly none.
func (a *UserAccount) GetClaimValues(claimType string) ([]string, error) {
	if claimType == "" {
		return nil, fmt.Errorf("claim type is required: %w", ErrArgument)
	}
	var values []string
	for _, c := range a.Claims {
		if c.Type == claimType {
			values = append(values, c.Value)
		}
	}
	return values, nil
}

// AddClaim records a (type, value) pair. Adding a pair that is already
// present is a no-op.
func (a *UserAccount) AddClaim(claimType, value string) error {
	if claimType == "" {
		return fmt.Errorf("claim type is required: %w", ErrArgument)
	}
	if value == "" {
		return fmt.Errorf("claim value is required: %w", ErrArgument)
	}
	if present, _ := a.HasClaim(claimType, value); present {
		return nil
	}
	claim := UserClaim{Type: claimType, Value: value}
	a.Claims = append(a.Claims, claim)
	a.LastUpdated = a.now()
	a.addEvent(ClaimAddedEvent{AccountEvent{a}, claim})
	return nil
}

// RemoveClaimType removes every claim of the given type.
func (a *UserAccount) RemoveClaimType(claimType string) error {
	if claimType == "" {
		return fmt.Errorf("claim type is required: %w", ErrArgument)
	}
	kept := a.Claims[:0]
	var removed []UserClaim
	for _, c := range a.Claims {
		if c.Type == claimType {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	a.Claims = kept
	for _, c := range removed {
		a.addEvent(ClaimRemovedEvent{AccountEvent{a}, c})
	}
	if len(removed) > 0 {
		a.LastUpdated = a.now()
	}
	return nil
}

// RemoveClaim removes the exact (type, value) pair.
func (a *UserAccount) RemoveClaim(claimType, value string) error {
	if claimType == "" {
		return fmt.Errorf("claim type is required: %w", ErrArgument)
	}
	if value == "" {
		return fmt.Errorf("claim value is required: %w", ErrArgument)
	}
	kept := a.Claims[:0]
	var removed []UserClaim
	for _, c := range a.Claims {
		if c.Type == claimType && c.Value == value {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	a.Claims = kept
	for _, c := range removed {
		a.addEvent(ClaimRemovedEvent{AccountEvent{a}, c})
	}
	if len(removed) > 0 {
		a.LastUpdated = a.now()
	}
	return nil
}

// GetLinkedAccount finds a linked external identity, or nil.
func (a *UserAccount) GetLinkedAccount(provider, providerAccountID string) *LinkedAccount {
	for i := range a.LinkedAccounts {
		la := &a.LinkedAccounts[i]
		if la.ProviderName == provider && la.ProviderAccountID == providerAccountID {
			return la
		}
	}
	return nil
}

// AddOrUpdateLinkedAccount links an external-provider identity, refreshing
// its LastLogin and replacing its claims on every call. Cross-account
// uniqueness of (provider, id) is checked by a pre-commit handler on
// LinkedAccountAddedEvent.
func (a *UserAccount) AddOrUpdateLinkedAccount(provider, providerAccountID string, claims []UserClaim) error {
	if provider == "" {
		return fmt.Errorf("provider name is required: %w", ErrArgument)
	}
	if providerAccountID == "" {
		return fmt.Errorf("provider account id is required: %w", ErrArgument)
	}
	now := a.now()
	if la := a.GetLinkedAccount(provider, providerAccountID); la != nil {
		la.LastLogin = &now
		la.Claims = claims
		a.LastUpdated = now
		return nil
	}
	la := LinkedAccount{
		ProviderName:      provider,
		ProviderAccountID: providerAccountID,
		LastLogin:         &now,
		Claims:            claims,
	}
	a.LinkedAccounts = append(a.LinkedAccounts, la)
	a.LastUpdated = now
	a.addEvent(LinkedAccountAddedEvent{AccountEvent{a}, la})
	return nil
}

// RemoveLinkedAccount unlinks an external identity. Unknown links are a
// no-op.
func (a *UserAccount) RemoveLinkedAccount(provider, providerAccountID string) error {
	if provider == "" {
		return fmt.Errorf("provider name is required: %w", ErrArgument)
	}
	if providerAccountID == "" {
		return fmt.Errorf("provider account id is required: %w", ErrArgument)
	}
	kept := a.LinkedAccounts[:0]
	var removed *LinkedAccount
	for _, la := range a.LinkedAccounts {
		if la.ProviderName == provider && la.ProviderAccountID == providerAccountID {
			rla := la
			removed = &rla
			continue
		}
		kept = append(kept, la)
	}
	a.LinkedAccounts = kept
	if removed != nil {
		a.LastUpdated = a.now()
		a.addEvent(LinkedAccountRemovedEvent{AccountEvent{a}, *removed})
	}
	return nil
}

// AddPasswordResetSecret registers a question/answer pair; the answer is
// stored hashed. Duplicate questions are rejected.
func (a *UserAccount) AddPasswordResetSecret(question, answer string) error {
	if question == "" {
		return fmt.Errorf("question is required: %w", ErrValidation)
	}
	if answer == "" {
		return fmt.Errorf("answer is required: %w", ErrValidation)
	}
	for _, s := range a.PasswordResetSecrets {
		if s.Question == question {
			return fmt.Errorf("question already in use: %w", ErrValidation)
		}
	}
	a.PasswordResetSecrets = append(a.PasswordResetSecrets, PasswordResetSecret{
		ID:       id.New(),
		Question: question,
		Answer:   a.crypto.Hash(answer),
	})
	a.LastUpdated = a.now()
	a.addEvent(PasswordResetSecretAddedEvent{AccountEvent{a}, question})
	return nil
}

// RemovePasswordResetSecret drops a secret by id. Unknown ids are a no-op.
func (a *UserAccount) RemovePasswordResetSecret(secretID string) error {
	if secretID == "" {
		return fmt.Errorf("secret id is required: %w", ErrArgument)
	}
	kept := a.PasswordResetSecrets[:0]
	var removed *PasswordResetSecret
	for _, s := range a.PasswordResetSecrets {
		if s.ID == secretID {
			rs := s
			removed = &rs
			continue
		}
		kept = append(kept, s)
	}
	a.PasswordResetSecrets = kept
	if removed != nil {
		a.LastUpdated = a.now()
		a.addEvent(PasswordResetSecretRemovedEvent{AccountEvent{a}, removed.Question})
	}
	return nil
}

// VerifyPasswordResetSecret checks one answer against the stored hash.
func (a *UserAccount) VerifyPasswordResetSecret(secretID, answer string) bool {
	if secretID == "" || answer == "" {
		return false
	}
	for _, s := range a.PasswordResetSecrets {
		if s.ID == secretID {
			return s.Answer == a.crypto.Hash(answer)
		}
	}
	return false
}
