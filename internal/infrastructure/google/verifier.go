package google

import (
	"context"
	"fmt"

	"github.com/go-membership/internal/domain"
	"google.golang.org/api/idtoken"
)

// ProviderName is the linked-account provider key for Google identities.
const ProviderName = "google"

// Payload holds the verified claims extracted from a Google ID token.
type Payload struct {
	Sub           string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
}

// Claims converts the payload into linked-account claims.
func (p *Payload) Claims() []domain.UserClaim {
	claims := []domain.UserClaim{
		{Type: "email", Value: p.Email},
	}
	if p.FirstName != "" {
		claims = append(claims, domain.UserClaim{Type: "given_name", Value: p.FirstName})
	}
	if p.LastName != "" {
		claims = append(claims, domain.UserClaim{Type: "family_name", Value: p.LastName})
	}
	return claims
}

// Verifier verifies Google ID tokens against a specific client ID.
type Verifier struct {
	clientID string
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

// Verify validates the Google ID token and returns the extracted payload.
// Returns a domain.ErrValidation-wrapped error if the token is invalid.
func (v *Verifier) Verify(ctx context.Context, token string) (*Payload, error) {
	p, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrValidation)
	}
	email, _ := p.Claims["email"].(string)
	emailVerified, _ := p.Claims["email_verified"].(bool)
	firstName, _ := p.Claims["given_name"].(string)
	lastName, _ := p.Claims["family_name"].(string)
	return &Payload{
		Sub:           p.Subject,
		Email:         email,
		EmailVerified: emailVerified,
		FirstName:     firstName,
		LastName:      lastName,
	}, nil
}
