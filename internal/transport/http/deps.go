package http

import (
	"github.com/go-membership/internal/application/account"
	"github.com/go-membership/internal/domain"
	"github.com/go-membership/internal/events"
	"github.com/go-membership/internal/infrastructure/google"
	jwtinfra "github.com/go-membership/internal/infrastructure/jwt"
	"github.com/go-membership/internal/infrastructure/smtp"
	"github.com/go-membership/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router. Services are
// wired inside NewRouter.
type Deps struct {
	AccountRepo    account.AccountRepository
	Bus            *events.Bus
	Crypto         domain.Crypto
	Mailer         smtp.Mailer
	SMSSender      sns.SMSSender
	JWTProvider    *jwtinfra.Provider
	GoogleVerifier *google.Verifier
}
