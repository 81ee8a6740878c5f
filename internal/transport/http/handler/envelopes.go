package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-membership/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login responses. When the account requires a second
// factor, Bearer is empty and PendingTwoFactorAuth names the mode the
// client must complete via /auth/two-factor.
type AuthEnvelope struct {
	Bearer               string       `json:"Bearer,omitempty"`
	Account              *SafeAccount `json:"account,omitempty"`
	PendingTwoFactorAuth string       `json:"pending_two_factor_auth,omitempty"`
	Message              string       `json:"message,omitempty"`
	Error                string       `json:"error,omitempty"`
}

// SafeAccount is the wire view of an account: no hashes, keys, or codes.
type SafeAccount struct {
	ID                string             `json:"id"`
	Tenant            string             `json:"tenant"`
	Username          string             `json:"username"`
	Email             string             `json:"email"`
	MobilePhoneNumber string             `json:"mobile_phone_number,omitempty"`
	IsAccountVerified bool               `json:"is_account_verified"`
	IsLoginAllowed    bool               `json:"is_login_allowed"`
	IsAccountClosed   bool               `json:"is_account_closed"`
	TwoFactorAuthMode string             `json:"two_factor_auth_mode"`
	Claims            []domain.UserClaim `json:"claims,omitempty"`
}

func toSafeAccount(a *domain.UserAccount) *SafeAccount {
	if a == nil {
		return nil
	}
	return &SafeAccount{
		ID:                a.ID,
		Tenant:            a.Tenant,
		Username:          a.Username,
		Email:             a.Email,
		MobilePhoneNumber: a.MobilePhoneNumber,
		IsAccountVerified: a.IsAccountVerified,
		IsLoginAllowed:    a.IsLoginAllowed,
		IsAccountClosed:   a.IsAccountClosed,
		TwoFactorAuthMode: string(a.AccountTwoFactorAuthMode),
		Claims:            a.Claims,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps the domain error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrMultipleResults):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
