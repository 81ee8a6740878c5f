package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-membership/internal/application/account"
	"github.com/go-membership/internal/domain"
	"github.com/go-membership/internal/infrastructure/google"
	jwtinfra "github.com/go-membership/internal/infrastructure/jwt"
	"github.com/go-membership/internal/transport/http/middleware"
)

// AuthHandler handles login and two-factor endpoints.
type AuthHandler struct {
	svc      *account.Service
	jwt      *jwtinfra.Provider
	verifier *google.Verifier
}

func NewAuthHandler(svc *account.Service, jwt *jwtinfra.Provider, verifier *google.Verifier) *AuthHandler {
	return &AuthHandler{svc: svc, jwt: jwt, verifier: verifier}
}

type loginRequest struct {
	Tenant   string `json:"tenant"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.AuthenticateWithUsernameOrEmail(r.Context(), req.Tenant, req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeAuthResult(w, res)
}

func (h *AuthHandler) writeAuthResult(w http.ResponseWriter, res *account.AuthResult) {
	if res.PendingTwoFactorAuth != domain.TwoFactorNone {
		writeJSON(w, http.StatusOK, AuthEnvelope{
			Account:              toSafeAccount(res.Account),
			PendingTwoFactorAuth: string(res.PendingTwoFactorAuth),
			Message:              "two-factor authentication required",
		})
		return
	}
	if !res.Success {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}
	h.issueBearer(w, res.Account)
}

func (h *AuthHandler) issueBearer(w http.ResponseWriter, a *domain.UserAccount) {
	if h.jwt == nil {
		writeError(w, http.StatusServiceUnavailable, "token signing not configured")
		return
	}
	bearer, err := h.jwt.Sign(a.ID, a.Tenant, a.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: bearer, Account: toSafeAccount(a)})
}

type twoFactorCodeRequest struct {
	AccountID string `json:"account_id"`
	Code      string `json:"code"`
}

// TwoFactorCode completes a pending mobile two-factor login.
func (h *AuthHandler) TwoFactorCode(w http.ResponseWriter, r *http.Request) {
	var req twoFactorCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ok, err := h.svc.AuthenticateWithCode(r.Context(), req.AccountID, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication failed")
		return
	}
	a, err := h.svc.GetByID(r.Context(), req.AccountID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	h.issueBearer(w, a)
}

type resendCodeRequest struct {
	AccountID string `json:"account_id"`
}

// ResendTwoFactorCode re-sends the mobile login code mid-way through a
// two-factor login.
func (h *AuthHandler) ResendTwoFactorCode(w http.ResponseWriter, r *http.Request) {
	var req resendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.SendTwoFactorAuthenticationCode(r.Context(), req.AccountID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
}

type googleLoginRequest struct {
	Tenant  string `json:"tenant"`
	IDToken string `json:"id_token"`
}

// GoogleLogin signs in through a Google ID token linked to a local account.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		writeError(w, http.StatusServiceUnavailable, "google sign-in not configured")
		return
	}
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payload, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid google token")
		return
	}
	res, err := h.svc.AuthenticateWithLinkedAccount(r.Context(), req.Tenant, google.ProviderName, payload.Sub)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !res.Success {
		writeError(w, http.StatusUnauthorized, "no account linked to this google identity")
		return
	}
	h.issueBearer(w, res.Account)
}

type linkGoogleRequest struct {
	IDToken string `json:"id_token"`
}

// LinkGoogle links the authenticated account to a Google identity.
func (h *AuthHandler) LinkGoogle(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		writeError(w, http.StatusServiceUnavailable, "google sign-in not configured")
		return
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req linkGoogleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	payload, err := h.verifier.Verify(r.Context(), req.IDToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid google token")
		return
	}
	if err := h.svc.AddOrUpdateLinkedAccount(r.Context(), claims.AccountID, google.ProviderName, payload.Sub, payload.Claims()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "google account linked"})
}

type configureTwoFactorRequest struct {
	Mode string `json:"mode"`
}

// ConfigureTwoFactor switches the authenticated account's second factor.
func (h *AuthHandler) ConfigureTwoFactor(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req configureTwoFactorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode := domain.TwoFactorAuthMode(req.Mode)
	if err := h.svc.ConfigureTwoFactorAuthentication(r.Context(), claims.AccountID, mode); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "two-factor authentication configured"})
}
