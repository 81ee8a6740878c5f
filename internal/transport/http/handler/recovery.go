package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-membership/internal/application/account"
	"github.com/go-membership/internal/transport/http/middleware"
)

// RecoveryHandler handles password reset, username reminder, and contact
// change endpoints.
type RecoveryHandler struct {
	svc *account.Service
}

func NewRecoveryHandler(svc *account.Service) *RecoveryHandler {
	return &RecoveryHandler{svc: svc}
}

type resetPasswordRequest struct {
	Tenant string `json:"tenant"`
	Email  string `json:"email"`
}

func (h *RecoveryHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Always report success so the endpoint cannot be used to probe for
	// registered addresses.
	_ = h.svc.ResetPassword(r.Context(), req.Tenant, req.Email)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "if the address is registered, a reset email has been sent"})
}

type redeemResetKeyRequest struct {
	Key         string `json:"key"`
	NewPassword string `json:"new_password"`
}

func (h *RecoveryHandler) RedeemResetKey(w http.ResponseWriter, r *http.Request) {
	var req redeemResetKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ok, err := h.svc.ChangePasswordFromResetKey(r.Context(), req.Key, req.NewPassword)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "reset key not valid")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *RecoveryHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ChangePassword(r.Context(), claims.AccountID, req.OldPassword, req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}

func (h *RecoveryHandler) UsernameReminder(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	_ = h.svc.SendUsernameReminder(r.Context(), req.Tenant, req.Email)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "if the address is registered, a reminder email has been sent"})
}

type changeUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

func (h *RecoveryHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changeUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ChangeUsername(r.Context(), claims.AccountID, req.NewUsername); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "username changed"})
}

type changeEmailRequest struct {
	NewEmail string `json:"new_email"`
}

func (h *RecoveryHandler) ChangeEmailRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changeEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ChangeEmailRequest(r.Context(), claims.AccountID, req.NewEmail); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification email sent to new address"})
}

type confirmEmailRequest struct {
	Key      string `json:"key"`
	NewEmail string `json:"new_email"`
}

func (h *RecoveryHandler) ConfirmEmailChange(w http.ResponseWriter, r *http.Request) {
	var req confirmEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ok, err := h.svc.ChangeEmailFromKey(r.Context(), req.Key, req.NewEmail)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "verification key not valid")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email changed"})
}

type changeMobileRequest struct {
	NewMobilePhoneNumber string `json:"new_mobile_phone_number"`
}

func (h *RecoveryHandler) ChangeMobileRequest(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changeMobileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ChangeMobilePhoneRequest(r.Context(), claims.AccountID, req.NewMobilePhoneNumber); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "confirmation code sent to new number"})
}

type confirmMobileRequest struct {
	Code string `json:"code"`
}

func (h *RecoveryHandler) ConfirmMobileChange(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req confirmMobileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	changed, err := h.svc.ChangeMobilePhoneFromCode(r.Context(), claims.AccountID, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !changed {
		writeError(w, http.StatusBadRequest, "confirmation code not valid")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "mobile phone changed"})
}

func (h *RecoveryHandler) RemoveMobile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.RemoveMobilePhone(r.Context(), claims.AccountID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "mobile phone removed"})
}

type addSecretRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (h *RecoveryHandler) AddResetSecret(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req addSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.AddPasswordResetSecret(r.Context(), claims.AccountID, req.Question, req.Answer); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "reset secret added"})
}

type removeSecretRequest struct {
	SecretID string `json:"secret_id"`
}

func (h *RecoveryHandler) RemoveResetSecret(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req removeSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.RemovePasswordResetSecret(r.Context(), claims.AccountID, req.SecretID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "reset secret removed"})
}

type resetFromSecretsRequest struct {
	AccountID string            `json:"account_id"`
	Answers   map[string]string `json:"answers"`
}

// ResetFromSecrets triggers a password reset after the caller answers all of
// the account's secret questions correctly.
func (h *RecoveryHandler) ResetFromSecrets(w http.ResponseWriter, r *http.Request) {
	var req resetFromSecretsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.ResetPasswordFromSecretQuestionAndAnswers(r.Context(), req.AccountID, req.Answers); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "reset email sent"})
}
