package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/validx"
)

// PasswordHandler serves password recovery and change.
type PasswordHandler struct {
	Recovery *service.RecoveryService
}

// HandleForgot godoc
//
//	@Summary		Request a password reset
//	@Description	Sends a six digit code and a reset link to the address. Always answers 200 so the endpoint cannot be used to probe accounts.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ForgotPasswordRequest	true	"Email"
//	@Success		200		{object}	authsdk.Envelope
//	@Failure		400		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}
//	@Router			/v1/auth/password/forgot [post].
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if !valid(w, validx.Email("email", req.Email)) {
		return
	}

	if err := h.Recovery.RequestReset(r.Context(), req.Email, clientMeta(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Si el correo está registrado, recibirás un código de recuperación", nil)
}

// HandleVerifyCode godoc
//
//	@Summary		Check a reset code
//	@Description	Confirms the code is the latest one issued for the email and still valid. Does not use it up.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyCodeRequest	true	"Email and code"
//	@Success		200		{object}	authsdk.Envelope
//	@Failure		400		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}	"invalid_or_expired"
//	@Router			/v1/auth/password/verify-code [post].
func (h *PasswordHandler) HandleVerifyCode(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if !valid(w, validx.Merge(
		validx.Email("email", req.Email),
		validx.ResetCode("code", req.Code),
	)) {
		return
	}

	if err := h.Recovery.VerifyCode(r.Context(), req.Email, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Código válido", nil)
}

// HandleResetByCode godoc
//
//	@Summary		Reset the password with a code
//	@Description	Uses up the code, stores the new password and ends every session of the user.
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetByCodeRequest	true	"Email, code and new password"
//	@Success		200		{object}	authsdk.Envelope
//	@Failure		400		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}	"invalid_or_expired, validation_error"
//	@Router			/v1/auth/password/reset [post].
func (h *PasswordHandler) HandleResetByCode(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetByCodeRequest
	if !decode(w, r, &req) {
		return
	}
	if !valid(w, validx.Merge(
		validx.Email("email", req.Email),
		validx.ResetCode("code", req.Code),
		validx.Password("new_password", req.NewPassword),
	)) {
		return
	}

	if err := h.Recovery.ResetByCode(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Contraseña restablecida", nil)
}

// HandleResetByLink godoc
//
//	@Summary		Reset the password with a link token
//	@Tags			Password
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetByLinkRequest	true	"Link token, email and new password"
//	@Success		200		{object}	authsdk.Envelope
//	@Failure		400		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}	"invalid_or_expired, validation_error"
//	@Router			/v1/auth/password/reset-link [post].
func (h *PasswordHandler) HandleResetByLink(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetByLinkRequest
	if !decode(w, r, &req) {
		return
	}
	if !valid(w, validx.Merge(
		validx.Required("token", req.Token),
		validx.Email("email", req.Email),
		validx.Password("new_password", req.NewPassword),
	)) {
		return
	}

	if err := h.Recovery.ResetByLink(r.Context(), req.Token, req.Email, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Contraseña restablecida", nil)
}

// HandleChange godoc
//
//	@Summary		Change the password
//	@Description	Requires the current password. Ends every session of the user.
//	@Tags			Password
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.Envelope
//	@Failure		400		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}	"wrong_current_password, validation_error"
//	@Failure		401		{object}	authsdk.Envelope
//	@Router			/v1/auth/password/change [post].
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var req authsdk.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if !valid(w, validx.Merge(
		validx.Required("current_password", req.CurrentPassword),
		validx.Password("new_password", req.NewPassword),
	)) {
		return
	}

	if err := h.Recovery.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Contraseña actualizada", nil)
}
