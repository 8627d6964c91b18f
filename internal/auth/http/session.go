package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/validx"
)

type SessionHandler struct {
	Sessions *service.SessionService
}

func tokenResponse(p *domain.TokenPair) authsdk.TokenResponse {
	return authsdk.TokenResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		TokenType:        p.TokenType,
		ExpiresIn:        int(p.ExpiresIn.Seconds()),
		RefreshExpiresAt: p.RefreshExpiresAt,
		UserID:           p.UserID,
		Role:             p.Role,
	}
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for an access token and a single use refresh token.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.Envelope{datos=authsdk.TokenResponse}
//	@Failure		400		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}
//	@Failure		401		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}	"invalid_credentials"
//	@Failure		429		{object}	authsdk.Envelope
//	@Router			/v1/auth/login [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	if !valid(w, validx.Merge(
		validx.Email("email", req.Email),
		validx.Required("password", req.Password),
	)) {
		return
	}

	pair, err := h.Sessions.Login(r.Context(), req.Email, req.Password, clientMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Inicio de sesión exitoso", tokenResponse(pair))
}

// HandleRefresh godoc
//
//	@Summary		Rotate a refresh token
//	@Description	Spends the presented refresh token and returns a new pair. Presenting a spent or revoked token revokes every session of its owner.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.Envelope{datos=authsdk.TokenResponse}
//	@Failure		400		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}
//	@Failure		401		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}	"refresh_not_found, refresh_expired, reuse_detected"
//	@Router			/v1/auth/refresh [post].
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if !decode(w, r, &req) {
		return
	}
	if !valid(w, validx.Required("refresh_token", req.RefreshToken)) {
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), req.RefreshToken, clientMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Token renovado", tokenResponse(pair))
}

// HandleRevoke godoc
//
//	@Summary		Revoke a refresh token
//	@Description	Idempotent: revoking a token that is already spent or revoked succeeds and leaves it unchanged.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RevokeRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.Envelope
//	@Failure		401		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}	"refresh_not_found"
//	@Router			/v1/auth/revoke [post].
func (h *SessionHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RevokeRequest
	if !decode(w, r, &req) {
		return
	}
	if !valid(w, validx.Required("refresh_token", req.RefreshToken)) {
		return
	}

	if err := h.Sessions.Revoke(r.Context(), req.RefreshToken, domain.RevokeReasonLogout); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Sesión cerrada", nil)
}
