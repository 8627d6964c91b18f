package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/validx"
)

type MeHandler struct {
	Users *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the profile behind the bearer token.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope{datos=authsdk.MeResponse}
//	@Failure		401	{object}	authsdk.Envelope	"Token inválido o expirado"
//	@Router			/v1/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	profile, err := h.Users.GetProfile(r.Context(), id.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "Usuario autenticado", authsdk.MeResponse{
		UserID:    profile.User.ID,
		Email:     profile.User.Email,
		FirstName: profile.User.FirstName,
		LastName:  profile.User.LastName,
		Role:      profile.Role,
		ExpiresAt: id.ExpiresAt,
	})
}

type RegisterHandler struct {
	Users *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Register a customer
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"New account"
//	@Success		201		{object}	authsdk.Envelope{datos=authsdk.RegisterResponse}
//	@Failure		400		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}
//	@Failure		409		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}	"email_taken"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if !valid(w, validx.Merge(
		validx.Required("first_name", req.FirstName),
		validx.Email("email", req.Email),
		validx.Password("password", req.Password),
	)) {
		return
	}

	id, err := h.Users.CreateCustomer(r.Context(), req.FirstName, req.LastName, req.Email, req.Password, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusCreated, "Usuario registrado", authsdk.RegisterResponse{UserID: id})
}

// AdminHandler serves account administration for the admin role.
type AdminHandler struct {
	Sessions *service.SessionService
	Users    *service.UserService
}

func pathUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		authsdk.ErrInvalidRequest.WithProblems(map[string]string{"id": "must be a positive integer"}).WriteError(w)
		return 0, false
	}
	return id, true
}

// HandleRevokeSessions godoc
//
//	@Summary		Revoke every session of a user
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"User id"
//	@Success		200	{object}	authsdk.Envelope{datos=authsdk.RevokeAllResponse}
//	@Failure		401	{object}	authsdk.Envelope
//	@Failure		403	{object}	authsdk.Envelope	"Acceso denegado: permisos insuficientes"
//	@Failure		404	{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}
//	@Router			/v1/admin/users/{id}/sessions/revoke [post].
func (h *AdminHandler) HandleRevokeSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	n, err := h.Sessions.RevokeAll(r.Context(), userID, domain.RevokeReasonAdmin)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Sesiones revocadas", authsdk.RevokeAllResponse{UserID: userID, Revoked: n})
}

// HandleSetActive godoc
//
//	@Summary		Enable or disable a user
//	@Description	Disabling a user also revokes every session.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"User id"
//	@Param			request	body		authsdk.SetActiveRequest	true	"Desired state"
//	@Success		200		{object}	authsdk.Envelope
//	@Failure		401		{object}	authsdk.Envelope
//	@Failure		403		{object}	authsdk.Envelope
//	@Failure		404		{object}	authsdk.Envelope{datos=authsdk.ErrorDetails}
//	@Router			/v1/admin/users/{id}/active [post].
func (h *AdminHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}
	var req authsdk.SetActiveRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.Users.SetActive(r.Context(), userID, req.Active, time.Now()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "Usuario actualizado", nil)
}
