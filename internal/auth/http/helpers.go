package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/validx"
)

const maxUserAgent = 256

func clientMeta(r *http.Request) domain.ClientMeta {
	ua := r.UserAgent()
	if len(ua) > maxUserAgent {
		ua = ua[:maxUserAgent]
	}
	return domain.ClientMeta{IP: httpx.ClientIP(r), UserAgent: ua}
}

// decode reads the JSON body into dst and writes a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		slogx.FromContext(r.Context()).Debug("rejected request body", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}

// valid writes a 400 with the field problems of res when it failed.
func valid(w http.ResponseWriter, res validx.Result) bool {
	if res.Valid {
		return true
	}
	authsdk.ErrValidation.WithProblems(res.Problems).WriteError(w)
	return false
}

// writeServiceError maps service and store errors onto API errors. Anything
// unrecognised is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *authsdk.APIError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		apiErr = authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrRefreshNotFound):
		apiErr = authsdk.ErrRefreshNotFound
	case errors.Is(err, service.ErrRefreshExpired):
		apiErr = authsdk.ErrRefreshExpired
	case errors.Is(err, service.ErrReuseDetected):
		apiErr = authsdk.ErrReuseDetected
	case errors.Is(err, service.ErrInvalidOrExpired):
		apiErr = authsdk.ErrInvalidOrExpired
	case errors.Is(err, service.ErrWrongCurrentPassword):
		apiErr = authsdk.ErrWrongCurrentPassword
	case errors.Is(err, service.ErrUserNotFound):
		apiErr = authsdk.ErrUserNotFound
	case errors.Is(err, service.ErrWeakPassword):
		apiErr = authsdk.ErrValidation.WithProblems(map[string]string{"password": "does not meet the password policy"})
	case errors.Is(err, store.ErrAlreadyExists):
		apiErr = authsdk.ErrEmailTaken
	default:
		slogx.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		apiErr = authsdk.ErrServerError
	}
	apiErr.WriteError(w)
}
