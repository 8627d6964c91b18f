package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/authsdk"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// readinessTimeout bounds the database ping of /readyz.
const readinessTimeout = 2 * time.Second

func health(status string, startTime time.Time, version string) authsdk.HealthResponse {
	return authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(startTime).Round(time.Second).String(),
		Version: version,
	}
}

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe. Returns 200 whenever the process is serving; the database is not consulted.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, health("ok", startTime, version))
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe. Pings the credential store; 503 while it is unreachable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		resp := health("ok", startTime, version)
		resp.Checks = &authsdk.HealthChecks{Database: "ok"}
		code := http.StatusOK

		if err := st.Ping(ctx); err != nil {
			slogx.FromContext(r.Context()).Warn("readiness check failed", "err", err)
			resp.Status = "degraded"
			resp.Checks.Database = "unreachable"
			code = http.StatusServiceUnavailable
		}
		httpx.WriteJSON(w, code, resp)
	}
}
