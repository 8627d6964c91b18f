package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/internal/auth/metrics"
	"github.com/aussiebroadwan/storefront/internal/auth/service"
	"github.com/aussiebroadwan/storefront/internal/auth/store"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"

	_ "github.com/aussiebroadwan/storefront/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits holds the per-route rate limit profiles.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
}

// DefaultRateLimits returns the built-in profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{Strict: httpx.StrictLimit, Moderate: httpx.ModerateLimit}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       RateLimits

	store           store.Store
	Metrics         *metrics.Metrics
	SessionService  *service.SessionService
	RecoveryService *service.RecoveryService
	UserService     *service.UserService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	limits RateLimits,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		limits:       limits,
	}
}

// ApplyRoutes registers every route and builds the global middleware chain.
// Call it once the services are set.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.ReportAccessDenials(),
		httpx.AuthnMiddleware(r.verifier, r.Metrics.TokenRejected),
	}

	r.registerSession()
	r.registerPassword()
	r.registerUsers()
	r.registerAdmin()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Storefront Authentication API
//	@version		0.1.0
//	@description	Login, refresh token rotation and password recovery for the storefront.
//	@description
//	@description				Access tokens are HMAC-signed JWTs. Refresh tokens are opaque and single use.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/storefront
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	h := &SessionHandler{Sessions: r.SessionService}

	// Credential guessing surface - strict limit by IP
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(r.limits.Moderate),
		),
	)
	r.Mux.Handle("POST /v1/auth/revoke",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			httpx.RateLimitByIP(r.limits.Moderate),
		),
	)
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{Recovery: r.RecoveryService}

	for pattern, fn := range map[string]http.HandlerFunc{
		"POST /v1/auth/password/forgot":      h.HandleForgot,
		"POST /v1/auth/password/verify-code": h.HandleVerifyCode,
		"POST /v1/auth/password/reset":       h.HandleResetByCode,
		"POST /v1/auth/password/reset-link":  h.HandleResetByLink,
	} {
		r.Mux.Handle(pattern,
			httpx.Chain(fn,
				httpx.RateLimitByIP(r.limits.Strict),
			),
		)
	}

	r.Mux.Handle("POST /v1/auth/password/change",
		httpx.Chain(http.HandlerFunc(h.HandleChange),
			httpx.RequireAuthenticated(),
			httpx.RateLimitByUser(r.limits.Strict),
		),
	)
}

func (r *Router) registerUsers() {
	me := &MeHandler{Users: r.UserService}
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(me,
			httpx.RequireAuthenticated(),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)

	register := &RegisterHandler{Users: r.UserService}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(register,
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{Sessions: r.SessionService, Users: r.UserService}

	r.Mux.Handle("POST /v1/admin/users/{id}/sessions/revoke",
		httpx.Chain(http.HandlerFunc(h.HandleRevokeSessions),
			httpx.RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
	r.Mux.Handle("POST /v1/admin/users/{id}/active",
		httpx.Chain(http.HandlerFunc(h.HandleSetActive),
			httpx.RequireRole(domain.RoleAdmin),
			httpx.RateLimitByUser(r.limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
	r.Mux.Handle("GET /metrics", r.Metrics.Handler())
}
