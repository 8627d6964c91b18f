package httpx

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

const bearerPrefix = "Bearer "

// AuthnMiddleware attaches the identity proven by a valid bearer token to the
// request context. It never terminates the chain: a missing, malformed or
// rejected token leaves the request anonymous and route authorization decides
// what happens next. onReject, when non-nil, is called with the failure kind.
func AuthnMiddleware(v jwtx.Verifier, onReject func(kind string)) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			id, err := v.Verify(raw)
			if err != nil {
				kind := jwtx.Kind(err)
				slogx.FromContext(r.Context()).Warn("access token rejected",
					"path", r.URL.Path,
					"kind", kind,
				)
				if onReject != nil {
					onReject(kind)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = slogx.With(ctx, "user_id", id.UserID, "role", id.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the credential from an Authorization header value.
// Only the exact "Bearer " prefix followed by a non-empty token without
// whitespace is accepted.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	raw := header[len(bearerPrefix):]
	if raw == "" || strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return "", false
	}
	return raw, true
}
