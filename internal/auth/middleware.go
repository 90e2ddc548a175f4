package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Skipper reports whether a request may bypass token verification.
type Skipper func(r *http.Request) bool

// SkipOperational lets the health and metrics endpoints through unauthenticated.
func SkipOperational(r *http.Request) bool {
	return r.URL.Path == "/healthz" || r.URL.Path == "/metrics"
}

// Middleware verifies bearer tokens and places the resulting claims on the request context.
type Middleware struct {
	cfg  Config
	skip Skipper
}

// NewMiddleware constructs a Middleware. A nil skipper verifies every request.
func NewMiddleware(cfg Config, skip Skipper) Middleware {
	if skip == nil {
		skip = func(*http.Request) bool { return false }
	}
	return Middleware{cfg: cfg, skip: skip}
}

// Wrap rejects requests without a valid token with 401.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skip(r) {
			next.ServeHTTP(w, r)
			return
		}
		token, err := BearerToken(r)
		if err == nil {
			var claims *Claims
			if claims, err = Parse(token, m.cfg); err == nil {
				next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
				return
			}
		}
		w.Header().Set("WWW-Authenticate", `Bearer realm="workouts"`)
		deny(w, http.StatusUnauthorized, "unauthorized", err.Error())
	})
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

// Grants reports whether the claims allow scope. The write scope implies the read scope.
func (c *Claims) Grants(scope string) bool {
	if c.HasScope(scope) {
		return true
	}
	return scope == ScopeWorkoutsRead && c.HasScope(ScopeWorkoutsWrite)
}

// RequireScope returns a route decorator that answers 401 when the request carries no claims and
// 403 when its claims do not grant scope.
func RequireScope(scope string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			switch {
			case !ok:
				deny(w, http.StatusUnauthorized, "unauthorized", ErrMissingToken.Error())
			case !claims.Grants(scope):
				deny(w, http.StatusForbidden, "forbidden", "scope "+scope+" required")
			default:
				next(w, r)
			}
		}
	}
}

func deny(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"type": code, "detail": detail})
}
