package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/platform/httpx"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// Middleware wires authentication and authorization helpers for HTTP handlers.
type Middleware struct {
	Tokens     TokenVerifier
	Principals PrincipalFinder
	Logger     *slog.Logger
	Failures   FailureRecorder
}

// Authenticate resolves the bearer token to a live principal and attaches it
// to the request context. Token checks run before the store lookup.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return m.Require()(next)
}

// Require authenticates the request and then evaluates every predicate in
// order. Failures short-circuit with 401, 403 or whatever status the
// predicate error maps to.
func (m Middleware) Require(preds ...Predicate) func(http.Handler) http.Handler {
	check := AllOf(preds...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.authenticate(r)
			if err != nil {
				m.reject(w, r, err)
				return
			}
			if err := check(r, principal); err != nil {
				m.reject(w, r, err)
				return
			}
			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAny is shorthand for Require(AnyRole(roles...)).
func (m Middleware) RequireAny(roles ...auth.Role) func(http.Handler) http.Handler {
	return m.Require(AnyRole(roles...))
}

func (m Middleware) authenticate(r *http.Request) (*auth.User, error) {
	token, ok := BearerToken(r)
	if !ok {
		return nil, auth.ErrTokenMissing
	}
	userID, err := m.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	principal, err := m.Principals.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidPrincipal
		}
		return nil, err
	}
	if principal == nil {
		return nil, ErrInvalidPrincipal
	}
	return principal, nil
}

func (m Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	status := httpx.StatusFor(err)
	reason := failureReason(err)
	if m.Failures != nil && (status == http.StatusUnauthorized || status == http.StatusForbidden) {
		m.Failures.AuthFailure(reason)
	}
	if m.Logger != nil {
		if status >= http.StatusInternalServerError {
			m.Logger.Error("guard", slog.Any("error", err), slog.String("path", r.URL.Path))
		} else {
			m.Logger.Debug("guard rejected request", slog.String("reason", reason), slog.String("path", r.URL.Path))
		}
	}
	httpx.RespondError(w, err)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		return "missing"
	case errors.Is(err, auth.ErrTokenExpired):
		return "expired"
	case errors.Is(err, auth.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrInvalidPrincipal):
		return "invalid_principal"
	case errors.Is(err, shared.ErrForbidden):
		return "forbidden"
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
