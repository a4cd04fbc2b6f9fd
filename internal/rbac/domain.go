package rbac

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// ErrInvalidPrincipal is returned when a valid token names a principal that
// no longer exists in the credential store.
var ErrInvalidPrincipal = fmt.Errorf("%w: principal no longer exists", shared.ErrUnauthorized)

// TokenVerifier resolves a bearer token to a principal id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// PrincipalFinder loads principals from the credential store.
type PrincipalFinder interface {
	FindByID(ctx context.Context, id int64) (*auth.User, error)
}

// FailureRecorder observes rejected requests, keyed by reason.
type FailureRecorder interface {
	AuthFailure(reason string)
}

// Predicate decides whether principal may proceed with r. It returns nil to
// allow, shared.ErrForbidden to deny, or any other error (for example
// shared.ErrNotFound for a missing target) to short-circuit.
type Predicate func(r *http.Request, principal *auth.User) error

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, principal *auth.User) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext extracts the principal attached by the guard.
func PrincipalFromContext(ctx context.Context) *auth.User {
	principal, _ := ctx.Value(principalContextKey{}).(*auth.User)
	return principal
}
