package rbac

import (
	"fmt"
	"net/http"

	"github.com/sportsreg/sportsreg/internal/auth"
	"github.com/sportsreg/sportsreg/internal/shared"
)

// OwnerLookup resolves the owner of the resource addressed by r.
type OwnerLookup func(r *http.Request) (ownerID int64, err error)

// AnyRole allows principals holding one of roles.
func AnyRole(roles ...auth.Role) Predicate {
	allowed := make(map[auth.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(_ *http.Request, principal *auth.User) error {
		if _, ok := allowed[principal.Role]; ok {
			return nil
		}
		return fmt.Errorf("%w: role %s not permitted", shared.ErrForbidden, principal.Role)
	}
}

// OwnerOrAdmin allows admins unconditionally and everyone else only when they
// own the addressed resource. Lookup errors propagate, so a missing resource
// surfaces as 404.
func OwnerOrAdmin(lookup OwnerLookup) Predicate {
	return func(r *http.Request, principal *auth.User) error {
		if principal.Role == auth.RoleAdmin {
			return nil
		}
		ownerID, err := lookup(r)
		if err != nil {
			return err
		}
		if !CanManage(principal, ownerID) {
			return fmt.Errorf("%w: not the owner", shared.ErrForbidden)
		}
		return nil
	}
}

// AllOf evaluates predicates in order and stops at the first failure.
func AllOf(preds ...Predicate) Predicate {
	return func(r *http.Request, principal *auth.User) error {
		for _, pred := range preds {
			if pred == nil {
				continue
			}
			if err := pred(r, principal); err != nil {
				return err
			}
		}
		return nil
	}
}

// CanManage reports whether principal may modify a resource owned by ownerID.
func CanManage(principal *auth.User, ownerID int64) bool {
	if principal == nil {
		return false
	}
	return principal.Role == auth.RoleAdmin || (ownerID != 0 && principal.ID == ownerID)
}
