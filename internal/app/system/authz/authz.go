// Package authz provides small helpers for reading the signed-in user's
// identity out of a request. Route-level gating lives in the auth
// middleware; these helpers are for handlers that need the caller's
// identity for ownership or audit purposes.
package authz

import (
	"net/http"
	"strings"

	"github.com/krcapps/orderdash/internal/app/system/auth"
	"github.com/krcapps/orderdash/internal/domain/models"
)

// UserCtx returns the signed-in user's role, display name, and ID.
// ok is false for anonymous requests.
func UserCtx(r *http.Request) (role, name, userID string, ok bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", "", false
	}
	return u.Role, u.Name, u.ID, true
}

// IsAdmin reports whether the request carries an admin session.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && strings.EqualFold(u.Role, models.RoleAdmin)
}

// IsUser reports whether the request carries a regular user session.
func IsUser(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && strings.EqualFold(u.Role, models.RoleUser)
}
