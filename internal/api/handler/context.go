package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/citymove/identity-service/internal/core/domain"
)

// identity is the authenticated caller extracted from JWT claims.
type identity struct {
	AccountID string
	Email     string
	Roles     []string
}

// hasRole reports whether the token carries the given role claim. Claims
// reflect the active attachments at token issue time.
func (id identity) hasRole(role domain.Role) bool {
	for _, r := range id.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// ctxIdentity extracts the claims injected by the Auth middleware and
// performs a fast-fail check before any service call: a non-empty account
// id proves the middleware ran.
func ctxIdentity(c echo.Context) (identity, error) {
	accountID, _ := c.Get("account_id").(string)
	if accountID == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	email, _ := c.Get("email").(string)
	roles, _ := c.Get("roles").([]string)

	return identity{AccountID: accountID, Email: email, Roles: roles}, nil
}
