// Package identity carries the authenticated caller through a request.
package identity

import "github.com/labstack/echo/v4"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	contextKey = "identity"
)

type Identity struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// Into stores id on the echo context; user_id and role are kept for handlers
// that only need those.
func Into(c echo.Context, id Identity) {
	c.Set(contextKey, id)
	c.Set("user_id", id.UserID)
	c.Set("role", id.Role)
}

func From(c echo.Context) (Identity, bool) {
	id, ok := c.Get(contextKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
