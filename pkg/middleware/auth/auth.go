package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/identity"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

// Refresher exchanges a refresh token for a fresh pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*tokens.Pair, error)
}

type Middleware struct {
	JWTSecret    []byte
	Refresher    Refresher
	CookieSecure bool
}

type validatorFunc func(id identity.Identity) error

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, nil)
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, func(id identity.Identity) error {
		if !id.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// Optional resolves the identity when a valid token is present and otherwise
// lets the request through anonymously.
func (m *Middleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id, err := m.resolve(c); err == nil {
			identity.Into(c, id)
		}
		return next(c)
	}
}

func (m *Middleware) require(next echo.HandlerFunc, validate validatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := m.resolve(c)
		if err != nil {
			return err
		}
		if validate != nil {
			if vErr := validate(id); vErr != nil {
				return vErr
			}
		}
		identity.Into(c, id)
		return next(c)
	}
}

func (m *Middleware) resolve(c echo.Context) (identity.Identity, error) {
	l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

	raw, fromCookie := accessToken(c)
	if raw == "" {
		return identity.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in.")
	}

	claims, err := tokens.ParseAccess(raw, m.JWTSecret)
	if err == nil {
		return fromClaims(claims), nil
	}

	if !errors.Is(err, jwt.ErrTokenExpired) || !fromCookie || m.Refresher == nil {
		l.Warn("auth_error", "status", 401, "reason", "invalid access token", "error", err)
		if fromCookie {
			m.clearCookies(c)
		}
		return identity.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
	}

	refresh, rErr := c.Cookie(tokens.RefreshCookie)
	if rErr != nil || refresh.Value == "" {
		m.clearCookies(c)
		return identity.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, refErr := m.Refresher.Refresh(c.Request().Context(), refresh.Value)
	if refErr != nil {
		l.Warn("auth_error", "status", 401, "reason", "refresh failed", "error", refErr)
		m.clearCookies(c)
		return identity.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, pair.AccessToken, pair.AccessExp, m.CookieSecure))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, pair.RefreshToken, pair.RefreshExp, m.CookieSecure))

	newClaims, pErr := tokens.ParseAccess(pair.AccessToken, m.JWTSecret)
	if pErr != nil {
		m.clearCookies(c)
		return identity.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
	}
	l.Info("access_token_refreshed", "user_id", newClaims.Subject)
	return fromClaims(newClaims), nil
}

func accessToken(c echo.Context) (string, bool) {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), false
	}
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil && ck.Value != "" {
		return ck.Value, true
	}
	return "", false
}

func fromClaims(claims *tokens.AccessClaims) identity.Identity {
	return identity.Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
		Role:   claims.Role,
	}
}

func (m *Middleware) clearCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, m.CookieSecure))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, m.CookieSecure))
}
