package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/identity"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/auth/internal/models"
	"github.com/Skotchmaster/storefront/services/auth/internal/service"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func toUser(u *models.User) contracts.User {
	return contracts.User{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func (h *AuthHTTP) RegisterUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register_user")

	var req contracts.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, contracts.RegisterResponse{Message: "User registered successfully", User: toUser(user)})
}

func (h *AuthHTTP) CountUsers(c echo.Context) error {
	ctx := c.Request().Context()
	n, err := h.Svc.CountUsers(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("count_users_error", "status", 500, "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, contracts.CountResponse{Count: n})
}

func (h *AuthHTTP) RegisterAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register_admin")

	var req contracts.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_admin_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var caller *identity.Identity
	if id, ok := identity.From(c); ok {
		caller = &id
	}
	user, err := h.Svc.RegisterAdmin(ctx, caller, service.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, contracts.RegisterResponse{Message: "Admin registered successfully", User: toUser(user)})
}

func (h *AuthHTTP) setCookies(c echo.Context, p *tokens.Pair) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, p.AccessToken, p.AccessExp, h.CookieSecure))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, p.RefreshToken, p.RefreshExp, h.CookieSecure))
}

func (h *AuthHTTP) clearCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, h.CookieSecure))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, h.CookieSecure))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req contracts.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	h.setCookies(c, pair)

	return c.JSON(http.StatusOK, contracts.LoginResponse{
		Role:        pair.Role,
		UserID:      pair.UserID,
		AccessToken: pair.AccessToken,
		AccessExp:   pair.AccessExp.Unix(),
	})
}

func refreshFromRequest(c echo.Context) string {
	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.Bind(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	raw := refreshFromRequest(c)
	if raw == "" {
		l.Warn("refresh_error", "status", 401, "reason", "refresh token missing")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		h.clearCookies(c)
		return toHTTPError(err)
	}
	h.setCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"access_exp":    pair.AccessExp.Unix(),
		"refresh_exp":   pair.RefreshExp.Unix(),
		"role":          pair.Role,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(tokens.RefreshCookie); err == nil && ck.Value != "" {
		if err := h.Svc.LogOut(ctx, ck.Value); err != nil {
			h.clearCookies(c)
			l.Error("logout_failed", "status", 500, "reason", "cannot revoke refresh token", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
		}
	}
	h.clearCookies(c)
	l.Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
