package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

func Register(g *echo.Group, h *AuthHTTP, mw *authmw.Middleware) {
	auth := g.Group("/auth")
	auth.POST("/user-register", h.RegisterUser)
	auth.GET("/user-register", h.CountUsers)
	auth.POST("/register", h.RegisterAdmin, mw.Optional)
	auth.POST("/login", h.Login)
	auth.POST("/refresh", h.Refresh)
	auth.POST("/logout", h.LogOut)
}
