package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

func Register(g *echo.Group, h *OrderHTTP, mw *authmw.Middleware) {
	orders := g.Group("/orders", mw.RequireAuth)
	orders.GET("", h.GetOrders)
	orders.POST("", h.CreateOrder)
	orders.PATCH("", h.UpdateStatus, mw.RequireAdmin)
}
