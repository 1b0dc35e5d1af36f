package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

func Register(g *echo.Group, h *FeedbackHTTP, mw *authmw.Middleware) {
	fb := g.Group("/feedback")
	fb.GET("/:productId", h.GetFeedback)
	fb.POST("/:productId", h.PostFeedback, mw.Optional)
}
