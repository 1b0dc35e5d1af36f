package httpserver

import (
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

func Register(g *echo.Group, h *CatalogHTTP, mw *authmw.Middleware) {
	products := g.Group("/products")
	products.GET("", h.GetProducts)
	products.GET("/search", h.Search)
	products.GET("/:id", h.GetProduct)
	products.POST("", h.CreateProduct, mw.RequireAdmin)
	products.PUT("/:id", h.UpdateProduct, mw.RequireAdmin)
	products.DELETE("/:id", h.DeleteProduct, mw.RequireAdmin)

	banners := g.Group("/banners")
	banners.GET("", h.GetBanners)
	banners.POST("", h.CreateBanner, mw.RequireAdmin)
}
