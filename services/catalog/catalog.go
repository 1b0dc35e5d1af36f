// Package catalog serves products and banners.
package catalog

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/search"
	"github.com/Skotchmaster/storefront/services/catalog/internal/httpserver"
	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
)

type Options struct {
	DB        *gorm.DB
	Index     *search.ProductIndex
	Publisher events.Publisher
}

type Module struct {
	handler *httpserver.CatalogHTTP
}

func New(o Options) *Module {
	svc := &service.CatalogService{
		Repo:      &repo.GormRepo{DB: o.DB},
		Publisher: o.Publisher,
	}
	if o.Index != nil {
		svc.Index = o.Index
	}
	return &Module{handler: &httpserver.CatalogHTTP{Svc: svc}}
}

func Models() []any {
	return []any{&models.Product{}, &models.Banner{}}
}

func (m *Module) Register(g *echo.Group, mw *authmw.Middleware) {
	httpserver.Register(g, m.handler, mw)
}
