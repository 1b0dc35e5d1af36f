// Package feedback stores per-product likes, dislikes and comments.
package feedback

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/services/feedback/internal/httpserver"
	"github.com/Skotchmaster/storefront/services/feedback/internal/models"
	"github.com/Skotchmaster/storefront/services/feedback/internal/repo"
	"github.com/Skotchmaster/storefront/services/feedback/internal/service"
)

type Options struct {
	DB        *gorm.DB
	Publisher events.Publisher
	Metrics   *metrics.ShopMetrics
}

type Module struct {
	handler *httpserver.FeedbackHTTP
}

func New(o Options) *Module {
	svc := &service.FeedbackService{
		Repo:      &repo.GormRepo{DB: o.DB},
		Publisher: o.Publisher,
		Metrics:   o.Metrics,
	}
	return &Module{handler: &httpserver.FeedbackHTTP{Svc: svc}}
}

func Models() []any {
	return []any{&models.ProductFeedback{}, &models.FeedbackVote{}, &models.FeedbackComment{}}
}

func (m *Module) Register(g *echo.Group, mw *authmw.Middleware) {
	httpserver.Register(g, m.handler, mw)
}
