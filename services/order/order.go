// Package order places orders, moves them through their status lifecycle
// and serves the admin sales view.
package order

import (
	"context"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/jobs"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/services/order/internal/httpserver"
	"github.com/Skotchmaster/storefront/services/order/internal/models"
	"github.com/Skotchmaster/storefront/services/order/internal/repo"
	"github.com/Skotchmaster/storefront/services/order/internal/service"
)

type Options struct {
	DB            *gorm.DB
	AddressPolicy string
	Publisher     events.Publisher
	Metrics       *metrics.ShopMetrics
}

type Module struct {
	svc     *service.OrderService
	handler *httpserver.OrderHTTP
}

func New(o Options) (*Module, error) {
	policy, err := service.ParseAddressPolicy(o.AddressPolicy)
	if err != nil {
		return nil, err
	}
	svc := &service.OrderService{
		Repo:          &repo.GormRepo{DB: o.DB},
		AddressPolicy: policy,
		Publisher:     o.Publisher,
		Metrics:       o.Metrics,
	}
	return &Module{svc: svc, handler: &httpserver.OrderHTTP{Svc: svc}}, nil
}

// Models lists the tables this module owns. Products belong to catalog.
func Models() []any {
	return []any{&models.Order{}, &models.OrderLine{}}
}

func (m *Module) Register(g *echo.Group, mw *authmw.Middleware) {
	httpserver.Register(g, m.handler, mw)
}

// ScheduleDigest publishes yesterday's sales summary on the given cron expression.
func (m *Module) ScheduleDigest(s *jobs.Scheduler, spec string) error {
	return s.Add("sales_digest", spec, func(ctx context.Context) error {
		_, err := m.svc.DailyDigest(ctx)
		return err
	})
}
