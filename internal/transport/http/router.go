package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/httperr"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

// Module is a service that mounts its routes on the shared server.
type Module interface {
	Register(g *echo.Group, mw *authmw.Middleware)
}

type Deps struct {
	DB       *gorm.DB
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
	Metrics  *metrics.ServerMetrics
	Auth     *authmw.Middleware
	CSRF     *csrf.Config
	Modules  []Module
}

// Common is the middleware chain every request goes through.
func Common(d *Deps) []echo.MiddlewareFunc {
	mws := []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		ecM.Secure(),
		ecM.CORSWithConfig(ecM.CORSConfig{
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-CSRF-Token"},
		}),
	}
	if d.Metrics != nil {
		mws = append(mws, d.Metrics.Middleware)
	}
	base := d.Logger
	if base == nil {
		base = slog.Default()
	}
	mws = append(mws, loggingmw.RequestLogger(base))
	if d.CSRF != nil {
		mws = append(mws, csrf.Middleware(*d.CSRF))
	}
	return mws
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = httperr.Handler
	e.Pre(ecM.RemoveTrailingSlash())
	e.Use(Common(d)...)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return ready(c, d.DB) })
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	root := e.Group("")
	for _, m := range d.Modules {
		m.Register(root, d.Auth)
	}
}

func ready(c echo.Context, db *gorm.DB) error {
	if db == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
	}
	return c.NoContent(http.StatusOK)
}
