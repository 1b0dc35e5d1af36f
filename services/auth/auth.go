// Package auth hosts user and admin accounts and JWT session issuance.
package auth

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/pkg/hash"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/services/auth/internal/httpserver"
	"github.com/Skotchmaster/storefront/services/auth/internal/models"
	"github.com/Skotchmaster/storefront/services/auth/internal/repo"
	"github.com/Skotchmaster/storefront/services/auth/internal/service"
)

type Options struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
	CookieSecure  bool
	BcryptCost    int
}

type Module struct {
	Service *service.AuthService
	handler *httpserver.AuthHTTP
}

func New(o Options) *Module {
	svc := &service.AuthService{
		Repo:          &repo.GormRepo{DB: o.DB},
		Hasher:        hash.Hasher{Cost: o.BcryptCost},
		JWTSecret:     o.JWTSecret,
		RefreshSecret: o.RefreshSecret,
	}
	return &Module{
		Service: svc,
		handler: &httpserver.AuthHTTP{Svc: svc, CookieSecure: o.CookieSecure},
	}
}

func Models() []any {
	return []any{&models.User{}, &models.RefreshToken{}}
}

func (m *Module) Register(g *echo.Group, mw *authmw.Middleware) {
	httpserver.Register(g, m.handler, mw)
}
