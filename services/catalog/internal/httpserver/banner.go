package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
)

func toBanner(b models.Banner) contracts.Banner {
	return contracts.Banner{ID: b.ID.String(), Title: b.Title, Link: b.Link, Image: b.Image, CreatedAt: b.CreatedAt}
}

func (h *CatalogHTTP) GetBanners(c echo.Context) error {
	ctx := c.Request().Context()
	banners, err := h.Svc.ListBanners(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("get_banners_error", "status", 500, "error", err)
		return toHTTPError(err)
	}
	out := make([]contracts.Banner, len(banners))
	for i, b := range banners {
		out[i] = toBanner(b)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHTTP) CreateBanner(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_banner")

	var req contracts.BannerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("banner_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	b, err := h.Svc.CreateBanner(ctx, req.Title, req.Link, req.Image)
	if err != nil {
		l.Warn("banner_create_error", "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toBanner(*b))
}
