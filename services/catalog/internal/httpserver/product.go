package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/pagination"
	"github.com/Skotchmaster/storefront/services/catalog/internal/models"
	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func ToProduct(p models.Product) contracts.Product {
	return contracts.Product{
		ID:          p.ID.String(),
		Title:       p.Title,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		Category:    p.Category,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProducts(items []models.Product) []contracts.Product {
	out := make([]contracts.Product, len(items))
	for i, p := range items {
		out[i] = ToProduct(p)
	}
	return out
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return id, nil
}

func input(req contracts.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Title:       req.Title,
		Price:       req.Price,
		Image:       req.Image,
		Description: req.Description,
		Category:    req.Category,
	}
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not a uuid")
		return err
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			l.Error("get_product_failed", "status", 500, "error", err)
		}
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ToProduct(*p))
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_products")

	page := pagination.ParseIntDefault(c.QueryParam("page"), 1)
	size := pagination.ParseIntDefault(c.QueryParam("size"), pagination.DefaultPageSize)
	offset, limit := pagination.Calculate(page, size)

	total, items, err := h.Svc.ListProducts(ctx, c.QueryParam("category"), offset, limit)
	if err != nil {
		l.Warn("get_products_error", "error", err)
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": toProducts(items),
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	page := pagination.ParseIntDefault(c.QueryParam("page"), 1)
	size := pagination.ParseIntDefault(c.QueryParam("size"), pagination.DefaultPageSize)
	offset, limit := pagination.Calculate(page, size)

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		l.Warn("search_error", "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, contracts.SearchResponse{Total: total, Products: toProducts(items)})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req contracts.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.CreateProduct(ctx, input(req))
	if err != nil {
		l.Warn("product_create_error", "error", err)
		return toHTTPError(err)
	}
	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, contracts.ProductEnvelope{Message: "Product created successfully", Product: ToProduct(*p)})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req contracts.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.UpdateProduct(ctx, id, input(req))
	if err != nil {
		l.Warn("product_update_error", "product_id", id, "error", err)
		return toHTTPError(err)
	}
	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, contracts.ProductEnvelope{Message: "Product updated successfully", Product: ToProduct(*p)})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		l.Warn("product_delete_error", "product_id", id, "error", err)
		return toHTTPError(err)
	}
	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
