package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/identity"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/order/internal/models"
	"github.com/Skotchmaster/storefront/services/order/internal/service"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func toOrder(o models.Order) contracts.Order {
	lines := make([]contracts.OrderLine, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = contracts.OrderLine{ProductID: l.ProductID.String(), Quantity: l.Quantity}
		if l.Product != nil {
			lines[i].Product = &contracts.Product{
				ID:          l.Product.ID.String(),
				Title:       l.Product.Title,
				Price:       l.Product.Price,
				Image:       l.Product.Image,
				Description: l.Product.Description,
				Category:    l.Product.Category,
				CreatedAt:   l.Product.CreatedAt,
			}
		}
	}
	return contracts.Order{
		ID:         o.ID.String(),
		UserID:     o.UserID.String(),
		Products:   lines,
		TotalPrice: o.TotalPrice,
		Address: contracts.Address{
			Street:  o.Address.Street,
			City:    o.Address.City,
			State:   o.Address.State,
			ZipCode: o.Address.ZipCode,
			Country: o.Address.Country,
		},
		Status:    contracts.OrderStatus(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

func toOrders(orders []models.Order) []contracts.Order {
	out := make([]contracts.Order, len(orders))
	for i, o := range orders {
		out[i] = toOrder(o)
	}
	return out
}

func caller(c echo.Context) (identity.Identity, error) {
	id, ok := identity.From(c)
	if !ok {
		return identity.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "You must be logged in.")
	}
	return id, nil
}

// GetOrders serves both the shopper view (userId or own orders) and the
// admin console (all orders with totals).
func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	who, err := caller(c)
	if err != nil {
		return err
	}
	userID := c.QueryParam("userId")
	periodName := c.QueryParam("period")

	if userID == "" && who.IsAdmin() {
		sum, err := h.Svc.ListAll(ctx, periodName)
		if err != nil {
			l.Warn("get_orders_error", "period", periodName, "error", err)
			return toHTTPError(err)
		}
		total, _ := sum.TotalSales.Float64()
		return c.JSON(http.StatusOK, contracts.AdminOrdersResponse{
			Orders:      toOrders(sum.Orders),
			TotalSales:  total,
			TotalOrders: sum.TotalOrders,
		})
	}

	orders, err := h.Svc.ListForUser(ctx, who, userID, periodName)
	if err != nil {
		l.Warn("get_orders_error", "user_id", userID, "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, contracts.UserOrdersResponse{Orders: toOrders(orders)})
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	who, err := caller(c)
	if err != nil {
		return err
	}

	var req contracts.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Missing or invalid fields")
	}

	order, err := h.Svc.CreateOrder(ctx, who, req)
	if err != nil {
		l.Warn("create_order_error", "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toOrder(*order))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	var req contracts.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid orderId or status")
	}

	order, err := h.Svc.UpdateStatus(ctx, req.OrderID, req.Status)
	if err != nil {
		l.Warn("update_status_error", "order_id", req.OrderID, "error", err)
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, contracts.OrderEnvelope{Order: toOrder(*order)})
}
