package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/pkg/contracts"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/identity"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/services/order/internal/models"
	"github.com/Skotchmaster/storefront/services/order/internal/period"
	"github.com/Skotchmaster/storefront/services/order/internal/repo"
)

type OrderService struct {
	Repo          *repo.GormRepo
	AddressPolicy AddressPolicy
	Publisher     events.Publisher
	Metrics       *metrics.ShopMetrics
	Now           func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Summary is an admin listing with its aggregate.
type Summary struct {
	Orders      []models.Order
	TotalSales  decimal.Decimal
	TotalOrders int
}

func parseUUID(field, v string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", ErrValidation, field)
	}
	return id, nil
}

// CreateOrder persists a pending order. The submitted total is stored as
// given; a difference from the catalog sum is only logged.
func (s *OrderService) CreateOrder(ctx context.Context, caller identity.Identity, req contracts.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}
	userID, err := parseUUID("userId", req.UserID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && userID.String() != caller.UserID {
		l.Warn("create_order_error", "status", 403, "reason", "user mismatch", "user_id", caller.UserID)
		return nil, fmt.Errorf("%w: cannot place an order for another user", ErrForbidden)
	}
	if len(req.Products) == 0 {
		return nil, fmt.Errorf("%w: products must be a non-empty list", ErrValidation)
	}
	if req.TotalPrice == nil {
		return nil, fmt.Errorf("%w: totalPrice must be a number", ErrValidation)
	}
	if *req.TotalPrice < 0 {
		return nil, fmt.Errorf("%w: totalPrice cannot be negative", ErrValidation)
	}
	if err := s.AddressPolicy.Validate(req.Address); err != nil {
		return nil, err
	}

	lines := make([]models.OrderLine, 0, len(req.Products))
	ids := make([]uuid.UUID, 0, len(req.Products))
	for i, p := range req.Products {
		pid, err := parseUUID(fmt.Sprintf("products[%d].product", i), p.Product)
		if err != nil {
			return nil, err
		}
		if p.Quantity < 1 {
			return nil, fmt.Errorf("%w: products[%d].quantity must be at least 1", ErrValidation, i)
		}
		ids = append(ids, pid)
		lines = append(lines, models.OrderLine{Position: i, ProductID: pid, Quantity: p.Quantity})
	}

	known, err := s.Repo.ExistingProducts(ctx, ids)
	if err != nil {
		l.Error("create_order_error", "status", 500, "reason", "cannot look up products", "error", err)
		return nil, err
	}
	catalogSum := decimal.Zero
	for i, line := range lines {
		ref, ok := known[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: products[%d].product does not exist", ErrValidation, i)
		}
		catalogSum = catalogSum.Add(decimal.NewFromFloat(ref.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	submitted := decimal.NewFromFloat(*req.TotalPrice)
	if !submitted.Equal(catalogSum) {
		l.Warn("total_price_mismatch", "user_id", userID, "submitted", submitted.String(), "catalog", catalogSum.String())
	}

	a := req.Address
	order := &models.Order{
		UserID:     userID,
		TotalPrice: *req.TotalPrice,
		Address: models.Address{
			Street:  strings.TrimSpace(a.Street),
			City:    strings.TrimSpace(a.City),
			State:   strings.TrimSpace(a.State),
			ZipCode: strings.TrimSpace(a.ZipCode),
			Country: strings.TrimSpace(a.Country),
		},
		Status:    models.StatusPending,
		CreatedAt: s.now().UTC(),
		Lines:     lines,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		l.Error("create_order_error", "status", 500, "reason", "cannot persist order", "error", err)
		return nil, err
	}

	created, err := s.Repo.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.Metrics.OrderCreated()
	events.Emit(ctx, s.Publisher, contracts.TopicOrders, order.ID.String(),
		contracts.NewEvent(contracts.EventOrderCreated, map[string]any{
			"order_id":    order.ID.String(),
			"user_id":     userID.String(),
			"total_price": order.TotalPrice,
			"lines":       len(lines),
		}))
	l.Info("create_order_success", "order_id", order.ID, "user_id", userID)
	return created, nil
}

// UpdateStatus sets any valid status regardless of the current one.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status contracts.OrderStatus) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status")

	id, err := uuid.Parse(strings.TrimSpace(orderID))
	if err != nil || !status.Valid() {
		return nil, fmt.Errorf("%w: Invalid orderId or status", ErrValidation)
	}

	if err := s.Repo.UpdateStatus(ctx, id, string(status)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: Order not found", ErrNotFound)
		}
		l.Error("update_status_error", "status", 500, "order_id", id, "error", err)
		return nil, err
	}

	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Metrics.StatusChanged(string(status))
	events.Emit(ctx, s.Publisher, contracts.TopicOrders, id.String(),
		contracts.NewEvent(contracts.EventOrderStatusChanged, map[string]any{
			"order_id": id.String(),
			"status":   string(status),
		}))
	l.Info("update_status_success", "order_id", id, "new_status", status)
	return order, nil
}

func (s *OrderService) rangeFor(name string) (period.Range, error) {
	r, err := period.Window(name, s.now())
	if err != nil {
		return period.Range{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return r, nil
}

// ListForUser returns one user's orders. Non-admins may only read their own.
func (s *OrderService) ListForUser(ctx context.Context, caller identity.Identity, userID, periodName string) ([]models.Order, error) {
	if userID == "" {
		userID = caller.UserID
	}
	uid, err := parseUUID("userId", userID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && uid.String() != caller.UserID {
		return nil, fmt.Errorf("%w: cannot read another user's orders", ErrForbidden)
	}

	f := repo.Filter{UserID: uid}
	if periodName != "" {
		r, err := s.rangeFor(periodName)
		if err != nil {
			return nil, err
		}
		f.From, f.To = r.Start, r.End
	}
	return s.Repo.ListOrders(ctx, f)
}

// ListAll returns every order in the period with the summed totalPrice.
// An empty period means all orders.
func (s *OrderService) ListAll(ctx context.Context, periodName string) (*Summary, error) {
	var f repo.Filter
	if periodName != "" {
		r, err := s.rangeFor(periodName)
		if err != nil {
			return nil, err
		}
		f.From, f.To = r.Start, r.End
	}
	orders, err := s.Repo.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Summary{Orders: orders, TotalSales: AggregateSales(orders), TotalOrders: len(orders)}, nil
}

func AggregateSales(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(decimal.NewFromFloat(o.TotalPrice))
	}
	return total
}
