// Package console is the admin's working view of orders: a period-filtered
// list with totals and in-place status edits.
package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/Skotchmaster/storefront/pkg/contracts"
)

// Backend is the part of the storefront API the console needs.
type Backend interface {
	AdminOrders(ctx context.Context, period string) (*contracts.AdminOrdersResponse, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status contracts.OrderStatus) (*contracts.Order, error)
}

type Console struct {
	api Backend

	mu          sync.Mutex
	period      string
	orders      []contracts.Order
	totalSales  float64
	totalOrders int
}

func New(api Backend) *Console {
	return &Console{api: api}
}

// Load replaces the view with the server's orders for period ("" means all).
// On error the previous view is kept.
func (c *Console) Load(ctx context.Context, period string) error {
	resp, err := c.api.AdminOrders(ctx, period)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.period = period
	c.orders = resp.Orders
	c.totalSales = resp.TotalSales
	c.totalOrders = resp.TotalOrders
	return nil
}

// SetStatus changes an order's status on the server and, only once that
// succeeds, in the local view.
func (c *Console) SetStatus(ctx context.Context, orderID string, status contracts.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	updated, err := c.api.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("update order %s: %w", orderID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.orders {
		if c.orders[i].ID == orderID {
			c.orders[i].Status = updated.Status
			break
		}
	}
	return nil
}

func (c *Console) Period() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period
}

func (c *Console) Orders() []contracts.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]contracts.Order(nil), c.orders...)
}

func (c *Console) Totals() (sales float64, orders int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalSales, c.totalOrders
}

// Order returns the displayed order with id.
func (c *Console) Order(id string) (contracts.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.orders {
		if o.ID == id {
			return o, true
		}
	}
	return contracts.Order{}, false
}
