// Package checkout turns the shopper's cart into a submitted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Skotchmaster/storefront/pkg/cart"
	"github.com/Skotchmaster/storefront/pkg/contracts"
)

const DefaultPaymentDelay = 2 * time.Second

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUnauthenticated    = errors.New("you must be logged in to place an order")
	ErrIncompleteAddress  = errors.New("please fill in all address fields")
	ErrCheckoutInProgress = errors.New("an order is already being placed")
)

// OrderSubmitter sends the order to the server.
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req contracts.CreateOrderRequest) (*contracts.Order, error)
}

type Workflow struct {
	Cart      *cart.Store
	Persister cart.Persister
	Orders    OrderSubmitter
	// PaymentDelay simulates the payment step. Zero or less skips it.
	PaymentDelay time.Duration

	inFlight atomic.Bool
}

func New(c *cart.Store, p cart.Persister, orders OrderSubmitter) *Workflow {
	return &Workflow{Cart: c, Persister: p, Orders: orders, PaymentDelay: DefaultPaymentDelay}
}

func completeAddress(a contracts.Address) bool {
	for _, v := range []string{a.Street, a.City, a.State, a.ZipCode, a.Country} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// PlaceOrder submits the cart for userID. The cart is cleared and persisted
// only after the server accepts the order.
func (w *Workflow) PlaceOrder(ctx context.Context, userID string, address contracts.Address) (*contracts.Order, error) {
	if !w.inFlight.CompareAndSwap(false, true) {
		return nil, ErrCheckoutInProgress
	}
	defer w.inFlight.Store(false)

	switch {
	case w.Cart == nil || w.Cart.Empty():
		return nil, ErrEmptyCart
	case strings.TrimSpace(userID) == "":
		return nil, ErrUnauthenticated
	case !completeAddress(address):
		return nil, ErrIncompleteAddress
	}

	if err := w.pay(ctx); err != nil {
		return nil, err
	}

	items := w.Cart.Items()
	lines := make([]contracts.OrderLineRequest, len(items))
	for i, it := range items {
		lines[i] = contracts.OrderLineRequest{Product: it.ID, Quantity: it.Quantity}
	}
	total := w.Cart.Total().InexactFloat64()

	order, err := w.Orders.CreateOrder(ctx, contracts.CreateOrderRequest{
		UserID:     userID,
		Products:   lines,
		TotalPrice: &total,
		Address:    &address,
	})
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}

	w.Cart.Clear()
	if w.Persister != nil {
		if err := cart.Save(w.Persister, w.Cart); err != nil {
			return order, fmt.Errorf("order %s placed but cart not saved: %w", order.ID, err)
		}
	}
	return order, nil
}

func (w *Workflow) pay(ctx context.Context) error {
	if w.PaymentDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(w.PaymentDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// InProgress reports whether a PlaceOrder call is running.
func (w *Workflow) InProgress() bool { return w.inFlight.Load() }
