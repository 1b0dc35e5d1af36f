// Package cart is the shopper's working set of products before checkout.
// A Store is not safe for concurrent use.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type Product struct {
	ID    string  `json:"productId"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

type Item struct {
	Product
	Quantity int `json:"quantity"`
}

type Store struct {
	items []Item
}

func New(items ...Item) *Store {
	s := &Store{}
	for _, it := range items {
		if it.Quantity >= 1 {
			_ = s.Add(it.Product, it.Quantity)
		}
	}
	return s
}

func (s *Store) index(productID string) int {
	for i := range s.items {
		if s.items[i].ID == productID {
			return i
		}
	}
	return -1
}

// Add increments the quantity of a product already in the cart or appends it.
func (s *Store) Add(p Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if i := s.index(p.ID); i >= 0 {
		s.items[i].Quantity += quantity
		return nil
	}
	s.items = append(s.items, Item{Product: p, Quantity: quantity})
	return nil
}

// UpdateQuantity sets the quantity; n <= 0 removes the item.
func (s *Store) UpdateQuantity(productID string, n int) {
	if n <= 0 {
		s.Remove(productID)
		return
	}
	if i := s.index(productID); i >= 0 {
		s.items[i].Quantity = n
	}
}

func (s *Store) Remove(productID string) {
	if i := s.index(productID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}

func (s *Store) Clear() { s.items = nil }

func (s *Store) IsInCart(productID string) bool { return s.index(productID) >= 0 }

func (s *Store) Quantity(productID string) int {
	if i := s.index(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

func (s *Store) ItemCount() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (s *Store) Empty() bool { return len(s.items) == 0 }

func (s *Store) Items() []Item {
	return append([]Item(nil), s.items...)
}
