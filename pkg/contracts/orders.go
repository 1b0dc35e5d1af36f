// Package contracts holds the JSON shapes exchanged between the storefront
// API and its clients.
package contracts

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusShipped   OrderStatus = "shipped"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type OrderLineRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type CreateOrderRequest struct {
	UserID     string             `json:"userId"`
	Products   []OrderLineRequest `json:"products"`
	TotalPrice *float64           `json:"totalPrice"`
	Address    *Address           `json:"address"`
}

type UpdateOrderStatusRequest struct {
	OrderID string      `json:"orderId"`
	Status  OrderStatus `json:"status"`
}

type OrderLine struct {
	Product  *Product `json:"product,omitempty"`
	// ProductID is always set, even when the product no longer exists.
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	Products   []OrderLine `json:"products"`
	TotalPrice float64     `json:"totalPrice"`
	Address    Address     `json:"address"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type UserOrdersResponse struct {
	Orders []Order `json:"orders"`
}

type AdminOrdersResponse struct {
	Orders      []Order `json:"orders"`
	TotalSales  float64 `json:"totalSales"`
	TotalOrders int     `json:"totalOrders"`
}

type OrderEnvelope struct {
	Order Order `json:"order"`
}
