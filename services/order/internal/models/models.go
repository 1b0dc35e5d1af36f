package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusCancelled = "cancelled"
)

type Address struct {
	Street  string `gorm:"size:200;not null"`
	City    string `gorm:"size:100"`
	State   string `gorm:"size:100"`
	ZipCode string `gorm:"size:20"`
	Country string `gorm:"size:100;not null"`
}

type Order struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID   `gorm:"type:uuid;index;not null"`
	TotalPrice float64     `gorm:"not null;check:total_price >= 0"`
	Address    Address     `gorm:"embedded;embeddedPrefix:address_"`
	Status     string      `gorm:"size:16;not null;default:pending;index"`
	CreatedAt  time.Time   `gorm:"index;not null"`
	Lines      []OrderLine `gorm:"foreignKey:OrderID"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderLine struct {
	ID        uint        `gorm:"primaryKey"`
	OrderID   uuid.UUID   `gorm:"type:uuid;index;not null"`
	Position  int         `gorm:"not null"`
	ProductID uuid.UUID   `gorm:"type:uuid;not null"`
	Quantity  int         `gorm:"not null;check:quantity > 0"`
	Product   *ProductRef `gorm:"foreignKey:ProductID;constraint:-"`
}

// ProductRef is a read-only view of the catalog's products table.
type ProductRef struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string
	Price       float64
	Image       string
	Description string
	Category    string
	CreatedAt   time.Time
}

func (ProductRef) TableName() string { return "products" }
