package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var Categories = []string{
	"Fancy",
	"Heavy Dress",
	"Light Dress",
	"Embroidery Work",
	"Mirror Work",
	"Mukesh",
	"Tarkashi",
	"Shadow Work",
	"Electronics",
	"Books",
	"Home & Garden",
	"Sports",
	"Other",
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"size:100;not null"`
	Price       float64   `gorm:"not null;check:price >= 0"`
	Image       string    `gorm:"not null"`
	Description string    `gorm:"size:500;not null"`
	Category    string    `gorm:"size:32;not null;index"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Banner struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"not null"`
	Link      string    `gorm:"not null"`
	Image     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (b *Banner) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
