package contracts

import "time"

type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

type ProductRequest struct {
	Title       string   `json:"title"`
	Price       *float64 `json:"price"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}

type ProductEnvelope struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

type SearchResponse struct {
	Total    int64     `json:"total"`
	Products []Product `json:"products"`
}

type Banner struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

type BannerRequest struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Image string `json:"image"`
}
