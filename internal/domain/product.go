package domain

import (
	"time"
)

// DefaultImage is assigned to products created without an image URL.
const DefaultImage = "/images/sample.jpg"

// Product represents a product in the catalog. Rating and NumReviews are
// derived from the product's reviews and recomputed whenever a review is
// added; they are never written directly by clients.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Brand        string    `json:"brand"`
	Price        float64   `json:"price"`
	CategoryID   string    `json:"category_id"`
	Category     *Category `json:"category,omitempty"`
	Quantity     int       `json:"quantity"`
	CountInStock int       `json:"count_in_stock"`
	Image        string    `json:"image"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"num_reviews"`
	Reviews      []Review  `json:"reviews"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
