package domain

import (
	"time"
)

// Category represents a product category. Categories are managed elsewhere;
// this service only reads them for validation and population.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
