package domain

import (
	"time"
)

// Review represents a product review submitted by a user. Name is the
// submitter's display name, denormalized at submission time. A user may
// review a given product at most once.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
