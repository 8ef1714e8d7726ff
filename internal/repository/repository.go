package repository

import (
	"context"

	"github.com/nimbusmart/catalog/internal/domain"
)

// ProductFilter defines the criteria accepted by the filtered-products
// operation. Empty criteria are ignored; a populated keyword, category set,
// and price range are combined with AND.
type ProductFilter struct {
	Keyword     *string
	CategoryIDs []string
	MinPrice    *float64
	MaxPrice    *float64
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product with its category and reviews populated.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns a page of products matching the optional keyword along
	// with the total match count. Ordered newest first.
	List(ctx context.Context, keyword string, page, perPage int) ([]domain.Product, int, error)

	// Filter returns all products matching the given filter, unpaginated.
	Filter(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	// ListRecent returns up to limit products ordered newest first.
	ListRecent(ctx context.Context, limit int) ([]domain.Product, error)

	// ListTop returns up to limit products ordered by rating descending.
	ListTop(ctx context.Context, limit int) ([]domain.Product, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// Create inserts a review and recomputes the product's rating and
	// num_reviews aggregates in the same transaction.
	Create(ctx context.Context, review *domain.Review) error

	// ListByProductID returns all reviews for a product in submission order.
	ListByProductID(ctx context.Context, productID string) ([]domain.Review, error)
}

// CategoryRepository defines the read-only category surface of this service.
type CategoryRepository interface {
	// GetByID retrieves a category by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Category, error)

	// ListAll returns all categories ordered by name.
	ListAll(ctx context.Context) ([]domain.Category, error)
}
