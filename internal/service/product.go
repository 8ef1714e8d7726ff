package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nimbusmart/catalog/internal/cache"
	"github.com/nimbusmart/catalog/internal/domain"
	"github.com/nimbusmart/catalog/internal/event"
	"github.com/nimbusmart/catalog/internal/repository"
	apperrors "github.com/nimbusmart/catalog/pkg/errors"
)

// PageSize is the fixed page size of the paginated product listing.
const PageSize = 6

// Limits for the curated list endpoints.
const (
	allProductsLimit = 12
	topProductsLimit = 4
	newProductsLimit = 5
)

// ListCache caches the curated product lists. Implementations must be safe
// for concurrent use. A nil ListCache disables caching.
type ListCache interface {
	GetList(ctx context.Context, key string) ([]domain.Product, bool, error)
	SetList(ctx context.Context, key string, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

// ProductPage is one page of the paginated product listing.
type ProductPage struct {
	Products []domain.Product
	Page     int
	Pages    int
	HasMore  bool
}

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	producer   *event.Producer
	cache      ListCache
	logger     *slog.Logger
}

// NewProductService creates a new product service. cache may be nil, in which
// case list caching is disabled.
func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	producer *event.Producer,
	listCache ListCache,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		producer:   producer,
		cache:      listCache,
		logger:     logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name         string
	Description  string
	Brand        string
	Price        float64
	CategoryID   string
	Quantity     int
	CountInStock *int
	Image        string
}

// UpdateProductInput holds the parameters for a partial product update. Nil
// fields are left unchanged.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Brand        *string
	Price        *float64
	CategoryID   *string
	Quantity     *int
	CountInStock *int
	Image        *string
}

// CreateProduct creates a new product. CountInStock defaults to Quantity and
// Image to the sample image when omitted.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}

	countInStock := input.Quantity
	if input.CountInStock != nil {
		if *input.CountInStock < 0 {
			return nil, apperrors.InvalidInput("count_in_stock must not be negative")
		}
		countInStock = *input.CountInStock
	}

	image := input.Image
	if image == "" {
		image = domain.DefaultImage
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Description:  input.Description,
		Brand:        input.Brand,
		Price:        input.Price,
		CategoryID:   input.CategoryID,
		Quantity:     input.Quantity,
		CountInStock: countInStock,
		Image:        image,
		Reviews:      []domain.Review{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.invalidateListCache(ctx)

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// GetProduct retrieves a product with its category and reviews populated.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns one page of products matching the optional keyword,
// with a fixed page size and the derived total page count.
func (s *ProductService) ListProducts(ctx context.Context, keyword string, page int) (*ProductPage, error) {
	if page <= 0 {
		page = 1
	}

	products, total, err := s.repo.List(ctx, keyword, page, PageSize)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	pages := (total + PageSize - 1) / PageSize

	return &ProductPage{
		Products: products,
		Page:     page,
		Pages:    pages,
		HasMore:  page < pages,
	}, nil
}

// AllProducts returns the capped catalog listing: up to 12 products, newest first.
func (s *ProductService) AllProducts(ctx context.Context) ([]domain.Product, error) {
	return s.cachedList(ctx, cache.KeyAll, func(ctx context.Context) ([]domain.Product, error) {
		return s.repo.ListRecent(ctx, allProductsLimit)
	})
}

// TopProducts returns the 4 highest-rated products.
func (s *ProductService) TopProducts(ctx context.Context) ([]domain.Product, error) {
	return s.cachedList(ctx, cache.KeyTop, func(ctx context.Context) ([]domain.Product, error) {
		return s.repo.ListTop(ctx, topProductsLimit)
	})
}

// NewProducts returns the 5 most recently created products.
func (s *ProductService) NewProducts(ctx context.Context) ([]domain.Product, error) {
	return s.cachedList(ctx, cache.KeyRecent, func(ctx context.Context) ([]domain.Product, error) {
		return s.repo.ListRecent(ctx, newProductsLimit)
	})
}

// FilterProducts returns products matching the filter criteria. Empty
// criteria are ignored, so an empty filter returns the whole catalog.
func (s *ProductService) FilterProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	products, err := s.repo.Filter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies a partial update to an existing product. Updating
// Quantity without an explicit CountInStock mirrors the new quantity into
// count_in_stock.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("name must not be empty")
		}
		product.Name = *input.Name
	}

	if input.Description != nil {
		product.Description = *input.Description
	}

	if input.Brand != nil {
		product.Brand = *input.Brand
	}

	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = *input.Price
	}

	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *input.CategoryID
	}

	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, apperrors.InvalidInput("quantity must not be negative")
		}
		product.Quantity = *input.Quantity
		if input.CountInStock == nil {
			product.CountInStock = *input.Quantity
		}
	}

	if input.CountInStock != nil {
		if *input.CountInStock < 0 {
			return nil, apperrors.InvalidInput("count_in_stock must not be negative")
		}
		product.CountInStock = *input.CountInStock
	}

	if input.Image != nil {
		product.Image = *input.Image
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateListCache(ctx)

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.invalidateListCache(ctx)

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// checkCategory validates a category reference at write time. The literal
// string "undefined" is what a broken client sends for a missing selection
// and is rejected outright.
func (s *ProductService) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" || categoryID == "undefined" {
		return apperrors.InvalidInput("category is required")
	}

	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.InvalidInput("category does not exist")
		}
		return fmt.Errorf("check category: %w", err)
	}

	return nil
}

// cachedList serves a curated list from the cache when possible, falling back
// to the loader. Cache failures degrade to the database and are logged, never
// surfaced.
func (s *ProductService) cachedList(ctx context.Context, key string, load func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	if s.cache != nil {
		products, ok, err := s.cache.GetList(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "product list cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		} else if ok {
			return products, nil
		}
	}

	products, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetList(ctx, key, products); err != nil {
			s.logger.WarnContext(ctx, "product list cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	return products, nil
}

// invalidateListCache drops the cached curated lists after a write.
func (s *ProductService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "product list cache invalidation failed",
			slog.String("error", err.Error()),
		)
	}
}
