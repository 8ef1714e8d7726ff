package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nimbusmart/catalog/internal/domain"
	"github.com/nimbusmart/catalog/internal/event"
	"github.com/nimbusmart/catalog/internal/repository"
)

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	producer *event.Producer
	cache    ListCache
	logger   *slog.Logger
}

// NewReviewService creates a new review service. cache may be nil.
func NewReviewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	listCache ListCache,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		products: products,
		producer: producer,
		cache:    listCache,
		logger:   logger,
	}
}

// CreateReviewInput holds the parameters for submitting a review.
type CreateReviewInput struct {
	ProductID string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
}

// AddReview appends a review to a product and recomputes the product's
// aggregates in one transaction. A second review from the same user for the
// same product is rejected.
func (s *ReviewService) AddReview(ctx context.Context, input *CreateReviewInput) (*domain.Review, error) {
	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product for review: %w", err)
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Name:      input.UserName,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	// Recomputed aggregates for the event payload. The database holds the
	// authoritative values; these match it because the insert committed.
	numReviews := product.NumReviews + 1
	newRating := (product.Rating*float64(product.NumReviews) + float64(input.Rating)) / float64(numReviews)

	if err := s.producer.PublishReviewCreated(ctx, review, newRating, numReviews); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("product_id", input.ProductID),
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WarnContext(ctx, "product list cache invalidation failed",
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("product_id", input.ProductID),
		slog.String("review_id", review.ID),
		slog.Int("rating", input.Rating),
	)

	return review, nil
}

// ListReviews returns all reviews for a product in submission order.
func (s *ReviewService) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("get product for reviews: %w", err)
	}

	reviews, err := s.reviews.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}
