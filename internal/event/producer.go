package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nimbusmart/catalog/internal/domain"
	pkgkafka "github.com/nimbusmart/catalog/pkg/kafka"
)

// Kafka topics for catalog domain events.
var (
	TopicProductCreated = pkgkafka.Topic("product", "created")
	TopicProductUpdated = pkgkafka.Topic("product", "updated")
	TopicProductDeleted = pkgkafka.Topic("product", "deleted")
	TopicReviewCreated  = pkgkafka.Topic("review", "created")
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeReview  = "review"
)

// Source identifier for events originating from this service.
const SourceCatalog = "catalog"

// ProductData is the payload for product.created and product.updated events.
type ProductData struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Brand        string  `json:"brand"`
	Price        float64 `json:"price"`
	CategoryID   string  `json:"category_id"`
	Quantity     int     `json:"quantity"`
	CountInStock int     `json:"count_in_stock"`
	Image        string  `json:"image"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// ReviewCreatedData is the payload for a review.created event. It carries the
// recomputed product aggregates so consumers need not re-query.
type ReviewCreatedData struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	UserID     string  `json:"user_id"`
	Rating     int     `json:"rating"`
	NewRating  float64 `json:"new_rating"`
	NumReviews int     `json:"num_reviews"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Brand:        p.Brand,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		Quantity:     p.Quantity,
		CountInStock: p.CountInStock,
		Image:        p.Image,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	event, err := pkgkafka.NewEvent(TopicProductCreated, product.ID, AggregateTypeProduct, SourceCatalog, productData(product))
	if err != nil {
		return fmt.Errorf("create product.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductCreated, event); err != nil {
		return fmt.Errorf("publish product.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.created event",
		slog.String("product_id", product.ID),
	)

	return nil
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	event, err := pkgkafka.NewEvent(TopicProductUpdated, product.ID, AggregateTypeProduct, SourceCatalog, productData(product))
	if err != nil {
		return fmt.Errorf("create product.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductUpdated, event); err != nil {
		return fmt.Errorf("publish product.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.updated event",
		slog.String("product_id", product.ID),
	)

	return nil
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	event, err := pkgkafka.NewEvent(TopicProductDeleted, id, AggregateTypeProduct, SourceCatalog, ProductDeletedData{ID: id})
	if err != nil {
		return fmt.Errorf("create product.deleted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicProductDeleted, event); err != nil {
		return fmt.Errorf("publish product.deleted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published product.deleted event",
		slog.String("product_id", id),
	)

	return nil
}

// PublishReviewCreated publishes a review.created event carrying the
// product's recomputed aggregates.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review, newRating float64, numReviews int) error {
	data := ReviewCreatedData{
		ID:         review.ID,
		ProductID:  review.ProductID,
		UserID:     review.UserID,
		Rating:     review.Rating,
		NewRating:  newRating,
		NumReviews: numReviews,
	}

	event, err := pkgkafka.NewEvent(TopicReviewCreated, review.ProductID, AggregateTypeReview, SourceCatalog, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, event); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.created event",
		slog.String("product_id", review.ProductID),
		slog.String("review_id", review.ID),
	)

	return nil
}
