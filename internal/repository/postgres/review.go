package postgres

import (
	"context"
	"fmt"

	"github.com/nimbusmart/catalog/internal/domain"
	"github.com/nimbusmart/catalog/pkg/database"
	apperrors "github.com/nimbusmart/catalog/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create inserts a review and recomputes the product's rating and num_reviews
// in the same transaction, so the aggregates can never drift from the review
// rows under concurrent submissions. A duplicate (product, user) pair maps to
// AlreadyReviewed via the unique constraint on product_reviews.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	insert := `
		INSERT INTO product_reviews (id, product_id, user_id, name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, insert,
		review.ID,
		review.ProductID,
		review.UserID,
		review.Name,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyReviewed()
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("product", review.ProductID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	recompute := `
		UPDATE products
		SET rating = (SELECT AVG(rating) FROM product_reviews WHERE product_id = $1),
		    num_reviews = (SELECT COUNT(*) FROM product_reviews WHERE product_id = $1),
		    updated_at = NOW()
		WHERE id = $1`

	ct, err := tx.Exec(ctx, recompute, review.ProductID)
	if err != nil {
		return fmt.Errorf("recompute product rating: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", review.ProductID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit review tx: %w", err)
	}

	return nil
}

// ListByProductID returns all reviews for a product in submission order.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string) ([]domain.Review, error) {
	query := `
		SELECT id, product_id, user_id, name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserID,
			&rv.Name,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}
