package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nimbusmart/catalog/internal/domain"
	"github.com/nimbusmart/catalog/internal/repository"
	"github.com/nimbusmart/catalog/pkg/database"
	apperrors "github.com/nimbusmart/catalog/pkg/errors"
)

// productColumns is the shared select list for product reads. Every read
// joins the category so responses carry the populated category.
const productColumns = `
	p.id, p.name, p.description, p.brand, p.price, p.category_id,
	p.quantity, p.count_in_stock, p.image, p.rating, p.num_reviews,
	p.created_at, p.updated_at,
	c.name, c.created_at, c.updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, brand, price, category_id, quantity, count_in_stock, image, rating, num_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Brand,
		p.Price,
		p.CategoryID,
		p.Quantity,
		p.CountInStock,
		p.Image,
		p.Rating,
		p.NumReviews,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("category does not exist")
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product with its category and reviews populated.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1`, productColumns)

	p, err := r.scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	reviews, err := r.listReviews(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Reviews = reviews

	return p, nil
}

// List returns a page of products whose name matches the optional keyword
// (case-insensitive substring) along with the total match count, newest first.
func (r *ProductRepository) List(ctx context.Context, keyword string, page, perPage int) ([]domain.Product, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if keyword != "" {
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", argIndex))
		args = append(args, "%"+keyword+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// count(*) OVER() gives the total match count in a single query.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products p
		JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argIndex, argIndex+1,
	)

	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return r.scanProductsWithCount(rows)
}

// Filter returns all products matching the filter criteria, unpaginated.
// Empty criteria are ignored; populated criteria are combined with AND.
func (r *ProductRepository) Filter(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Keyword != nil && *filter.Keyword != "" {
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.Keyword+"%")
		argIndex++
	}

	if len(filter.CategoryIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("p.category_id = ANY($%d)", argIndex))
		args = append(args, filter.CategoryIDs)
		argIndex++
	}

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("p.price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		%s
		ORDER BY p.created_at DESC`,
		productColumns, whereClause,
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}
	defer rows.Close()

	return r.scanProducts(rows)
}

// ListRecent returns up to limit products ordered newest first.
func (r *ProductRepository) ListRecent(ctx context.Context, limit int) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.created_at DESC
		LIMIT $1`, productColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}
	defer rows.Close()

	return r.scanProducts(rows)
}

// ListTop returns up to limit products ordered by rating descending.
func (r *ProductRepository) ListTop(ctx context.Context, limit int) ([]domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.rating DESC, p.num_reviews DESC
		LIMIT $1`, productColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list top products: %w", err)
	}
	defer rows.Close()

	return r.scanProducts(rows)
}

// Update modifies an existing product in the database. Rating and num_reviews
// are owned by the review write path and left untouched here.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, description = $2, brand = $3, price = $4, category_id = $5,
		    quantity = $6, count_in_stock = $7, image = $8, updated_at = $9
		WHERE id = $10`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Description,
		p.Brand,
		p.Price,
		p.CategoryID,
		p.Quantity,
		p.CountInStock,
		p.Image,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.InvalidInput("category does not exist")
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product from the database by its ID. Reviews are removed
// by the ON DELETE CASCADE on product_reviews.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// listReviews loads all reviews for a product in submission order.
func (r *ProductRepository) listReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	query := `
		SELECT id, product_id, user_id, name, rating, comment, created_at
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product reviews: %w", err)
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

// scanProduct reads one product row including the joined category columns.
func (r *ProductRepository) scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p        domain.Product
		category domain.Category
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Brand,
		&p.Price,
		&p.CategoryID,
		&p.Quantity,
		&p.CountInStock,
		&p.Image,
		&p.Rating,
		&p.NumReviews,
		&p.CreatedAt,
		&p.UpdatedAt,
		&category.Name,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	category.ID = p.CategoryID
	p.Category = &category
	p.Reviews = []domain.Review{}

	return &p, nil
}

// scanProducts collects all product rows from a query without a count column.
func (r *ProductRepository) scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	products := []domain.Product{}

	for rows.Next() {
		var (
			p        domain.Product
			category domain.Category
		)

		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Brand,
			&p.Price,
			&p.CategoryID,
			&p.Quantity,
			&p.CountInStock,
			&p.Image,
			&p.Rating,
			&p.NumReviews,
			&p.CreatedAt,
			&p.UpdatedAt,
			&category.Name,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}

		category.ID = p.CategoryID
		p.Category = &category
		p.Reviews = []domain.Review{}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, nil
}

// scanProductsWithCount is like scanProducts for queries carrying a trailing
// count(*) OVER() column.
func (r *ProductRepository) scanProductsWithCount(rows pgx.Rows) ([]domain.Product, int, error) {
	var (
		products   = []domain.Product{}
		totalCount int
	)

	for rows.Next() {
		var (
			p        domain.Product
			category domain.Category
		)

		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Brand,
			&p.Price,
			&p.CategoryID,
			&p.Quantity,
			&p.CountInStock,
			&p.Image,
			&p.Rating,
			&p.NumReviews,
			&p.CreatedAt,
			&p.UpdatedAt,
			&category.Name,
			&category.CreatedAt,
			&category.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}

		category.ID = p.CategoryID
		p.Category = &category
		p.Reviews = []domain.Review{}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	return products, totalCount, nil
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation checks for a PostgreSQL foreign key violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}
