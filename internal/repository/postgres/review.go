package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/pkg/database"
	apperrors "github.com/eshoply/catalog-service/pkg/errors"
)

const reviewColumns = "id, product_id, user_id, rating, comment, created_at, updated_at"

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Submit upserts the review for its (user, product) pair and recomputes the
// product's denormalized rating aggregate. The whole sequence runs inside a
// transaction that locks the product row first, so two concurrent submissions
// for the same product serialize and the stored average reflects both.
func (r *ReviewRepository) Submit(ctx context.Context, review *domain.Review) (created bool, err error) {
	ctx, end := database.TraceQuery(ctx, "SubmitReview", "")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin review transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Lock the product row for the duration of the upsert and recompute.
	var productID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM products WHERE id = $1 FOR UPDATE`,
		review.ProductID,
	).Scan(&productID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NotFound("product", review.ProductID)
		}
		return false, fmt.Errorf("lock product row: %w", err)
	}

	var existingID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM product_reviews WHERE user_id = $1 AND product_id = $2`,
		review.UserID, review.ProductID,
	).Scan(&existingID)

	now := time.Now().UTC()

	switch {
	case err == nil:
		review.ID = existingID
		review.UpdatedAt = now
		_, err = tx.Exec(ctx,
			`UPDATE product_reviews SET rating = $1, comment = $2, updated_at = $3 WHERE id = $4`,
			review.Rating, review.Comment, review.UpdatedAt, review.ID,
		)
		if err != nil {
			return false, fmt.Errorf("update review: %w", err)
		}
	case errors.Is(err, pgx.ErrNoRows):
		created = true
		review.CreatedAt = now
		review.UpdatedAt = now
		_, err = tx.Exec(ctx,
			`INSERT INTO product_reviews (`+reviewColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			review.ID, review.ProductID, review.UserID, review.Rating, review.Comment,
			review.CreatedAt, review.UpdatedAt,
		)
		if err != nil {
			return false, fmt.Errorf("insert review: %w", err)
		}
	default:
		return false, fmt.Errorf("lookup existing review: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE products
		SET ratings = COALESCE((SELECT AVG(rating) FROM product_reviews WHERE product_id = $1), 0),
		    num_reviews = (SELECT COUNT(*) FROM product_reviews WHERE product_id = $1),
		    updated_at = $2
		WHERE id = $1`,
		review.ProductID, now,
	)
	if err != nil {
		return false, fmt.Errorf("recompute product rating: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit review transaction: %w", err)
	}

	return created, nil
}

// ListByProductID returns paginated reviews for a product, newest first.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string, page, perPage int) (reviews []domain.Review, total int, err error) {
	countQuery := `SELECT COUNT(*) FROM product_reviews WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "ListReviews", countQuery)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, countQuery, productID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	if perPage <= 0 {
		perPage = 1
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * perPage
	}

	query := `
		SELECT ` + reviewColumns + `
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, productID, perPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rev domain.Review

		if err = rows.Scan(
			&rev.ID,
			&rev.ProductID,
			&rev.UserID,
			&rev.Rating,
			&rev.Comment,
			&rev.CreatedAt,
			&rev.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		reviews = append(reviews, rev)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, total, nil
}

// Summary returns the average rating and review count for a product.
func (r *ReviewRepository) Summary(ctx context.Context, productID string) (summary *domain.ReviewSummary, err error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM product_reviews
		WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "ReviewSummary", query)
	defer func() { end(err) }()

	var s domain.ReviewSummary
	if err = r.pool.QueryRow(ctx, query, productID).Scan(&s.AverageRating, &s.TotalCount); err != nil {
		return nil, fmt.Errorf("scan review summary: %w", err)
	}

	return &s, nil
}
