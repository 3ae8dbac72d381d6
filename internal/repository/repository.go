package repository

import (
	"context"

	"github.com/eshoply/catalog-service/internal/domain"
)

// ProductFilter defines filter criteria for listing products. Nil fields are
// not applied. Page is 1-based; PerPage comes from service configuration.
type ProductFilter struct {
	Keyword  *string
	Category *string
	Brand    *string
	MinPrice *int64
	MaxPrice *int64
	Page     int
	PerPage  int
}

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the filter ordered by ascending id,
	// along with the total count of matches regardless of the page window.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update overwrites an existing product's mutable fields.
	Update(ctx context.Context, product *domain.Product) error
}

// ReviewRepository defines review persistence operations. The keyed lookup of
// a user's existing review for a product happens inside Submit's transaction.
type ReviewRepository interface {
	// Submit upserts the review for its (user, product) pair and recomputes
	// the product's denormalized rating aggregate, all within one
	// transaction. Returns true when a new review row was inserted, false
	// when an existing one was overwritten.
	Submit(ctx context.Context, review *domain.Review) (created bool, err error)

	// ListByProductID returns paginated reviews for a product, newest first,
	// along with the total count.
	ListByProductID(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error)

	// Summary returns the average rating and review count for a product.
	Summary(ctx context.Context, productID string) (*domain.ReviewSummary, error)
}
