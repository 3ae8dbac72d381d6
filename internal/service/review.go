package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/internal/repository"
	apperrors "github.com/eshoply/catalog-service/pkg/errors"
	"github.com/eshoply/catalog-service/pkg/logger"
)

// SubmitReviewInput carries a review submission for one product.
type SubmitReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewService implements review submission and retrieval.
type ReviewService struct {
	reviews  repository.ReviewRepository
	products repository.ProductRepository
	events   EventPublisher
	pageSize int
	logger   *slog.Logger
}

// NewReviewService creates a review service. events may be nil to disable
// publishing.
func NewReviewService(reviews repository.ReviewRepository, products repository.ProductRepository, events EventPublisher, pageSize int, log *slog.Logger) *ReviewService {
	if pageSize <= 0 {
		pageSize = 1
	}

	return &ReviewService{
		reviews:  reviews,
		products: products,
		events:   events,
		pageSize: pageSize,
		logger:   log,
	}
}

// SubmitReview records or overwrites the calling user's review of a product
// and returns whether a new review was created. The product's rating aggregate
// is recomputed in the same transaction as the review write. The product is
// resolved first, so a missing product reports not-found even when the rating
// is also out of range; either failure leaves the review set and the product
// untouched.
func (s *ReviewService) SubmitReview(ctx context.Context, userID, productID string, input SubmitReviewInput) (created bool, err error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return false, err
	}

	if !domain.IsValidRating(input.Rating) {
		return false, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ProductID: productID,
		UserID:    userID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}

	created, err = s.reviews.Submit(ctx, review)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to submit review",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return false, apperrors.Wrap(err, "submit review")
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "review submitted",
		slog.String("product_id", productID),
		slog.Int("rating", input.Rating),
		slog.Bool("created", created),
	)

	if s.events != nil {
		if product, perr := s.products.GetByID(ctx, productID); perr == nil {
			s.events.ReviewSubmitted(ctx, review, created, product)
		}
	}

	return created, nil
}

// ReviewPage is one page of a product's reviews plus the aggregate computed
// over all of them, not just the page.
type ReviewPage struct {
	Reviews []domain.Review
	Summary domain.ReviewSummary
}

// ListReviews returns one page of a product's reviews, newest first, together
// with the product's rating aggregate. The product must exist.
func (s *ReviewService) ListReviews(ctx context.Context, productID string, page int) (*ReviewPage, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}

	reviews, _, err := s.reviews.ListByProductID(ctx, productID, page, s.pageSize)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to list reviews",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Wrap(err, "list reviews")
	}

	summary, err := s.reviews.Summary(ctx, productID)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to summarize reviews",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Wrap(err, "summarize reviews")
	}

	return &ReviewPage{Reviews: reviews, Summary: *summary}, nil
}

// PageSize returns the fixed number of reviews per listing page.
func (s *ReviewService) PageSize() int {
	return s.pageSize
}
