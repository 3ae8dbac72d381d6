package domain

import (
	"time"
)

// Rating bounds for a review.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is a single user's rating and comment for one product. At most one
// review exists per (user, product) pair; resubmitting overwrites the rating
// and comment in place.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidRating checks whether a rating falls within the allowed 1-5 range.
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// ReviewSummary contains aggregate review statistics for a product.
type ReviewSummary struct {
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}
