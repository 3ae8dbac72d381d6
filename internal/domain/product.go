package domain

import (
	"time"
)

// Product category constants. The catalog constrains categories to a fixed
// vocabulary rather than free-form text.
const (
	CategoryElectronics = "Electronics"
	CategoryCameras     = "Cameras"
	CategoryLaptops     = "Laptops"
	CategoryAccessories = "Accessories"
	CategoryHeadphones  = "Headphones"
	CategoryFood        = "Food"
	CategoryBooks       = "Books"
	CategoryClothes     = "Clothes"
	CategoryShoes       = "Shoes"
	CategoryBeauty      = "Beauty/Health"
	CategorySports      = "Sports"
	CategoryOutdoor     = "Outdoor"
	CategoryHome        = "Home"
)

// Product represents a catalog item owned by the user who created it.
// Ratings and NumReviews are denormalized from the product's reviews: Ratings
// is the arithmetic mean of all current review ratings (0 when none exist).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"` // cents
	Category    string    `json:"category"`
	Brand       string    `json:"brand"`
	Ratings     float64   `json:"ratings"`
	Stock       int       `json:"stock"`
	NumReviews  int       `json:"num_reviews"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidCategories returns the set of allowed product categories.
func ValidCategories() []string {
	return []string{
		CategoryElectronics,
		CategoryCameras,
		CategoryLaptops,
		CategoryAccessories,
		CategoryHeadphones,
		CategoryFood,
		CategoryBooks,
		CategoryClothes,
		CategoryShoes,
		CategoryBeauty,
		CategorySports,
		CategoryOutdoor,
		CategoryHome,
	}
}

// IsValidCategory checks whether the given string is an allowed category.
func IsValidCategory(category string) bool {
	for _, c := range ValidCategories() {
		if c == category {
			return true
		}
	}
	return false
}

// IsOwnedBy reports whether the product belongs to the given user.
func (p *Product) IsOwnedBy(userID string) bool {
	return p.UserID == userID
}
