package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/internal/repository"
	apperrors "github.com/eshoply/catalog-service/pkg/errors"
	"github.com/eshoply/catalog-service/pkg/logger"
	"github.com/eshoply/catalog-service/pkg/validator"
)

// EventPublisher emits domain events after successful state changes. Publishing
// is best-effort and never fails the originating operation.
type EventPublisher interface {
	ProductCreated(ctx context.Context, product *domain.Product)
	ProductUpdated(ctx context.Context, product *domain.Product)
	ReviewSubmitted(ctx context.Context, review *domain.Review, created bool, product *domain.Product)
}

// CreateProductInput carries the fields a caller supplies when adding a
// product to the catalog. A supplied ratings value is stored as-is; the next
// review submission replaces it with the computed average.
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"required"`
	Price       int64   `json:"price" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	Brand       string  `json:"brand" validate:"required,max=100"`
	Ratings     float64 `json:"ratings" validate:"gte=0,lte=5"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// UpdateProductInput carries the full replacement state for a product. Every
// field overwrites the stored value, including the ratings aggregate; callers
// that do not intend to reset ratings must send the current value back.
type UpdateProductInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"required"`
	Price       int64   `json:"price" validate:"gte=0"`
	Category    string  `json:"category" validate:"required"`
	Brand       string  `json:"brand" validate:"required,max=100"`
	Ratings     float64 `json:"ratings" validate:"gte=0,lte=5"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// ListProductsInput carries the optional list filters plus the requested page.
type ListProductsInput struct {
	Keyword  string
	Category string
	Brand    string
	MinPrice *int64
	MaxPrice *int64
	Page     int
}

// CatalogService implements product catalog business logic.
type CatalogService struct {
	products repository.ProductRepository
	events   EventPublisher
	pageSize int
	logger   *slog.Logger
}

// NewCatalogService creates a catalog service. pageSize fixes the page window
// for listings; events may be nil to disable publishing.
func NewCatalogService(products repository.ProductRepository, events EventPublisher, pageSize int, log *slog.Logger) *CatalogService {
	if pageSize <= 0 {
		pageSize = 1
	}

	return &CatalogService{
		products: products,
		events:   events,
		pageSize: pageSize,
		logger:   log,
	}
}

// PageSize returns the fixed number of products per listing page.
func (s *CatalogService) PageSize() int {
	return s.pageSize
}

// ListProducts returns one page of products matching the filters, the total
// match count, and the page size in effect. All filters combine with AND; a
// page past the last match yields an empty slice with the count intact.
func (s *CatalogService) ListProducts(ctx context.Context, input ListProductsInput) ([]domain.Product, int, error) {
	filter := repository.ProductFilter{
		Page:    input.Page,
		PerPage: s.pageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	if kw := strings.TrimSpace(input.Keyword); kw != "" {
		filter.Keyword = &kw
	}
	if input.Category != "" {
		filter.Category = &input.Category
	}
	if input.Brand != "" {
		filter.Brand = &input.Brand
	}
	filter.MinPrice = input.MinPrice
	filter.MaxPrice = input.MaxPrice

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to list products",
			slog.String("error", err.Error()),
		)
		return nil, 0, apperrors.Wrap(err, "list products")
	}

	return products, total, nil
}

// GetProduct retrieves a single product by ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// CreateProduct adds a new product owned by the calling user. The review
// count starts at zero; ratings is taken from the input and later overwritten
// by review aggregation.
func (s *CatalogService) CreateProduct(ctx context.Context, userID string, input CreateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	if !domain.IsValidCategory(input.Category) {
		return nil, apperrors.InvalidInput("invalid category: " + input.Category)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Brand:       input.Brand,
		Ratings:     input.Ratings,
		Stock:       input.Stock,
		NumReviews:  0,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to create product",
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Wrap(err, "create product")
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("category", product.Category),
	)

	if s.events != nil {
		s.events.ProductCreated(ctx, product)
	}

	return product, nil
}

// UpdateProduct replaces a product's fields. Only the owner may update; any
// other authenticated caller gets a forbidden error and the product is left
// untouched.
func (s *CatalogService) UpdateProduct(ctx context.Context, userID, productID string, input UpdateProductInput) (*domain.Product, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	if !domain.IsValidCategory(input.Category) {
		return nil, apperrors.InvalidInput("invalid category: " + input.Category)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if !product.IsOwnedBy(userID) {
		return nil, apperrors.Forbidden("you can not update this product")
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Category = input.Category
	product.Brand = input.Brand
	product.Ratings = input.Ratings
	product.Stock = input.Stock

	if err := s.products.Update(ctx, product); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to update product",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Wrap(err, "update product")
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
	)

	if s.events != nil {
		s.events.ProductUpdated(ctx, product)
	}

	return product, nil
}
