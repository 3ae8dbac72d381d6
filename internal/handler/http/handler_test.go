package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eshoply/catalog-service/internal/auth"
	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/internal/repository"
	"github.com/eshoply/catalog-service/internal/service"
	"github.com/eshoply/catalog-service/pkg/health"
)

const (
	testSecret    = "test-secret"
	testUserID    = "22222222-2222-2222-2222-222222222222"
	testProductID = "11111111-1111-1111-1111-111111111111"
)

// stubProductRepo implements repository.ProductRepository with function fields
// so each test can pin just the behavior it needs.
type stubProductRepo struct {
	create  func(ctx context.Context, p *domain.Product) error
	getByID func(ctx context.Context, id string) (*domain.Product, error)
	list    func(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int, error)
	update  func(ctx context.Context, p *domain.Product) error
}

func (s *stubProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return s.create(ctx, p)
}

func (s *stubProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.getByID(ctx, id)
}

func (s *stubProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int, error) {
	return s.list(ctx, f)
}

func (s *stubProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return s.update(ctx, p)
}

type stubReviewRepo struct {
	submit          func(ctx context.Context, r *domain.Review) (bool, error)
	listByProductID func(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error)
	summary         func(ctx context.Context, productID string) (*domain.ReviewSummary, error)
}

func (s *stubReviewRepo) Submit(ctx context.Context, r *domain.Review) (bool, error) {
	return s.submit(ctx, r)
}

func (s *stubReviewRepo) ListByProductID(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	return s.listByProductID(ctx, productID, page, perPage)
}

func (s *stubReviewRepo) Summary(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	return s.summary(ctx, productID)
}

func catalogProduct() *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:          testProductID,
		Name:        "USB Microphone",
		Description: "Cardioid condenser",
		Price:       12900,
		Category:    domain.CategoryElectronics,
		Brand:       "Acme",
		Ratings:     4.0,
		Stock:       5,
		NumReviews:  2,
		UserID:      testUserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func newTestServer(t *testing.T, products repository.ProductRepository, reviews repository.ReviewRepository, pageSize int) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalogSvc := service.NewCatalogService(products, nil, pageSize, log)
	reviewSvc := service.NewReviewService(reviews, products, nil, pageSize, log)
	jwtManager := auth.NewJWTManager(testSecret, "catalog-service")

	router := NewRouter(RouterDeps{
		Products:      NewProductHandler(catalogSvc, log),
		Reviews:       NewReviewHandler(reviewSvc, log),
		Health:        health.NewHandler(),
		TokenValidate: jwtManager.ValidateAccessToken,
		Logger:        log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()

	token, err := auth.NewJWTManager(testSecret, "catalog-service").GenerateAccessToken(userID, "user@example.com")
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}
