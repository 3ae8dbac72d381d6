package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/internal/repository"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	if p := args.Get(0); p != nil {
		return p.([]domain.Product), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Submit(ctx context.Context, review *domain.Review) (bool, error) {
	args := m.Called(ctx, review)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) ListByProductID(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, productID, page, perPage)
	if r := args.Get(0); r != nil {
		return r.([]domain.Review), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) Summary(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	args := m.Called(ctx, productID)
	if s := args.Get(0); s != nil {
		return s.(*domain.ReviewSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) ProductCreated(ctx context.Context, product *domain.Product) {
	m.Called(ctx, product)
}

func (m *mockPublisher) ProductUpdated(ctx context.Context, product *domain.Product) {
	m.Called(ctx, product)
}

func (m *mockPublisher) ReviewSubmitted(ctx context.Context, review *domain.Review, created bool, product *domain.Product) {
	m.Called(ctx, review, created, product)
}
