package postgres

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshoply/catalog-service/internal/domain"
	"github.com/eshoply/catalog-service/pkg/database"
	apperrors "github.com/eshoply/catalog-service/pkg/errors"
)

const (
	testProductID = "11111111-1111-1111-1111-111111111111"
	testUserID    = "22222222-2222-2222-2222-222222222222"
	testReviewID  = "33333333-3333-3333-3333-333333333333"
)

func testReview() *domain.Review {
	return &domain.Review{
		ID:        testReviewID,
		ProductID: testProductID,
		UserID:    testUserID,
		Rating:    4,
		Comment:   "solid",
	}
}

func TestReviewRepositorySubmitCreatesNewReview(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReviewRepository(mock)
	review := testReview()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM products WHERE id = \\$1 FOR UPDATE").
		WithArgs(testProductID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(testProductID))
	mock.ExpectQuery("SELECT id FROM product_reviews WHERE user_id = \\$1 AND product_id = \\$2").
		WithArgs(testUserID, testProductID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO product_reviews").
		WithArgs(testReviewID, testProductID, testUserID, 4, "solid",
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(testProductID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	created, err := repo.Submit(context.Background(), review)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositorySubmitUpdatesExistingReview(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReviewRepository(mock)
	review := testReview()
	review.Rating = 2

	existingID := "44444444-4444-4444-4444-444444444444"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM products WHERE id = \\$1 FOR UPDATE").
		WithArgs(testProductID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(testProductID))
	mock.ExpectQuery("SELECT id FROM product_reviews WHERE user_id = \\$1 AND product_id = \\$2").
		WithArgs(testUserID, testProductID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(existingID))
	mock.ExpectExec("UPDATE product_reviews SET rating").
		WithArgs(2, "solid", pgxmock.AnyArg(), existingID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE products").
		WithArgs(testProductID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	created, err := repo.Submit(context.Background(), review)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existingID, review.ID, "existing review keeps its id")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositorySubmitProductMissing(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReviewRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM products WHERE id = \\$1 FOR UPDATE").
		WithArgs(testProductID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err = repo.Submit(context.Background(), testReview())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositoryListByProductID(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReviewRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM product_reviews WHERE product_id = \\$1").
		WithArgs(testProductID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT (.+) FROM product_reviews WHERE product_id = \\$1 ORDER BY created_at DESC").
		WithArgs(testProductID, 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "product_id", "user_id", "rating", "comment", "created_at", "updated_at",
		}).
			AddRow(testReviewID, testProductID, testUserID, 4, "solid", now, now).
			AddRow("55555555-5555-5555-5555-555555555555", testProductID, "66666666-6666-6666-6666-666666666666", 3, "", now, now))

	reviews, total, err := repo.ListByProductID(context.Background(), testProductID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, reviews, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepositorySummary(t *testing.T) {
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewReviewRepository(mock)

	mock.ExpectQuery("SELECT COALESCE\\(AVG\\(rating\\), 0\\), COUNT\\(\\*\\)").
		WithArgs(testProductID).
		WillReturnRows(pgxmock.NewRows([]string{"avg", "count"}).AddRow(3.5, 4))

	summary, err := repo.Summary(context.Background(), testProductID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, summary.AverageRating, 0.0001)
	assert.Equal(t, 4, summary.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
