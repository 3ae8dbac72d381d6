package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshoply/catalog-service/internal/domain"
	apperrors "github.com/eshoply/catalog-service/pkg/errors"
)

func TestSubmitReviewPosted(t *testing.T) {
	products := &stubProductRepo{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			return catalogProduct(), nil
		},
	}
	reviews := &stubReviewRepo{
		submit: func(_ context.Context, r *domain.Review) (bool, error) {
			assert.Equal(t, testUserID, r.UserID)
			assert.Equal(t, testProductID, r.ProductID)
			assert.Equal(t, 5, r.Rating)
			return true, nil
		},
	}

	srv := newTestServer(t, products, reviews, 1)

	resp := doRequest(t, http.MethodPost, srv.URL+"/"+testProductID+"/reviews/",
		bearerToken(t, testUserID), `{"rating":5,"comment":"great"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Review Posted", out.Detail)
}

func TestSubmitReviewUpdated(t *testing.T) {
	products := &stubProductRepo{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			return catalogProduct(), nil
		},
	}
	reviews := &stubReviewRepo{
		submit: func(_ context.Context, r *domain.Review) (bool, error) {
			return false, nil
		},
	}

	srv := newTestServer(t, products, reviews, 1)

	resp := doRequest(t, http.MethodPost, srv.URL+"/"+testProductID+"/reviews/",
		bearerToken(t, testUserID), `{"rating":2,"comment":"changed my mind"}`)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Review Updated", out.Detail)
}

func TestSubmitReviewInvalidRating(t *testing.T) {
	for _, rating := range []string{"0", "6"} {
		products := &stubProductRepo{
			getByID: func(_ context.Context, id string) (*domain.Product, error) {
				return catalogProduct(), nil
			},
		}
		srv := newTestServer(t, products, &stubReviewRepo{}, 1)

		resp := doRequest(t, http.MethodPost, srv.URL+"/"+testProductID+"/reviews/",
			bearerToken(t, testUserID), `{"rating":`+rating+`}`)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "rating %s", rating)
	}
}

func TestSubmitReviewProductNotFound(t *testing.T) {
	products := &stubProductRepo{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			return nil, apperrors.NotFound("product", id)
		},
	}

	srv := newTestServer(t, products, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodPost, srv.URL+"/"+testProductID+"/reviews/",
		bearerToken(t, testUserID), `{"rating":3}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitReviewMissingProductWithBadRating(t *testing.T) {
	products := &stubProductRepo{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			return nil, apperrors.NotFound("product", id)
		},
	}

	srv := newTestServer(t, products, &stubReviewRepo{}, 1)

	// Product resolution runs before rating validation, so the missing
	// product wins and the response is 404, not 400.
	resp := doRequest(t, http.MethodPost, srv.URL+"/"+testProductID+"/reviews/",
		bearerToken(t, testUserID), `{"rating":6}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitReviewRequiresAuth(t *testing.T) {
	srv := newTestServer(t, &stubProductRepo{}, &stubReviewRepo{}, 1)

	resp := doRequest(t, http.MethodPost, srv.URL+"/"+testProductID+"/reviews/", "", `{"rating":3}`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestListReviews(t *testing.T) {
	products := &stubProductRepo{
		getByID: func(_ context.Context, id string) (*domain.Product, error) {
			return catalogProduct(), nil
		},
	}
	reviews := &stubReviewRepo{
		listByProductID: func(_ context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
			assert.Equal(t, testProductID, productID)
			return []domain.Review{
				{ID: "r1", ProductID: productID, UserID: testUserID, Rating: 4, Comment: "solid"},
			}, 1, nil
		},
		summary: func(_ context.Context, productID string) (*domain.ReviewSummary, error) {
			return &domain.ReviewSummary{AverageRating: 4.0, TotalCount: 1}, nil
		},
	}

	srv := newTestServer(t, products, reviews, 1)

	resp := doRequest(t, http.MethodGet, srv.URL+"/products/"+testProductID+"/reviews/", "", "")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Count      int             `json:"count"`
		ResPerPage int             `json:"resPerPage"`
		Ratings    float64         `json:"ratings"`
		Reviews    []domain.Review `json:"reviews"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 1, out.Count)
	assert.InDelta(t, 4.0, out.Ratings, 0.0001)
	assert.Len(t, out.Reviews, 1)
	assert.Equal(t, 4, out.Reviews[0].Rating)
}
